// auth.go — JWT middleware для аутентификации и авторизации API.
// Извлекает Bearer token, валидирует подпись через auth.Manager (HS256),
// помещает claims в контекст запроса. RequireRole ограничивает доступ
// к endpoint по роли из токена.
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apierrors "github.com/sakthiauto/inspection-module/internal/api/errors"
	"github.com/sakthiauto/inspection-module/internal/auth"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// ContextKeyClaims — извлечённые claims в контексте запроса.
const ContextKeyClaims contextKey = "jwt_claims"

// AuthClaims — обработанные claims из JWT.
// Помещаются в контекст запроса для downstream handlers.
type AuthClaims struct {
	// UserID — sub из JWT (идентификатор учётной записи).
	UserID string
	// Email — email из JWT.
	Email string
	// Role — роль учётной записи.
	Role workflow.Role
}

// HasRole проверяет, совпадает ли роль субъекта с указанной.
func (c *AuthClaims) HasRole(role workflow.Role) bool {
	return c.Role == role
}

// HasAnyRole проверяет, совпадает ли роль с одной из указанных.
func (c *AuthClaims) HasAnyRole(roles ...workflow.Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// JWTAuth — middleware JWT-аутентификации.
type JWTAuth struct {
	tokens *auth.Manager
	logger *slog.Logger
}

// NewJWTAuth создаёт JWT middleware поверх менеджера токенов.
func NewJWTAuth(tokens *auth.Manager, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		tokens: tokens,
		logger: logger.With(slog.String("component", "jwt_auth")),
	}
}

// Middleware возвращает HTTP middleware для JWT-аутентификации.
// Извлекает Bearer token, валидирует подпись и срок действия,
// помещает AuthClaims в контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.Unauthorized(w, "Отсутствует заголовок Authorization")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				apierrors.Unauthorized(w, "Неверный формат Authorization: ожидается Bearer <token>")
				return
			}

			tokenString := parts[1]
			if tokenString == "" {
				apierrors.Unauthorized(w, "Пустой Bearer token")
				return
			}

			claims, err := j.tokens.Parse(tokenString)
			if err != nil {
				j.logger.Debug("JWT валидация не пройдена",
					slog.String("error", err.Error()),
					slog.String("remote_addr", r.RemoteAddr),
				)
				apierrors.Unauthorized(w, "Невалидный или просроченный токен")
				return
			}

			authClaims := &AuthClaims{
				UserID: claims.Subject,
				Email:  claims.Email,
				Role:   claims.Role,
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, authClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole возвращает middleware, требующий одну из указанных ролей.
// Должен использоваться ПОСЛЕ JWTAuth.Middleware().
func RequireRole(roles ...workflow.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
				return
			}

			if !claims.HasAnyRole(roles...) {
				names := make([]string, 0, len(roles))
				for _, role := range roles {
					names = append(names, string(role))
				}
				apierrors.Forbidden(w, fmt.Sprintf("Недостаточно прав: требуется роль %s", strings.Join(names, " или ")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// --- Context helpers ---

// ClaimsFromContext извлекает AuthClaims из контекста запроса.
// Возвращает nil, если claims не найдены.
func ClaimsFromContext(ctx context.Context) *AuthClaims {
	claims, _ := ctx.Value(ContextKeyClaims).(*AuthClaims)
	return claims
}

// UserIDFromContext извлекает идентификатор пользователя из контекста.
// Возвращает пустую строку, если claims не найдены.
func UserIDFromContext(ctx context.Context) string {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}
