// Пакет auth — выпуск и валидация JWT (HS256).
//
// Система не использует внешний IdP: роль прикрепляется к учётной записи
// при регистрации по коду роли, токены подписываются собственным
// секретом. Роль и email кладутся в claims, поэтому авторизация
// запросов не требует обращения к БД.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// ErrInvalidToken — токен не прошёл валидацию (подпись, срок, формат).
var ErrInvalidToken = errors.New("недействительный токен")

// Claims — полезная нагрузка токена. Subject — идентификатор пользователя.
type Claims struct {
	jwt.RegisteredClaims
	Email string        `json:"email"`
	Role  workflow.Role `json:"role"`
}

// Manager выпускает и проверяет токены.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager создаёт менеджер токенов с данным секретом и сроком жизни.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// Issue выпускает подписанный токен для пользователя.
func (m *Manager) Issue(userID, email string, role workflow.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: email,
		Role:  role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Parse проверяет подпись и срок токена и возвращает его claims.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
