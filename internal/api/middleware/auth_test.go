package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/sakthiauto/inspection-module/internal/auth"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// okHandler отвечает 200 и фиксирует claims из контекста.
func okHandler(got **AuthClaims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

// TestJWTAuth_Middleware проверяет извлечение claims из валидного токена.
func TestJWTAuth_Middleware(t *testing.T) {
	tokens := auth.NewManager(testSecret, time.Hour)
	token, err := tokens.Issue("uid-1", "auditor@sakthiauto.com", workflow.RoleAuditor)
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}

	var got *AuthClaims
	handler := NewJWTAuth(tokens, testLogger()).Middleware()(okHandler(&got))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	if got == nil {
		t.Fatal("claims не помещены в контекст")
	}
	if got.UserID != "uid-1" {
		t.Errorf("UserID = %q, ожидается uid-1", got.UserID)
	}
	if got.Email != "auditor@sakthiauto.com" {
		t.Errorf("Email = %q, ожидается auditor@sakthiauto.com", got.Email)
	}
	if got.Role != workflow.RoleAuditor {
		t.Errorf("Role = %q, ожидается Auditor", got.Role)
	}
}

// TestJWTAuth_Middleware_Rejects проверяет отказы аутентификации.
func TestJWTAuth_Middleware_Rejects(t *testing.T) {
	tokens := auth.NewManager(testSecret, time.Hour)
	expired, err := auth.NewManager(testSecret, -time.Hour).Issue("uid-1", "a@b.com", workflow.RoleAuditor)
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}
	foreign, err := auth.NewManager("another-secret-another-secret-32", time.Hour).Issue("uid-1", "a@b.com", workflow.RoleAuditor)
	if err != nil {
		t.Fatalf("выпуск токена: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"без заголовка", ""},
		{"не Bearer", "Basic dXNlcjpwYXNz"},
		{"пустой токен", "Bearer "},
		{"мусор вместо токена", "Bearer not-a-jwt"},
		{"просроченный токен", "Bearer " + expired},
		{"чужой секрет", "Bearer " + foreign},
	}

	handler := NewJWTAuth(tokens, testLogger()).Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("handler не должен вызываться без аутентификации")
	}))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("статус = %d, ожидается 401", rec.Code)
			}
		})
	}
}

// TestRequireRole проверяет разграничение доступа по ролям.
func TestRequireRole(t *testing.T) {
	tokens := auth.NewManager(testSecret, time.Hour)
	jwtAuth := NewJWTAuth(tokens, testLogger())

	protected := jwtAuth.Middleware()(
		RequireRole(workflow.RoleQualityHead)(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			}),
		),
	)

	request := func(role workflow.Role) int {
		token, err := tokens.Issue("uid-1", "a@b.com", role)
		if err != nil {
			t.Fatalf("выпуск токена: %v", err)
		}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/parts/part-1", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := request(workflow.RoleQualityHead); code != http.StatusOK {
		t.Errorf("Quality Head: статус = %d, ожидается 200", code)
	}
	for _, role := range []workflow.Role{workflow.RoleAuditor, workflow.RoleTeamLeaderAudit, workflow.RoleHOFAudit} {
		if code := request(role); code != http.StatusForbidden {
			t.Errorf("%s: статус = %d, ожидается 403", role, code)
		}
	}

	// Без JWTAuth в цепочке claims нет — 401.
	bare := RequireRole(workflow.RoleQualityHead)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/parts/part-1", http.NoBody)
	rec := httptest.NewRecorder()
	bare.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("без claims: статус = %d, ожидается 401", rec.Code)
	}
}

// TestNormalizePath проверяет нормализацию путей для лейблов метрик.
func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/parts", "/api/v1/parts"},
		{"/api/v1/parts/0b7e6a1c", "/api/v1/parts/{id}"},
		{"/api/v1/reports", "/api/v1/reports"},
		{"/api/v1/reports/form/SA-100", "/api/v1/reports/form/{partNo}"},
		{"/api/v1/reports/SA-100-1757066400000", "/api/v1/reports/{id}"},
		{"/api/v1/reports/SA-100-1757066400000/approve", "/api/v1/reports/{id}/approve"},
		{"/api/v1/reports/SA-100-1757066400000/reject", "/api/v1/reports/{id}/reject"},
		{"/api/v1/reports/SA-100-1757066400000/logsheet", "/api/v1/reports/{id}/logsheet"},
		{"/api/v1/reports/SA-100-1757066400000/logsheet.csv", "/api/v1/reports/{id}/logsheet.csv"},
		{"/api/v1/users/0b7e6a1c", "/api/v1/users/{id}"},
		{"/health/live", "/health/live"},
		{"/metrics", "/metrics"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.path, got, tt.want)
		}
	}
}
