package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakthiauto/inspection-module/internal/auth"
	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

var testRoleCodes = map[workflow.Role]string{
	workflow.RoleAuditor:         "AUDITOR123",
	workflow.RoleTeamLeaderAudit: "TLA456",
	workflow.RoleHOFAudit:        "HOF789",
	workflow.RoleQualityHead:     "QH0101",
}

func newUserService(userRepo *mockUserRepo) *UserService {
	tokens := auth.NewManager("0123456789abcdef0123456789abcdef", time.Hour)
	return NewUserService(userRepo, nil, tokens, testRoleCodes, slog.Default())
}

// TestUserService_SignUp проверяет регистрацию: нормализация email,
// привязка роли к коду, выпуск токена.
func TestUserService_SignUp(t *testing.T) {
	var saved *model.User
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, u *model.User) error {
			saved = u
			return nil
		},
	}
	svc := newUserService(userRepo)

	user, token, err := svc.SignUp(context.Background(), "  Auditor@SakthiAuto.COM ", "secret1", workflow.RoleAuditor, "AUDITOR123")
	if err != nil {
		t.Fatalf("SignUp() ошибка: %v", err)
	}
	if user.Email != "auditor@sakthiauto.com" {
		t.Errorf("Email = %q, ожидается нормализованный", user.Email)
	}
	if user.Role != workflow.RoleAuditor {
		t.Errorf("Role = %q, ожидается Auditor", user.Role)
	}
	if token == "" {
		t.Error("токен не выпущен")
	}
	if saved == nil || saved.PasswordHash == "" {
		t.Fatal("пользователь не сохранён с хэшем пароля")
	}
	if saved.PasswordHash == "secret1" {
		t.Error("пароль сохранён открытым текстом")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("secret1")); err != nil {
		t.Errorf("хэш не соответствует паролю: %v", err)
	}
}

// TestUserService_SignUp_Validation проверяет отказы регистрации.
func TestUserService_SignUp_Validation(t *testing.T) {
	svc := newUserService(&mockUserRepo{})

	tests := []struct {
		name     string
		email    string
		password string
		role     workflow.Role
		roleCode string
		wantErr  error
	}{
		{"пустой email", "", "secret1", workflow.RoleAuditor, "AUDITOR123", ErrValidation},
		{"email без @", "not-an-email", "secret1", workflow.RoleAuditor, "AUDITOR123", ErrValidation},
		{"короткий пароль", "a@b.com", "12345", workflow.RoleAuditor, "AUDITOR123", ErrValidation},
		{"неизвестная роль", "a@b.com", "secret1", workflow.Role("Supervisor"), "AUDITOR123", ErrValidation},
		{"чужой код роли", "a@b.com", "secret1", workflow.RoleQualityHead, "AUDITOR123", ErrInvalidRoleCode},
		{"пустой код роли", "a@b.com", "secret1", workflow.RoleAuditor, "", ErrInvalidRoleCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.SignUp(context.Background(), tt.email, tt.password, tt.role, tt.roleCode)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SignUp() ошибка = %v, ожидается %v", err, tt.wantErr)
			}
		})
	}
}

// TestUserService_SignUp_Conflict проверяет повторную регистрацию email.
func TestUserService_SignUp_Conflict(t *testing.T) {
	userRepo := &mockUserRepo{
		createFn: func(_ context.Context, _ *model.User) error {
			return repository.ErrConflict
		},
	}
	svc := newUserService(userRepo)

	_, _, err := svc.SignUp(context.Background(), "a@b.com", "secret1", workflow.RoleAuditor, "AUDITOR123")
	if !errors.Is(err, ErrConflict) {
		t.Errorf("SignUp(дубликат) ошибка = %v, ожидается ErrConflict", err)
	}
}

// TestUserService_Login проверяет вход и неразличимость отказов.
func TestUserService_Login(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	userRepo := &mockUserRepo{
		getByEmailFn: func(_ context.Context, email string) (*model.User, error) {
			if email != "a@b.com" {
				return nil, repository.ErrNotFound
			}
			return &model.User{ID: "uid-1", Email: email, PasswordHash: string(hash), Role: workflow.RoleAuditor}, nil
		},
	}
	svc := newUserService(userRepo)

	user, token, err := svc.Login(context.Background(), " A@b.COM ", "secret1")
	if err != nil {
		t.Fatalf("Login() ошибка: %v", err)
	}
	if user.ID != "uid-1" || token == "" {
		t.Errorf("Login() = (%v, %q), ожидается пользователь и токен", user, token)
	}

	// Неверный пароль и отсутствующий email — одна и та же ошибка.
	_, _, err = svc.Login(context.Background(), "a@b.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(неверный пароль) ошибка = %v, ожидается ErrInvalidCredentials", err)
	}
	_, _, err = svc.Login(context.Background(), "missing@b.com", "secret1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(неизвестный email) ошибка = %v, ожидается ErrInvalidCredentials", err)
	}
}

// TestUserService_RemoveAccess проверяет защиту последнего Quality Head.
func TestUserService_RemoveAccess(t *testing.T) {
	deleted := ""
	qhCount := 1
	userRepo := &mockUserRepo{
		getByIDFn: func(_ context.Context, id string) (*model.User, error) {
			switch id {
			case "uid-qh":
				return &model.User{ID: id, Role: workflow.RoleQualityHead}, nil
			case "uid-aud":
				return &model.User{ID: id, Role: workflow.RoleAuditor}, nil
			}
			return nil, repository.ErrNotFound
		},
		countByRoleFn: func(_ context.Context, _ workflow.Role) (int, error) {
			return qhCount, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	svc := newUserService(userRepo)

	// Последний Quality Head неудаляем.
	if err := svc.RemoveAccess(context.Background(), "uid-qh"); !errors.Is(err, ErrLastQualityHead) {
		t.Errorf("RemoveAccess(последний QH) ошибка = %v, ожидается ErrLastQualityHead", err)
	}
	if deleted != "" {
		t.Errorf("удалён %q, удаления не ожидается", deleted)
	}

	// При двух Quality Head удаление проходит.
	qhCount = 2
	if err := svc.RemoveAccess(context.Background(), "uid-qh"); err != nil {
		t.Errorf("RemoveAccess(QH из двух) ошибка: %v", err)
	}
	if deleted != "uid-qh" {
		t.Errorf("удалён %q, ожидается uid-qh", deleted)
	}

	// Прочие роли удаляются без подсчёта.
	deleted = ""
	if err := svc.RemoveAccess(context.Background(), "uid-aud"); err != nil {
		t.Errorf("RemoveAccess(Auditor) ошибка: %v", err)
	}
	if deleted != "uid-aud" {
		t.Errorf("удалён %q, ожидается uid-aud", deleted)
	}

	if err := svc.RemoveAccess(context.Background(), "uid-missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveAccess(отсутствующий) ошибка = %v, ожидается ErrNotFound", err)
	}
}
