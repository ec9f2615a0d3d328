// users.go — сервис учётных записей: регистрация по коду роли, вход,
// администрирование доступа.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakthiauto/inspection-module/internal/auth"
	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// minPasswordLength — минимальная длина пароля при регистрации.
const minPasswordLength = 6

// UserService — сервис учётных записей.
type UserService struct {
	userRepo  repository.UserRepository
	txRunner  *repository.TxRunner
	tokens    *auth.Manager
	roleCodes map[workflow.Role]string
	logger    *slog.Logger
}

// NewUserService создаёт сервис учётных записей. txRunner может быть
// nil (unit-тесты): тогда удаление выполняется без транзакции.
func NewUserService(
	userRepo repository.UserRepository,
	txRunner *repository.TxRunner,
	tokens *auth.Manager,
	roleCodes map[workflow.Role]string,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		txRunner:  txRunner,
		tokens:    tokens,
		roleCodes: roleCodes,
		logger:    logger.With(slog.String("component", "user_service")),
	}
}

// SignUp регистрирует учётную запись. Роль определяется предъявленным
// кодом: код должен совпасть с настроенным для заявленной роли.
// Возвращает пользователя и выпущенный токен.
func (s *UserService) SignUp(ctx context.Context, email, password string, role workflow.Role, roleCode string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("%w: некорректный email", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, "", fmt.Errorf("%w: пароль короче %d символов", ErrValidation, minPasswordLength)
	}
	if !role.Valid() {
		return nil, "", fmt.Errorf("%w: неизвестная роль %q", ErrValidation, role)
	}
	expected, ok := s.roleCodes[role]
	if !ok || roleCode == "" || roleCode != expected {
		return nil, "", fmt.Errorf("%w: код не подходит для роли %q", ErrInvalidRoleCode, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("хэширование пароля: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, "", fmt.Errorf("%w: email уже зарегистрирован", ErrConflict)
		}
		return nil, "", fmt.Errorf("создание пользователя: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Пользователь зарегистрирован",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)
	return user, token, nil
}

// Login проверяет учётные данные и выпускает токен. Отсутствующий
// email и неверный пароль неразличимы для вызывающего.
func (s *UserService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("получение пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("выпуск токена: %w", err)
	}

	s.logger.Info("Пользователь вошёл", slog.String("user_id", user.ID))
	return user, token, nil
}

// List возвращает все учётные записи.
func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение списка пользователей: %w", err)
	}
	return users, nil
}

// RemoveAccess удаляет учётную запись. Последний Quality Head
// неудаляем: иначе некому администрировать систему. Проверка и
// удаление выполняются в одной транзакции.
func (s *UserService) RemoveAccess(ctx context.Context, targetID string) error {
	remove := func(repo repository.UserRepository) error {
		target, err := repo.GetByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("получение пользователя: %w", err)
		}

		if target.Role == workflow.RoleQualityHead {
			count, err := repo.CountByRole(ctx, workflow.RoleQualityHead)
			if err != nil {
				return fmt.Errorf("подсчёт Quality Head: %w", err)
			}
			if count <= 1 {
				return ErrLastQualityHead
			}
		}

		return repo.Delete(ctx, targetID)
	}

	var err error
	if s.txRunner != nil {
		err = s.txRunner.RunInTx(ctx, func(tx pgx.Tx) error {
			return remove(repository.NewUserRepository(tx))
		})
	} else {
		err = remove(s.userRepo)
	}
	if err != nil {
		return err
	}

	s.logger.Info("Доступ пользователя отозван", slog.String("user_id", targetID))
	return nil
}
