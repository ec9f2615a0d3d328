package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// UserRepository — интерфейс доступа к таблице users.
type UserRepository interface {
	// Create сохраняет новую учётную запись.
	Create(ctx context.Context, u *model.User) error
	// GetByID возвращает пользователя по UUID.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail возвращает пользователя по email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByIDs возвращает пользователей по списку идентификаторов.
	GetByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	// List возвращает всех пользователей, по возрастанию email.
	List(ctx context.Context) ([]*model.User, error)
	// CountByRole возвращает число пользователей с данной ролью.
	CountByRole(ctx context.Context, role workflow.Role) (int, error)
	// Delete удаляет учётную запись.
	Delete(ctx context.Context, id string) error
}

// userRepo — реализация UserRepository.
type userRepo struct {
	db DBTX
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, u.ID, u.Email, u.PasswordHash, u.Role).Scan(&u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания пользователя: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getByField(ctx, "id", id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getByField(ctx, "email", email)
}

// getByField читает пользователя по одной из уникальных колонок.
func (r *userRepo) getByField(ctx context.Context, field, value string) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE %s = $1`, field)

	u := &model.User{}
	err := r.db.QueryRow(ctx, query, value).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM users
		WHERE id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func (r *userRepo) List(ctx context.Context) ([]*model.User, error) {
	query := `
		SELECT id, email, password_hash, role, created_at
		FROM users
		ORDER BY email`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка пользователей: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// scanUsers читает строки курсора в срез пользователей.
func scanUsers(rows pgx.Rows) ([]*model.User, error) {
	var result []*model.User
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

func (r *userRepo) CountByRole(ctx context.Context, role workflow.Role) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	return count, nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
