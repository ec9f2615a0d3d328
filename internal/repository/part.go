package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
)

// PartRepository — интерфейс CRUD для таблицы parts.
type PartRepository interface {
	// Create создаёт новую деталь.
	Create(ctx context.Context, p *model.Part) error
	// GetByID возвращает деталь по UUID.
	GetByID(ctx context.Context, id string) (*model.Part, error)
	// GetByPartNo возвращает деталь по номеру.
	GetByPartNo(ctx context.Context, partNo string) (*model.Part, error)
	// List возвращает список деталей, опционально по заказчику.
	List(ctx context.Context, customer *string) ([]*model.Part, error)
	// Customers возвращает отсортированный список заказчиков без повторов.
	Customers(ctx context.Context) ([]string, error)
	// Update обновляет деталь.
	Update(ctx context.Context, p *model.Part) error
	// Delete удаляет деталь.
	Delete(ctx context.Context, id string) error
}

// partRepo — реализация PartRepository.
type partRepo struct {
	db DBTX
}

// NewPartRepository создаёт репозиторий деталей.
func NewPartRepository(db DBTX) PartRepository {
	return &partRepo{db: db}
}

func (r *partRepo) Create(ctx context.Context, p *model.Part) error {
	query := `
		INSERT INTO parts (id, part_no, part_name, customer, characteristics)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.PartNo, p.PartName, p.Customer, p.Characteristics,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: номер детали уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка создания детали: %w", err)
	}
	return nil
}

func (r *partRepo) GetByID(ctx context.Context, id string) (*model.Part, error) {
	return r.getByField(ctx, "id", id)
}

func (r *partRepo) GetByPartNo(ctx context.Context, partNo string) (*model.Part, error) {
	return r.getByField(ctx, "part_no", partNo)
}

// getByField читает деталь по одной из уникальных колонок.
func (r *partRepo) getByField(ctx context.Context, field, value string) (*model.Part, error) {
	query := fmt.Sprintf(`
		SELECT id, part_no, part_name, customer, characteristics, created_at, updated_at
		FROM parts
		WHERE %s = $1`, field)

	p := &model.Part{}
	err := r.db.QueryRow(ctx, query, value).Scan(
		&p.ID, &p.PartNo, &p.PartName, &p.Customer, &p.Characteristics,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения детали: %w", err)
	}
	return p, nil
}

func (r *partRepo) List(ctx context.Context, customer *string) ([]*model.Part, error) {
	query := `
		SELECT id, part_no, part_name, customer, characteristics, created_at, updated_at
		FROM parts`
	var args []any
	if customer != nil {
		query += ` WHERE customer = $1`
		args = append(args, *customer)
	}
	query += ` ORDER BY part_no`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка деталей: %w", err)
	}
	defer rows.Close()

	var result []*model.Part
	for rows.Next() {
		p := &model.Part{}
		if err := rows.Scan(
			&p.ID, &p.PartNo, &p.PartName, &p.Customer, &p.Characteristics,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования детали: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *partRepo) Customers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT customer FROM parts ORDER BY customer`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка заказчиков: %w", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("ошибка сканирования заказчика: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *partRepo) Update(ctx context.Context, p *model.Part) error {
	query := `
		UPDATE parts
		SET part_no = $2, part_name = $3, customer = $4, characteristics = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		p.ID, p.PartNo, p.PartName, p.Customer, p.Characteristics,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: номер детали уже зарегистрирован", ErrConflict)
		}
		return fmt.Errorf("ошибка обновления детали: %w", err)
	}
	return nil
}

func (r *partRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM parts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления детали: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
