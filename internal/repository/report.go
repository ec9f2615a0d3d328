package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// ReportFilter — фильтры списка отчётов. nil-поле — без фильтра.
type ReportFilter struct {
	PartNo      *string
	SubmittedBy *string
	Status      *workflow.Status
	Customer    *string
}

// ReportRepository — интерфейс доступа к таблице inspection_reports.
type ReportRepository interface {
	// Create сохраняет новый отчёт.
	Create(ctx context.Context, rep *model.InspectionReport) error
	// GetByID возвращает отчёт по идентификатору.
	GetByID(ctx context.Context, id string) (*model.InspectionReport, error)
	// List возвращает отчёты по фильтру, новые первыми.
	List(ctx context.Context, filter ReportFilter) ([]*model.InspectionReport, error)
	// ApplyTransition применяет патч перехода частичным UPDATE,
	// обусловленным ожидаемым текущим статусом. Если статус уже изменился,
	// возвращает ErrStaleStatus; если отчёта нет — ErrNotFound.
	ApplyTransition(ctx context.Context, id string, expected workflow.Status, patch *workflow.Patch) error
	// Delete удаляет отчёт.
	Delete(ctx context.Context, id string) error
}

// reportRepo — реализация ReportRepository.
type reportRepo struct {
	db DBTX
}

// NewReportRepository создаёт репозиторий инспекционных отчётов.
func NewReportRepository(db DBTX) ReportRepository {
	return &reportRepo{db: db}
}

// reportColumns — общий список колонок для SELECT.
const reportColumns = `id, part_no, part_name, customer, characteristics, remarks,
	status, submitted_by, submission_date, last_updated_by,
	teamleaderaudit_signature, hofaudit_signature, qualityhead_signature,
	created_at, updated_at`

func (r *reportRepo) Create(ctx context.Context, rep *model.InspectionReport) error {
	query := `
		INSERT INTO inspection_reports (id, part_no, part_name, customer,
			characteristics, remarks, status, submitted_by, submission_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		rep.ID, rep.PartNo, rep.PartName, rep.Customer,
		rep.Characteristics, rep.Remarks, rep.Status, rep.SubmittedBy, rep.SubmissionDate,
	).Scan(&rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: отчёт с таким идентификатором уже существует", ErrConflict)
		}
		return fmt.Errorf("ошибка создания отчёта: %w", err)
	}
	return nil
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.InspectionReport, error) {
	query := `SELECT ` + reportColumns + ` FROM inspection_reports WHERE id = $1`

	rep := &model.InspectionReport{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.PartNo, &rep.PartName, &rep.Customer,
		&rep.Characteristics, &rep.Remarks,
		&rep.Status, &rep.SubmittedBy, &rep.SubmissionDate, &rep.LastUpdatedBy,
		&rep.TeamLeaderAuditSignature, &rep.HOFAuditSignature, &rep.QualityHeadSignature,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения отчёта: %w", err)
	}
	return rep, nil
}

func (r *reportRepo) List(ctx context.Context, filter ReportFilter) ([]*model.InspectionReport, error) {
	// Динамическое построение WHERE
	var conditions []string
	var args []any
	argNum := 1

	if filter.PartNo != nil {
		conditions = append(conditions, fmt.Sprintf("part_no = $%d", argNum))
		args = append(args, *filter.PartNo)
		argNum++
	}
	if filter.SubmittedBy != nil {
		conditions = append(conditions, fmt.Sprintf("submitted_by = $%d", argNum))
		args = append(args, *filter.SubmittedBy)
		argNum++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, *filter.Status)
		argNum++
	}
	if filter.Customer != nil {
		conditions = append(conditions, fmt.Sprintf("customer = $%d", argNum))
		args = append(args, *filter.Customer)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM inspection_reports %s ORDER BY submission_date DESC, id DESC`,
		reportColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка отчётов: %w", err)
	}
	defer rows.Close()

	var result []*model.InspectionReport
	for rows.Next() {
		rep := &model.InspectionReport{}
		if err := rows.Scan(
			&rep.ID, &rep.PartNo, &rep.PartName, &rep.Customer,
			&rep.Characteristics, &rep.Remarks,
			&rep.Status, &rep.SubmittedBy, &rep.SubmissionDate, &rep.LastUpdatedBy,
			&rep.TeamLeaderAuditSignature, &rep.HOFAuditSignature, &rep.QualityHeadSignature,
			&rep.CreatedAt, &rep.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования отчёта: %w", err)
		}
		result = append(result, rep)
	}
	return result, rows.Err()
}

// signatureColumns — соответствие поля подписи колонке таблицы.
var signatureColumns = map[workflow.SignatureField]string{
	workflow.SignatureTeamLeaderAudit: "teamleaderaudit_signature",
	workflow.SignatureHOFAudit:        "hofaudit_signature",
	workflow.SignatureQualityHead:     "qualityhead_signature",
}

func (r *reportRepo) ApplyTransition(ctx context.Context, id string, expected workflow.Status, patch *workflow.Patch) error {
	column, ok := signatureColumns[patch.SignatureField]
	if !ok {
		return fmt.Errorf("неизвестное поле подписи %q", patch.SignatureField)
	}

	// Частичное обновление: трогаем только поля патча. Прочие подписи
	// не затрагиваются. Условие по статусу закрывает гонку двух
	// одновременных переходов: проигравший не затронет ни одной строки.
	query := fmt.Sprintf(`
		UPDATE inspection_reports
		SET status = $3, last_updated_by = $4, %s = $5,
			remarks = COALESCE($6, remarks), updated_at = now()
		WHERE id = $1 AND status = $2`, column)

	tag, err := r.db.Exec(ctx, query,
		id, expected, patch.Status, patch.LastUpdatedBy, patch.SignatureValue, patch.Remarks,
	)
	if err != nil {
		return fmt.Errorf("ошибка применения перехода: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Различаем отсутствующий отчёт и устаревший статус.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			if errors.Is(getErr, ErrNotFound) {
				return ErrNotFound
			}
			return getErr
		}
		return ErrStaleStatus
	}
	return nil
}

func (r *reportRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inspection_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления отчёта: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
