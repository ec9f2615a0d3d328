// reports.go — сервис жизненного цикла инспекционных отчётов.
//
// Создание: развёртка шаблонов характеристик детали, слияние наблюдений
// аудитора, штамп идентификатора/статуса/даты. Согласование: чистый
// переход workflow.Transition, применённый условным частичным UPDATE.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/specparse"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// transitionsTotal — счётчик переходов по действиям.
var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "im_report_transitions_total",
	Help: "Количество переходов отчётов по действиям",
}, []string{"action"})

// ReportService — сервис инспекционных отчётов.
type ReportService struct {
	reportRepo repository.ReportRepository
	partRepo   repository.PartRepository
	cache      *GridCache
	logger     *slog.Logger
	now        func() time.Time
}

// NewReportService создаёт сервис отчётов.
func NewReportService(
	reportRepo repository.ReportRepository,
	partRepo repository.PartRepository,
	cache *GridCache,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
		partRepo:   partRepo,
		cache:      cache,
		logger:     logger.With(slog.String("component", "report_service")),
		now:        time.Now,
	}
}

// ReportForm — пустой бланк отчёта для детали: развёрнутые строки
// с пустыми ячейками наблюдений.
type ReportForm struct {
	PartNo          string                 `json:"partNo"`
	PartName        string                 `json:"partName"`
	Customer        string                 `json:"customer"`
	Characteristics []model.Characteristic `json:"characteristics"`
}

// NewForm возвращает бланк отчёта для детали: развёртка выполняется
// здесь, ровно один раз за отчёт.
func (s *ReportService) NewForm(ctx context.Context, partNo string) (*ReportForm, error) {
	part, err := s.partRepo.GetByPartNo(ctx, partNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: деталь %q", ErrNotFound, partNo)
		}
		return nil, fmt.Errorf("получение детали: %w", err)
	}

	return &ReportForm{
		PartNo:          part.PartNo,
		PartName:        part.PartName,
		Customer:        part.Customer,
		Characteristics: specparse.ExpandCharacteristics(part.Characteristics),
	}, nil
}

// CreateReportInput — входные данные подачи отчёта. Observations —
// наблюдения по строкам бланка в порядке развёртки; лишние строки и
// ячейки игнорируются.
type CreateReportInput struct {
	PartNo       string     `json:"partNo"`
	Remarks      string     `json:"remarks"`
	Observations [][]string `json:"observations"`
}

// Create подаёт отчёт от имени аудитора actorID. Развёртка повторяется
// на сервере от актуальной карточки детали: клиентская форма не может
// подменить спецификации. Статус нового отчёта — Submitted.
func (s *ReportService) Create(ctx context.Context, actorID string, in CreateReportInput) (*model.InspectionReport, error) {
	if actorID == "" {
		return nil, workflow.ErrUnauthenticated
	}

	part, err := s.partRepo.GetByPartNo(ctx, in.PartNo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: деталь %q", ErrNotFound, in.PartNo)
		}
		return nil, fmt.Errorf("получение детали: %w", err)
	}

	rows := specparse.ExpandCharacteristics(part.Characteristics)
	for i := range rows {
		if i >= len(in.Observations) {
			break
		}
		for j := 0; j < len(rows[i].Observations) && j < len(in.Observations[i]); j++ {
			rows[i].Observations[j] = strings.TrimSpace(in.Observations[i][j])
		}
	}

	now := s.now()
	rep := &model.InspectionReport{
		ID:              fmt.Sprintf("%s-%d", part.PartNo, now.UnixMilli()),
		PartNo:          part.PartNo,
		PartName:        part.PartName,
		Customer:        part.Customer,
		Characteristics: rows,
		Remarks:         strings.TrimSpace(in.Remarks),
		Status:          workflow.StatusSubmitted,
		SubmittedBy:     actorID,
		SubmissionDate:  now,
	}

	if err := s.reportRepo.Create(ctx, rep); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: отчёт %q уже существует", ErrConflict, rep.ID)
		}
		return nil, fmt.Errorf("сохранение отчёта: %w", err)
	}

	s.cache.Purge()
	s.logger.Info("Отчёт подан",
		slog.String("report_id", rep.ID),
		slog.String("part_no", rep.PartNo),
		slog.String("submitted_by", actorID),
	)
	return rep, nil
}

// Get возвращает отчёт по ID.
func (s *ReportService) Get(ctx context.Context, id string) (*model.InspectionReport, error) {
	rep, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение отчёта: %w", err)
	}
	return rep, nil
}

// List возвращает отчёты по фильтру.
func (s *ReportService) List(ctx context.Context, filter repository.ReportFilter) ([]*model.InspectionReport, error) {
	reports, err := s.reportRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("получение списка отчётов: %w", err)
	}
	return reports, nil
}

// Approve одобряет отчёт на текущей ступени. Требуются явное
// подтверждение и непустой текст подписи; сама подпись в записи —
// идентификатор проверяющего.
func (s *ReportService) Approve(ctx context.Context, actorID string, actorRole workflow.Role, reportID string, confirmed bool, signatureText string) (*model.InspectionReport, error) {
	if !confirmed {
		return nil, fmt.Errorf("%w: требуется подтверждение решения", ErrValidation)
	}
	if strings.TrimSpace(signatureText) == "" {
		return nil, fmt.Errorf("%w: требуется подпись", ErrValidation)
	}
	return s.transition(ctx, actorID, actorRole, reportID, workflow.ActionApprove)
}

// Reject отклоняет отчёт на текущей ступени, переводя его в
// Re-scheduling. Подтверждение не требуется.
func (s *ReportService) Reject(ctx context.Context, actorID string, actorRole workflow.Role, reportID string) (*model.InspectionReport, error) {
	return s.transition(ctx, actorID, actorRole, reportID, workflow.ActionReject)
}

// transition — общий путь approve/reject: чтение, чистый переход,
// условное применение, сброс кэша.
func (s *ReportService) transition(ctx context.Context, actorID string, actorRole workflow.Role, reportID string, action workflow.Action) (*model.InspectionReport, error) {
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение отчёта: %w", err)
	}

	patch, err := workflow.Transition(rep.Status, actorRole, actorID, action)
	if err != nil {
		return nil, err
	}

	if err := s.reportRepo.ApplyTransition(ctx, reportID, rep.Status, patch); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleStatus):
			// Гонка двух переходов: проигравший получает invalid state.
			return nil, fmt.Errorf("%w: отчёт уже обработан", workflow.ErrInvalidState)
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("применение перехода: %w", err)
	}

	rep.Apply(patch)
	transitionsTotal.WithLabelValues(string(action)).Inc()
	s.cache.Purge()
	s.logger.Info("Переход отчёта выполнен",
		slog.String("report_id", reportID),
		slog.String("action", string(action)),
		slog.String("role", string(actorRole)),
		slog.String("new_status", string(rep.Status)),
	)
	return rep, nil
}

// Delete удаляет отчёт (административная операция Quality Head).
func (s *ReportService) Delete(ctx context.Context, id string) error {
	if err := s.reportRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление отчёта: %w", err)
	}

	s.cache.Purge()
	s.logger.Info("Отчёт удалён", slog.String("report_id", id))
	return nil
}
