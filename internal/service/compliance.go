// compliance.go — сводная таблица соответствия по заказчику.
//
// Таблица: деталь × месяц → однобуквенный код статуса за скользящие
// 12 календарных месяцев. Каждый запрос строит таблицу заново из
// свежего снимка БД (через кэш), поэтому результат не зависит от
// порядка прихода событий.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// ComplianceService — сервис сводных таблиц.
type ComplianceService struct {
	partRepo   repository.PartRepository
	reportRepo repository.ReportRepository
	cache      *GridCache
	logger     *slog.Logger
	now        func() time.Time
}

// NewComplianceService создаёт сервис сводных таблиц.
func NewComplianceService(
	partRepo repository.PartRepository,
	reportRepo repository.ReportRepository,
	cache *GridCache,
	logger *slog.Logger,
) *ComplianceService {
	return &ComplianceService{
		partRepo:   partRepo,
		reportRepo: reportRepo,
		cache:      cache,
		logger:     logger.With(slog.String("component", "compliance_service")),
		now:        time.Now,
	}
}

// PartRef — строка сводной таблицы: реквизиты детали.
type PartRef struct {
	PartNo   string `json:"partNo"`
	PartName string `json:"partName"`
	Customer string `json:"customer"`
}

// ComplianceReport — сводная таблица соответствия.
type ComplianceReport struct {
	// Months — подписи колонок ("Sep 2025"), от самого раннего месяца
	// окна к текущему.
	Months []string `json:"months"`
	// Parts — строки таблицы.
	Parts []PartRef `json:"parts"`
	// Grid — номер детали → месяц → код статуса.
	Grid map[string]map[string]string `json:"grid"`
	// Legend — расшифровка кодов статусов.
	Legend map[string]string `json:"legend"`
}

// Aggregate строит сводную таблицу, опционально по одному заказчику
// (пустая строка — все). Результат кэшируется по фильтру.
func (s *ComplianceService) Aggregate(ctx context.Context, customer string) (*ComplianceReport, error) {
	cacheKey := "customer:" + customer
	if report, ok := s.cache.Get(cacheKey); ok {
		return report, nil
	}

	var customerFilter *string
	if customer != "" {
		customerFilter = &customer
	}

	parts, err := s.partRepo.List(ctx, customerFilter)
	if err != nil {
		return nil, fmt.Errorf("получение деталей: %w", err)
	}
	reports, err := s.reportRepo.List(ctx, repository.ReportFilter{Customer: customerFilter})
	if err != nil {
		return nil, fmt.Errorf("получение отчётов: %w", err)
	}

	report := BuildComplianceReport(parts, reports, s.now())
	s.cache.Set(cacheKey, report)

	s.logger.Debug("Сводная таблица построена",
		slog.String("customer", customer),
		slog.Int("parts", len(report.Parts)),
	)
	return report, nil
}

// Customers возвращает список заказчиков для фильтра таблицы.
func (s *ComplianceService) Customers(ctx context.Context) ([]string, error) {
	customers, err := s.partRepo.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение заказчиков: %w", err)
	}
	return customers, nil
}

// monthKey — корзина месяца в подписи колонки.
func monthKey(t time.Time) string {
	return t.Format("Jan 2006")
}

// BuildComplianceReport — чистая функция построения таблицы.
//
// Колонки — 12 календарных месяцев, заканчивая месяцем now, от раннего
// к текущему. Ячейка — код статуса последнего по времени подачи отчёта
// детали в корзине месяца; при равных метках времени побеждает
// лексикографически больший идентификатор. Корзина без отчётов — "N".
func BuildComplianceReport(parts []*model.Part, reports []*model.InspectionReport, now time.Time) *ComplianceReport {
	// Подписи колонок, от самого раннего месяца окна к текущему.
	months := make([]string, 0, 12)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)
	for i := 0; i < 12; i++ {
		months = append(months, monthKey(first.AddDate(0, i, 0)))
	}

	refs := make([]PartRef, 0, len(parts))
	grid := make(map[string]map[string]string, len(parts))
	for _, p := range parts {
		refs = append(refs, PartRef{PartNo: p.PartNo, PartName: p.PartName, Customer: p.Customer})
		row := make(map[string]string, len(months))
		for _, m := range months {
			row[m] = "N"
		}
		grid[p.PartNo] = row
	}

	// Победитель корзины: максимальная пара (метка времени, ID).
	type winner struct {
		ts time.Time
		id string
	}
	best := make(map[string]winner)

	for _, rep := range reports {
		if rep.SubmissionDate.IsZero() {
			continue
		}
		row, ok := grid[rep.PartNo]
		if !ok {
			// Отчёт по детали вне набора (удалена или другой заказчик).
			continue
		}
		month := monthKey(rep.SubmissionDate)
		if _, ok := row[month]; !ok {
			// Вне окна 12 месяцев.
			continue
		}

		key := rep.PartNo + "\x00" + month
		prev, seen := best[key]
		if seen && !rep.SubmissionDate.After(prev.ts) {
			if !rep.SubmissionDate.Equal(prev.ts) || rep.ID <= prev.id {
				continue
			}
		}
		best[key] = winner{ts: rep.SubmissionDate, id: rep.ID}
		row[month] = workflow.Abbreviation(rep.Status)
	}

	return &ComplianceReport{
		Months: months,
		Parts:  refs,
		Grid:   grid,
		Legend: workflow.Legend(),
	}
}
