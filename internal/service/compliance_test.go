package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// fixedNow — фиксированный момент для детерминированных окон.
var fixedNow = time.Date(2025, time.September, 15, 12, 0, 0, 0, time.UTC)

func testParts() []*model.Part {
	return []*model.Part{
		{PartNo: "SA-100", PartName: "Crank Shaft", Customer: "Acme Motors"},
		{PartNo: "SA-200", PartName: "Cam Shaft", Customer: "Borg Ltd"},
	}
}

func report(partNo string, status workflow.Status, submitted time.Time) *model.InspectionReport {
	return &model.InspectionReport{
		ID:             partNo + "-" + submitted.Format("20060102150405"),
		PartNo:         partNo,
		Status:         status,
		SubmissionDate: submitted,
	}
}

// TestBuildComplianceReport_Months проверяет окно из 12 календарных
// месяцев: подписи, порядок от раннего к текущему.
func TestBuildComplianceReport_Months(t *testing.T) {
	rep := BuildComplianceReport(testParts(), nil, fixedNow)

	if len(rep.Months) != 12 {
		t.Fatalf("len(Months) = %d, ожидается 12", len(rep.Months))
	}
	if rep.Months[0] != "Oct 2024" {
		t.Errorf("Months[0] = %q, ожидается %q", rep.Months[0], "Oct 2024")
	}
	if rep.Months[11] != "Sep 2025" {
		t.Errorf("Months[11] = %q, ожидается %q", rep.Months[11], "Sep 2025")
	}

	// Без отчётов все ячейки "N".
	for _, p := range testParts() {
		row := rep.Grid[p.PartNo]
		if row == nil {
			t.Fatalf("Grid не содержит строку %q", p.PartNo)
		}
		for _, m := range rep.Months {
			if row[m] != "N" {
				t.Errorf("Grid[%s][%s] = %q, ожидается N", p.PartNo, m, row[m])
			}
		}
	}

	if rep.Legend["A"] == "" {
		t.Error("Legend не содержит расшифровку кода A")
	}
}

// TestBuildComplianceReport_LatestWins проверяет, что в корзине месяца
// побеждает последний по времени подачи отчёт.
func TestBuildComplianceReport_LatestWins(t *testing.T) {
	early := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, time.September, 10, 9, 0, 0, 0, time.UTC)

	reports := []*model.InspectionReport{
		report("SA-100", workflow.StatusApproved, late),
		report("SA-100", workflow.StatusRescheduling, early),
	}

	rep := BuildComplianceReport(testParts(), reports, fixedNow)
	if got := rep.Grid["SA-100"]["Sep 2025"]; got != "A" {
		t.Errorf("Grid[SA-100][Sep 2025] = %q, ожидается A (поздний отчёт)", got)
	}

	// Порядок входа не влияет на результат.
	rep = BuildComplianceReport(testParts(), []*model.InspectionReport{reports[1], reports[0]}, fixedNow)
	if got := rep.Grid["SA-100"]["Sep 2025"]; got != "A" {
		t.Errorf("Grid[SA-100][Sep 2025] = %q, ожидается A независимо от порядка", got)
	}
}

// TestBuildComplianceReport_TieBreak проверяет разрешение равных меток
// времени: побеждает лексикографически больший идентификатор.
func TestBuildComplianceReport_TieBreak(t *testing.T) {
	ts := time.Date(2025, time.September, 5, 10, 0, 0, 0, time.UTC)

	a := report("SA-100", workflow.StatusRescheduling, ts)
	a.ID = "SA-100-1757066400000"
	b := report("SA-100", workflow.StatusApproved, ts)
	b.ID = "SA-100-1757066400001"

	for _, reports := range [][]*model.InspectionReport{{a, b}, {b, a}} {
		rep := BuildComplianceReport(testParts(), reports, fixedNow)
		if got := rep.Grid["SA-100"]["Sep 2025"]; got != "A" {
			t.Errorf("Grid[SA-100][Sep 2025] = %q, ожидается A (больший ID)", got)
		}
	}
}

// TestBuildComplianceReport_Skips проверяет пропуск отчётов вне окна,
// по неизвестным деталям и без даты подачи.
func TestBuildComplianceReport_Skips(t *testing.T) {
	reports := []*model.InspectionReport{
		// Вне окна 12 месяцев.
		report("SA-100", workflow.StatusApproved, time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC)),
		// Неизвестная деталь.
		report("SA-999", workflow.StatusApproved, fixedNow),
		// Нулевая дата подачи.
		report("SA-100", workflow.StatusApproved, time.Time{}),
	}

	rep := BuildComplianceReport(testParts(), reports, fixedNow)
	for _, m := range rep.Months {
		if got := rep.Grid["SA-100"][m]; got != "N" {
			t.Errorf("Grid[SA-100][%s] = %q, ожидается N", m, got)
		}
	}
	if _, ok := rep.Grid["SA-999"]; ok {
		t.Error("Grid содержит строку неизвестной детали SA-999")
	}
}

// TestBuildComplianceReport_StatusCodes проверяет коды статусов в ячейках.
func TestBuildComplianceReport_StatusCodes(t *testing.T) {
	months := []time.Time{
		time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}
	reports := []*model.InspectionReport{
		report("SA-100", workflow.StatusSubmitted, months[0]),
		report("SA-100", workflow.StatusTeamLeaderReviewed, months[1]),
		report("SA-100", workflow.StatusHOFReviewed, months[2]),
		report("SA-100", workflow.StatusApproved, months[3]),
	}

	rep := BuildComplianceReport(testParts(), reports, fixedNow)
	want := map[string]string{
		"May 2025": "S",
		"Jun 2025": "P",
		"Jul 2025": "P",
		"Aug 2025": "A",
	}
	for m, code := range want {
		if got := rep.Grid["SA-100"][m]; got != code {
			t.Errorf("Grid[SA-100][%s] = %q, ожидается %q", m, got, code)
		}
	}
}

// TestComplianceService_Aggregate проверяет фильтр по заказчику и кэш.
func TestComplianceService_Aggregate(t *testing.T) {
	listCalls := 0
	partRepo := &mockPartRepo{
		listFn: func(_ context.Context, customer *string) ([]*model.Part, error) {
			listCalls++
			if customer == nil {
				return testParts(), nil
			}
			var result []*model.Part
			for _, p := range testParts() {
				if p.Customer == *customer {
					result = append(result, p)
				}
			}
			return result, nil
		},
	}
	reportRepo := &mockReportRepo{
		listFn: func(_ context.Context, filter repository.ReportFilter) ([]*model.InspectionReport, error) {
			return nil, nil
		},
	}

	cache := NewGridCache(16, time.Minute)
	svc := NewComplianceService(partRepo, reportRepo, cache, slog.Default())
	svc.now = func() time.Time { return fixedNow }

	// Фильтр по заказчику сужает строки.
	rep, err := svc.Aggregate(context.Background(), "Acme Motors")
	if err != nil {
		t.Fatalf("Aggregate() ошибка: %v", err)
	}
	if len(rep.Parts) != 1 || rep.Parts[0].PartNo != "SA-100" {
		t.Errorf("Parts = %v, ожидается только SA-100", rep.Parts)
	}

	// Повторный запрос — из кэша, репозиторий не вызывается.
	if _, err := svc.Aggregate(context.Background(), "Acme Motors"); err != nil {
		t.Fatalf("Aggregate() из кэша ошибка: %v", err)
	}
	if listCalls != 1 {
		t.Errorf("partRepo.List вызван %d раз, ожидается 1 (кэш)", listCalls)
	}

	// Другой фильтр — отдельный ключ кэша.
	rep, err = svc.Aggregate(context.Background(), "")
	if err != nil {
		t.Fatalf("Aggregate(все) ошибка: %v", err)
	}
	if len(rep.Parts) != 2 {
		t.Errorf("len(Parts) = %d, ожидается 2", len(rep.Parts))
	}
	if listCalls != 2 {
		t.Errorf("partRepo.List вызван %d раз, ожидается 2", listCalls)
	}

	// Сброс кэша — следующий запрос строит заново.
	cache.Purge()
	if _, err := svc.Aggregate(context.Background(), "Acme Motors"); err != nil {
		t.Fatalf("Aggregate() после Purge ошибка: %v", err)
	}
	if listCalls != 3 {
		t.Errorf("partRepo.List вызван %d раз, ожидается 3 после Purge", listCalls)
	}
}
