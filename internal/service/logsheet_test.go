package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

func strPtr(s string) *string { return &s }

func approvedReport() *model.InspectionReport {
	return &model.InspectionReport{
		ID:       "SA-100-1757066400000",
		PartNo:   "SA-100",
		PartName: "Crank Shaft",
		Customer: "Acme Motors",
		Characteristics: []model.Characteristic{
			{
				Name:          "Bore Dia (1)",
				Specification: "8.0 ± 0.1",
				CheckMethod:   "Plug gauge",
				Observations:  []string{"8.05", "7.95", "", "", "", ""},
			},
			{
				Name:          "Length",
				Specification: "120 ± 0.5",
				CheckMethod:   "Vernier",
				Observations:  []string{"121.2", "", "", "", "", ""},
			},
		},
		Status:                   workflow.StatusApproved,
		SubmittedBy:              "uid-aud",
		SubmissionDate:           time.Date(2025, time.September, 5, 10, 30, 0, 0, time.UTC),
		TeamLeaderAuditSignature: strPtr("uid-tla"),
		HOFAuditSignature:        strPtr("uid-hof"),
		QualityHeadSignature:     strPtr("uid-qh"),
	}
}

// TestBuildLogSheet проверяет проекцию: итоги строк, шапку, подписи
// и заполнители.
func TestBuildLogSheet(t *testing.T) {
	emails := map[string]string{
		"uid-aud": "auditor@sakthiauto.com",
		"uid-tla": "tla@sakthiauto.com",
		"uid-hof": "hof@sakthiauto.com",
		"uid-qh":  "qh@sakthiauto.com",
	}

	ls := BuildLogSheet(approvedReport(), emails)

	if ls.Meta.SubmissionDate != "05.09.2025 10:30:00" {
		t.Errorf("SubmissionDate = %q, ожидается %q", ls.Meta.SubmissionDate, "05.09.2025 10:30:00")
	}
	if ls.Meta.Status != "Approved" {
		t.Errorf("Status = %q, ожидается Approved", ls.Meta.Status)
	}

	if len(ls.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, ожидается 2", len(ls.Rows))
	}
	if ls.Rows[0].Result != "OK" {
		t.Errorf("Rows[0].Result = %q, ожидается OK", ls.Rows[0].Result)
	}
	// 121.2 вне допуска 120 ± 0.5.
	if ls.Rows[1].Result != "NOT OK" {
		t.Errorf("Rows[1].Result = %q, ожидается NOT OK", ls.Rows[1].Result)
	}

	if ls.Remarks != "No remarks." {
		t.Errorf("Remarks = %q, ожидается %q", ls.Remarks, "No remarks.")
	}

	if ls.Signatures.Auditor != "auditor@sakthiauto.com" {
		t.Errorf("Signatures.Auditor = %q, ожидается email", ls.Signatures.Auditor)
	}
	if ls.Signatures.QualityHead != "qh@sakthiauto.com" {
		t.Errorf("Signatures.QualityHead = %q, ожидается email", ls.Signatures.QualityHead)
	}
}

// TestBuildLogSheet_Pending проверяет заполнитель Pending для
// непройденных ступеней и удалённых учётных записей.
func TestBuildLogSheet_Pending(t *testing.T) {
	rep := approvedReport()
	rep.Status = workflow.StatusSubmitted
	rep.TeamLeaderAuditSignature = nil
	rep.HOFAuditSignature = nil
	// Учётная запись удалена: идентификатор не разрешается.
	rep.QualityHeadSignature = strPtr("uid-gone")
	rep.Remarks = "First article inspection"

	ls := BuildLogSheet(rep, map[string]string{"uid-aud": "auditor@sakthiauto.com"})

	if ls.Signatures.TeamLeaderAudit != "Pending" {
		t.Errorf("TeamLeaderAudit = %q, ожидается Pending", ls.Signatures.TeamLeaderAudit)
	}
	if ls.Signatures.HOFAudit != "Pending" {
		t.Errorf("HOFAudit = %q, ожидается Pending", ls.Signatures.HOFAudit)
	}
	if ls.Signatures.QualityHead != "Pending" {
		t.Errorf("QualityHead = %q, ожидается Pending (удалённая учётная запись)", ls.Signatures.QualityHead)
	}
	if ls.Remarks != "First article inspection" {
		t.Errorf("Remarks = %q, ожидается исходный текст", ls.Remarks)
	}
}

// TestLogSheetService_Project проверяет разрешение подписей через
// реестр пользователей.
func TestLogSheetService_Project(t *testing.T) {
	var requestedIDs []string
	userRepo := &mockUserRepo{
		getByIDsFn: func(_ context.Context, ids []string) ([]*model.User, error) {
			requestedIDs = ids
			return []*model.User{
				{ID: "uid-aud", Email: "auditor@sakthiauto.com"},
				{ID: "uid-tla", Email: "tla@sakthiauto.com"},
			}, nil
		},
	}
	rep := approvedReport()
	rep.HOFAuditSignature = nil
	rep.QualityHeadSignature = nil
	reportRepo := &mockReportRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.InspectionReport, error) {
			return rep, nil
		},
	}

	svc := NewLogSheetService(reportRepo, userRepo, slog.Default())
	ls, err := svc.Project(context.Background(), rep.ID)
	if err != nil {
		t.Fatalf("Project() ошибка: %v", err)
	}
	if len(requestedIDs) != 2 {
		t.Errorf("запрошено %d идентификаторов, ожидается 2 (подавший + TLA)", len(requestedIDs))
	}
	if ls.Signatures.TeamLeaderAudit != "tla@sakthiauto.com" {
		t.Errorf("TeamLeaderAudit = %q, ожидается email", ls.Signatures.TeamLeaderAudit)
	}

	missing := &mockReportRepo{
		getByIDFn: func(_ context.Context, _ string) (*model.InspectionReport, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc = NewLogSheetService(missing, userRepo, slog.Default())
	if _, err := svc.Project(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Project(отсутствующий) ошибка = %v, ожидается ErrNotFound", err)
	}
}

// TestWriteCSV проверяет компоновку CSV-экспорта.
func TestWriteCSV(t *testing.T) {
	ls := BuildLogSheet(approvedReport(), map[string]string{
		"uid-aud": "auditor@sakthiauto.com",
		"uid-qh":  "qh@sakthiauto.com",
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ls); err != nil {
		t.Fatalf("WriteCSV() ошибка: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if lines[0] != "Report ID:,SA-100-1757066400000" {
		t.Errorf("строка 0 = %q, ожидается шапка с Report ID", lines[0])
	}
	wantHeader := "Characteristic,Specification,Check Method,Obs 1,Obs 2,Obs 3,Obs 4,Obs 5,Obs 6,Result"
	if lines[7] != wantHeader {
		t.Errorf("строка 7 = %q, ожидается %q", lines[7], wantHeader)
	}
	if !strings.Contains(out, "Quality Head:,qh@sakthiauto.com") {
		t.Error("CSV не содержит подпись Quality Head")
	}
	if !strings.Contains(out, "Team Leader Audit:,Pending") {
		t.Error("CSV не содержит заполнитель Pending для неразрешённой подписи")
	}
	if !strings.Contains(out, "Remarks:,No remarks.") {
		t.Error("CSV не содержит блок примечаний")
	}
}
