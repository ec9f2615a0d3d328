// logsheet.go — проекция отчёта в плоский лог-лист и его CSV-экспорт.
//
// Лог-лист — развёрнутая форма отчёта для внешнего рендера: шапка,
// строки с наблюдениями и итогом OK/NOT OK, примечания и подписи,
// разрешённые в email. Непройденная ступень отображается как "Pending",
// пустые примечания — как "No remarks.".
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/specparse"
	"github.com/sakthiauto/inspection-module/internal/repository"
)

// Текстовые заполнители лог-листа.
const (
	signaturePending = "Pending"
	noRemarks        = "No remarks."
)

// LogSheetService — сервис проекции лог-листов.
type LogSheetService struct {
	reportRepo repository.ReportRepository
	userRepo   repository.UserRepository
	logger     *slog.Logger
}

// NewLogSheetService создаёт сервис лог-листов.
func NewLogSheetService(
	reportRepo repository.ReportRepository,
	userRepo repository.UserRepository,
	logger *slog.Logger,
) *LogSheetService {
	return &LogSheetService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		logger:     logger.With(slog.String("component", "logsheet_service")),
	}
}

// LogSheetMeta — шапка лог-листа.
type LogSheetMeta struct {
	ReportID       string `json:"reportId"`
	PartName       string `json:"partName"`
	PartNo         string `json:"partNo"`
	Customer       string `json:"customer"`
	SubmissionDate string `json:"submissionDate"`
	Status         string `json:"status"`
}

// LogSheetRow — строка лог-листа: характеристика с наблюдениями и итогом.
type LogSheetRow struct {
	Characteristic string   `json:"characteristic"`
	Specification  string   `json:"specification"`
	CheckMethod    string   `json:"checkMethod"`
	Observations   []string `json:"observations"`
	Result         string   `json:"result"`
}

// LogSheetSignatures — подписи, разрешённые в email.
type LogSheetSignatures struct {
	Auditor         string `json:"auditor"`
	TeamLeaderAudit string `json:"teamLeaderAudit"`
	HOFAudit        string `json:"hofAudit"`
	QualityHead     string `json:"qualityHead"`
}

// LogSheet — плоская проекция отчёта.
type LogSheet struct {
	Meta       LogSheetMeta       `json:"meta"`
	Rows       []LogSheetRow      `json:"rows"`
	Remarks    string             `json:"remarks"`
	Signatures LogSheetSignatures `json:"signatures"`
}

// Project строит лог-лист отчёта, разрешая подписи через реестр
// пользователей.
func (s *LogSheetService) Project(ctx context.Context, reportID string) (*LogSheet, error) {
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение отчёта: %w", err)
	}

	// Собираем идентификаторы участников и разрешаем их одним запросом.
	ids := []string{rep.SubmittedBy}
	for _, sig := range []*string{rep.TeamLeaderAuditSignature, rep.HOFAuditSignature, rep.QualityHeadSignature} {
		if sig != nil && *sig != "" {
			ids = append(ids, *sig)
		}
	}
	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	emails := make(map[string]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	return BuildLogSheet(rep, emails), nil
}

// BuildLogSheet — чистая функция проекции. emails — идентификатор
// пользователя → email; неразрешимый идентификатор отображается как
// "Pending" (учётная запись могла быть удалена).
func BuildLogSheet(rep *model.InspectionReport, emails map[string]string) *LogSheet {
	resolve := func(id *string) string {
		if id == nil || *id == "" {
			return signaturePending
		}
		if email, ok := emails[*id]; ok {
			return email
		}
		return signaturePending
	}

	rows := make([]LogSheetRow, 0, len(rep.Characteristics))
	for _, c := range rep.Characteristics {
		result := "OK"
		if !specparse.RowPasses(c) {
			result = "NOT OK"
		}
		rows = append(rows, LogSheetRow{
			Characteristic: c.Name,
			Specification:  c.Specification,
			CheckMethod:    c.CheckMethod,
			Observations:   c.Observations,
			Result:         result,
		})
	}

	remarks := rep.Remarks
	if remarks == "" {
		remarks = noRemarks
	}

	return &LogSheet{
		Meta: LogSheetMeta{
			ReportID:       rep.ID,
			PartName:       rep.PartName,
			PartNo:         rep.PartNo,
			Customer:       rep.Customer,
			SubmissionDate: rep.SubmissionDate.Format("02.01.2006 15:04:05"),
			Status:         string(rep.Status),
		},
		Rows:    rows,
		Remarks: remarks,
		Signatures: LogSheetSignatures{
			Auditor:         resolve(&rep.SubmittedBy),
			TeamLeaderAudit: resolve(rep.TeamLeaderAuditSignature),
			HOFAudit:        resolve(rep.HOFAuditSignature),
			QualityHead:     resolve(rep.QualityHeadSignature),
		},
	}
}

// WriteCSV выводит лог-лист в CSV: шапка, таблица наблюдений,
// примечания, подписи.
func WriteCSV(w io.Writer, ls *LogSheet) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"Report ID:", ls.Meta.ReportID},
		{"Part Name:", ls.Meta.PartName},
		{"Part No:", ls.Meta.PartNo},
		{"Customer:", ls.Meta.Customer},
		{"Submission Date:", ls.Meta.SubmissionDate},
		{"Status:", ls.Meta.Status},
		{},
	}

	header := []string{"Characteristic", "Specification", "Check Method"}
	for i := 1; i <= specparse.ObservationSlots; i++ {
		header = append(header, fmt.Sprintf("Obs %d", i))
	}
	header = append(header, "Result")
	records = append(records, header)

	for _, row := range ls.Rows {
		record := []string{row.Characteristic, row.Specification, row.CheckMethod}
		record = append(record, row.Observations...)
		record = append(record, row.Result)
		records = append(records, record)
	}

	records = append(records,
		[]string{},
		[]string{"Remarks:", ls.Remarks},
		[]string{},
		[]string{"Signatures"},
		[]string{"Auditor:", ls.Signatures.Auditor},
		[]string{"Team Leader Audit:", ls.Signatures.TeamLeaderAudit},
		[]string{"H.O.F. Audit:", ls.Signatures.HOFAudit},
		[]string{"Quality Head:", ls.Signatures.QualityHead},
	)

	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("запись CSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
