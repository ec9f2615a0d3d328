// reports.go — обработчики инспекционных отчётов.
// GET    /api/v1/reports/form/{partNo} — бланк отчёта с развёрнутыми характеристиками
// POST   /api/v1/reports — подача отчёта (Auditor)
// GET    /api/v1/reports — список отчётов с фильтрами
// GET    /api/v1/reports/{id} — отчёт по идентификатору
// POST   /api/v1/reports/{id}/approve — одобрение текущей ступени
// POST   /api/v1/reports/{id}/reject — отклонение на пересмотр
// DELETE /api/v1/reports/{id} — удаление отчёта (Quality Head)
// GET    /api/v1/reports/{id}/logsheet — лог-лист в JSON
// GET    /api/v1/reports/{id}/logsheet.csv — лог-лист в CSV
package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/sakthiauto/inspection-module/internal/api/errors"
	"github.com/sakthiauto/inspection-module/internal/api/middleware"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/repository"
	"github.com/sakthiauto/inspection-module/internal/service"
)

// reviewRequest — тело запроса одобрения отчёта.
type reviewRequest struct {
	// Confirmed — явное подтверждение решения.
	Confirmed bool `json:"confirmed"`
	// Signature — текст подписи с формы.
	Signature string `json:"signature"`
}

// GetReportForm — бланк нового отчёта по номеру детали.
func (h *APIHandler) GetReportForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.reports.NewForm(r.Context(), chi.URLParam(r, "partNo"))
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, form)
}

// CreateReport — подача заполненного отчёта.
func (h *APIHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req service.CreateReportInput
	if !decodeJSON(w, r, &req) {
		return
	}

	rep, err := h.reports.Create(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, rep)
}

// ListReports — список отчётов. Фильтры: partNo, submittedBy, status,
// customer. Пустой параметр — без фильтра (nil), а не фильтр по пустой
// строке.
func (h *APIHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter repository.ReportFilter

	if v := q.Get("partNo"); v != "" {
		filter.PartNo = &v
	}
	if v := q.Get("customer"); v != "" {
		filter.Customer = &v
	}

	// submittedBy=me — отчёты текущего пользователя.
	if sb := q.Get("submittedBy"); sb != "" {
		if sb == "me" {
			sb = middleware.UserIDFromContext(r.Context())
		}
		if sb != "" {
			filter.SubmittedBy = &sb
		}
	}

	if s := q.Get("status"); s != "" {
		status := workflow.Status(s)
		filter.Status = &status
	}

	reports, err := h.reports.List(r.Context(), filter)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

// GetReport — отчёт по идентификатору.
func (h *APIHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// ApproveReport — одобрение текущей ступени отчёта.
func (h *APIHandler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rep, err := h.reports.Approve(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id"), req.Confirmed, req.Signature)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// RejectReport — отклонение отчёта на пересмотр.
func (h *APIHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims в контексте")
		return
	}

	rep, err := h.reports.Reject(r.Context(), claims.UserID, claims.Role, chi.URLParam(r, "id"))
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// DeleteReport — удаление отчёта.
func (h *APIHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.reports.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.translateError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLogSheet — лог-лист отчёта в JSON.
func (h *APIHandler) GetLogSheet(w http.ResponseWriter, r *http.Request) {
	ls, err := h.logsheets.Project(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ls)
}

// GetLogSheetCSV — лог-лист отчёта в CSV для скачивания.
func (h *APIHandler) GetLogSheetCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ls, err := h.logsheets.Project(r.Context(), id)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "logsheet-"+id+".csv"))
	if err := service.WriteCSV(w, ls); err != nil {
		h.logger.Error("Ошибка записи CSV лог-листа",
			slog.String("report_id", id),
			slog.String("error", err.Error()),
		)
	}
}
