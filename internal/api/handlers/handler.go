// handler.go — основной обработчик API инспекционного модуля.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/sakthiauto/inspection-module/internal/api/errors"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
	"github.com/sakthiauto/inspection-module/internal/service"
)

// APIHandler — основной обработчик API инспекционного модуля.
type APIHandler struct {
	health     *HealthHandler
	users      *service.UserService
	parts      *service.PartService
	reports    *service.ReportService
	compliance *service.ComplianceService
	logsheets  *service.LogSheetService
	logger     *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	users *service.UserService,
	parts *service.PartService,
	reports *service.ReportService,
	compliance *service.ComplianceService,
	logsheets *service.LogSheetService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:     health,
		users:      users,
		parts:      parts,
		reports:    reports,
		compliance: compliance,
		logsheets:  logsheets,
		logger:     logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON декодирует тело запроса в dst. При ошибке пишет 400
// и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректное тело запроса: "+err.Error())
		return false
	}
	return true
}

// translateError отображает ошибку сервисного слоя в HTTP-ответ.
// Неизвестные ошибки логируются и возвращаются как 500 без деталей.
func (h *APIHandler) translateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workflow.ErrUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, err.Error())
	case errors.Is(err, workflow.ErrForbidden), errors.Is(err, service.ErrInvalidRoleCode):
		apierrors.Forbidden(w, err.Error())
	case errors.Is(err, workflow.ErrInvalidState):
		apierrors.InvalidState(w, err.Error())
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrLastQualityHead):
		apierrors.Conflict(w, err.Error())
	default:
		h.logger.Error("Внутренняя ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}
