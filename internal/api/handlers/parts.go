// parts.go — обработчики справочника деталей.
// POST   /api/v1/parts — создание детали (Quality Head)
// GET    /api/v1/parts — список деталей, опционально по заказчику
// GET    /api/v1/parts/{id} — деталь по идентификатору
// PUT    /api/v1/parts/{id} — обновление детали (Quality Head)
// DELETE /api/v1/parts/{id} — удаление детали (Quality Head)
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakthiauto/inspection-module/internal/service"
)

// CreatePart — создание детали с шаблоном характеристик.
func (h *APIHandler) CreatePart(w http.ResponseWriter, r *http.Request) {
	var req service.PartInput
	if !decodeJSON(w, r, &req) {
		return
	}

	part, err := h.parts.Create(r.Context(), req)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, part)
}

// ListParts — список деталей. Параметр customer сужает выборку.
func (h *APIHandler) ListParts(w http.ResponseWriter, r *http.Request) {
	var customer *string
	if c := r.URL.Query().Get("customer"); c != "" {
		customer = &c
	}

	parts, err := h.parts.List(r.Context(), customer)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, parts)
}

// GetPart — деталь по идентификатору.
func (h *APIHandler) GetPart(w http.ResponseWriter, r *http.Request) {
	part, err := h.parts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, part)
}

// UpdatePart — полное обновление детали.
func (h *APIHandler) UpdatePart(w http.ResponseWriter, r *http.Request) {
	var req service.PartInput
	if !decodeJSON(w, r, &req) {
		return
	}

	part, err := h.parts.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, part)
}

// DeletePart — удаление детали.
func (h *APIHandler) DeletePart(w http.ResponseWriter, r *http.Request) {
	if err := h.parts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.translateError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
