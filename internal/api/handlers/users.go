// users.go — обработчики администрирования учётных записей.
// GET    /api/v1/users — список учётных записей (Quality Head)
// DELETE /api/v1/users/{id} — отзыв доступа (Quality Head)
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListUsers — список учётных записей.
func (h *APIHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

// RemoveUserAccess — отзыв доступа учётной записи.
func (h *APIHandler) RemoveUserAccess(w http.ResponseWriter, r *http.Request) {
	if err := h.users.RemoveAccess(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.translateError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
