// auth.go — обработчики регистрации и входа.
// POST /api/v1/auth/signup — регистрация по коду роли
// POST /api/v1/auth/login — вход по email и паролю
package handlers

import (
	"net/http"
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/model"
	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// signUpRequest — тело запроса регистрации.
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	RoleCode string `json:"roleCode"`
}

// loginRequest — тело запроса входа.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse — представление учётной записи в ответах API.
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// authResponse — ответ регистрации и входа.
type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *model.User) userResponse {
	resp := userResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// SignUp — регистрация учётной записи.
func (h *APIHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.users.SignUp(r.Context(), req.Email, req.Password, workflow.Role(req.Role), req.RoleCode)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

// Login — вход по email и паролю.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.translateError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}
