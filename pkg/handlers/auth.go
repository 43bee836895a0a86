package handlers

import (
	"errors"
	"net/http"

	"blog-admin-backend/pkg/auth"
	"blog-admin-backend/pkg/config"
	"blog-admin-backend/pkg/models"
	"blog-admin-backend/pkg/utils"
)

// AuthHandler serves the login/logout/check endpoints.
type AuthHandler struct {
	config   *config.Config
	sessions *auth.Service
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(cfg *config.Config, sessions *auth.Service) *AuthHandler {
	return &AuthHandler{
		config:   cfg,
		sessions: sessions,
	}
}

// HealthCheck answers the root probe.
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Check reports whether the request carries a valid session.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, models.AuthCheckResponse{
		Authenticated: h.sessions.IsAuthenticated(r),
	})
}

// Login validates the password and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.Password == "" {
		utils.WriteBadRequest(w, "Password is required")
		return
	}

	session, err := h.sessions.CreateSession(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNotConfigured):
			utils.WriteInternalServerError(w, err.Error())
		case errors.Is(err, auth.ErrInvalidPassword):
			utils.WriteUnauthorized(w, "Invalid password")
		default:
			utils.WriteInternalServerError(w, "Failed to create session")
		}
		return
	}

	h.sessions.SetCookie(w, session)
	utils.WriteJSON(w, http.StatusOK, models.LoginResponse{
		Success:   true,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout clears the session cookie. Always succeeds: there is no
// server-side session to tear down.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	utils.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
