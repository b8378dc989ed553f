package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/CrowderSoup/minijira/database"
	"github.com/CrowderSoup/minijira/services"
)

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	authService *services.AuthService
	onLogin     func()
	logger      *slog.Logger
}

// NewAuthHandler builds the handler. onLogin, if set, runs after every
// successful sign-in; the server uses it to load the board.
func NewAuthHandler(authService *services.AuthService, onLogin func(), logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, onLogin: onLogin, logger: logger}
}

// Login signs in with email and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, services.ErrMissingCredentials) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	if h.onLogin != nil {
		h.onLogin()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   result.User,
	})
}

// Logout forgets the stored session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context()); err != nil {
		handleError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// Current reports the signed-in user and the token's expiry.
func (h *AuthHandler) Current(w http.ResponseWriter, r *http.Request) {
	session, info, err := h.authService.Current(r.Context())
	if errors.Is(err, database.ErrNoSession) {
		writeMessage(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	user := session.User
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      user,
		"token":     info,
		"isManager": services.IsManager(&user),
		"initials":  services.Initials(user.Name),
	})
}

