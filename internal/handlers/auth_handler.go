package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/classgate/classgate/internal/models"
	"github.com/classgate/classgate/internal/repositories"
	"github.com/classgate/classgate/internal/services"
	"github.com/classgate/classgate/internal/sessions"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Register validates the credentials and creates a new account.
	//
	// Returns repositories.ErrDuplicateEmail when the email is already taken
	// and services.ErrInvalidRequest when validation fails.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error)
	// Method Login verifies the credentials against the stored account.
	//
	// Every authentication failure surfaces as services.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Account, error)
}

// AuthHandler handles registration, login and logout HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
	sessions    *sessions.Manager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, sessionManager *sessions.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
		sessions:    sessionManager,
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/register", h.RegisterForm)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginForm)
	r.Post("/login", h.Login)
	r.Get("/logout", h.Logout)
}

// RegisterForm handles GET /register. Rendering is out of scope, so the
// entry point describes itself instead of serving HTML.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"action": "/register",
		"method": http.MethodPost,
		"fields": []string{"email", "password", "role"},
		"roles":  []models.Role{models.RoleStudent, models.RoleTeacher},
	})
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, map[string]any{
		"action": "/login",
		"method": http.MethodPost,
		"fields": []string{"email", "password", "role"},
		"roles":  []models.Role{models.RoleStudent, models.RoleTeacher},
	})
}

// Register handles POST /register
//
// On success the account is created and the client is redirected to the
// login entry point; there is no auto-login. A duplicate email gets an
// explicit 409 with an actionable message.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email, pw, role, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	req := models.RegisterRequest{Email: email, Password: pw, Role: role}
	if _, err := h.authService.Register(r.Context(), &req); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			h.RespondError(w, http.StatusConflict, "an account with this email already exists, try logging in or use a different email")
		case errors.Is(err, services.ErrInvalidRequest):
			h.RespondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repositories.ErrStoreUnavailable):
			h.Logger.Error("failed to register account", zap.Error(err))
			h.RespondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		default:
			h.Logger.Error("failed to register account", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Login handles POST /login
//
// On success the session is started and the client is redirected to the
// dashboard matching the account's role. Any failure gets the same generic
// message regardless of cause.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email, pw, role, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	req := models.LoginRequest{Email: email, Password: pw, Role: role}
	account, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			h.RespondError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, repositories.ErrStoreUnavailable):
			h.Logger.Error("failed to login", zap.Error(err))
			h.RespondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		default:
			h.Logger.Error("failed to login", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	if err := h.sessions.Start(w, r, account.Email, account.Role); err != nil {
		h.Logger.Error("failed to start session", zap.Error(err))
		h.RespondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	http.Redirect(w, r, DashboardPath(account.Role), http.StatusSeeOther)
}

// Logout handles GET /logout. Ending a session that is already gone is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		h.Logger.Error("failed to end session", zap.Error(err))
		h.RespondError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// decodeCredentials reads email, password and role from either a JSON body
// or a standard form post. Returns ok=false after writing the error response
// when the request cannot be parsed.
func (h *AuthHandler) decodeCredentials(w http.ResponseWriter, r *http.Request) (email, pw string, role models.Role, ok bool) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Email    string      `json:"email"`
			Password string      `json:"password"`
			Role     models.Role `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.RespondError(w, http.StatusBadRequest, "invalid request body")
			return "", "", "", false
		}
		return body.Email, body.Password, body.Role, true
	}

	if err := r.ParseForm(); err != nil {
		h.RespondError(w, http.StatusBadRequest, "failed to parse request")
		return "", "", "", false
	}
	return r.FormValue("email"), r.FormValue("password"), models.Role(r.FormValue("role")), true
}
