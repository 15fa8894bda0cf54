package handlers

import (
	"net/http"

	"github.com/classgate/classgate/internal/models"
	"github.com/classgate/classgate/internal/sessions"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardPath returns the dashboard entry point for a role
func DashboardPath(role models.Role) string {
	if role == models.RoleTeacher {
		return "/teacher/dashboard"
	}
	return "/student/dashboard"
}

// DashboardHandler serves the role-gated dashboard entry points and the root
// redirect. The session middleware has already resolved the cookie; the only
// check here is that the session role matches the entry point.
type DashboardHandler struct {
	BaseHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers the dashboard and root routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/student/dashboard", h.dashboard(models.RoleStudent))
	r.Get("/teacher/dashboard", h.dashboard(models.RoleTeacher))
}

// Root handles GET /. A live session routes to its role's dashboard,
// anything else goes to login.
func (h *DashboardHandler) Root(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessions.FromContext(r.Context()); ok {
		http.Redirect(w, r, DashboardPath(sess.Role), http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// dashboard builds the handler for one role's dashboard. A missing session
// or a session with the other role is not an error, just a redirect to
// login.
func (h *DashboardHandler) dashboard(required models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessions.FromContext(r.Context())
		if !ok || sess.Role != required {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		h.RespondJSON(w, http.StatusOK, map[string]any{
			"dashboard": string(required),
			"user":      sess.Identity,
		})
	}
}
