package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/classgate/classgate/internal/handlers"
	"github.com/classgate/classgate/internal/middlewares"
	"github.com/classgate/classgate/internal/password"
	"github.com/classgate/classgate/internal/repositories"
	"github.com/classgate/classgate/internal/services"
	"github.com/classgate/classgate/internal/sessions"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupTestRouter wires the full gateway against the embedded account store
// and the in-memory session store, the same shape main builds
func setupTestRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := zap.NewNop()

	accountRepo := repositories.NewMemoryAccountRepository()
	hasher := password.NewBcryptHasher(4)
	authService := services.NewAuthService(accountRepo, hasher, logger)

	codec := sessions.NewCookieCodec("integration-test-secret", time.Hour)
	store := sessions.NewMemoryStore(time.Hour)
	sessionManager := sessions.NewManager(codec, store, time.Hour, false, logger)

	authHandler := handlers.NewAuthHandler(authService, sessionManager, logger)
	dashboardHandler := handlers.NewDashboardHandler(logger)

	r := chi.NewRouter()
	r.Use(middlewares.RequestID)
	r.Use(middlewares.Recovery(logger))
	r.Use(sessionManager.Middleware)

	dashboardHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r)

	return r
}

// postForm submits a form-encoded request with the given cookies
func postForm(router chi.Router, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router chi.Router, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// sessionCookie extracts the session cookie from the response
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessions.CookieName {
			return cookie
		}
	}
	return nil
}

func credentials(email, pw, role string) url.Values {
	return url.Values{
		"email":    {email},
		"password": {pw},
		"role":     {role},
	}
}

// TestAuthFlow runs the canonical register/login/dashboard/logout scenario
// end to end.
func TestAuthFlow(t *testing.T) {
	router := setupTestRouter(t)

	// Register alice as a student, redirected to login without auto-login.
	w := postForm(router, "/register", credentials("alice@example.com", "pw123", "student"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))
	assert.Nil(t, sessionCookie(w))

	// Login with the same credentials lands on the student dashboard.
	w = postForm(router, "/login", credentials("alice@example.com", "pw123", "student"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/student/dashboard", w.Result().Header.Get("Location"))
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)

	// The dashboard greets the authenticated identity.
	w = get(router, "/student/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "student", body["dashboard"])
	assert.Equal(t, "alice@example.com", body["user"])

	// Root routes to the session's dashboard while logged in.
	w = get(router, "/", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/student/dashboard", w.Result().Header.Get("Location"))

	// The teacher dashboard is off limits for a student session.
	w = get(router, "/teacher/dashboard", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))

	// Logout clears the session and routes back to login.
	w = get(router, "/logout", cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))
	expired := sessionCookie(w)
	require.NotNil(t, expired)
	assert.Less(t, expired.MaxAge, 0)

	// A replayed pre-logout cookie no longer authenticates anything.
	w = get(router, "/student/dashboard", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))

	w = get(router, "/")
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))
}

func TestAuthFlow_DuplicateRegistration(t *testing.T) {
	router := setupTestRouter(t)

	w := postForm(router, "/register", credentials("alice@example.com", "pw123", "student"))
	require.Equal(t, http.StatusSeeOther, w.Code)

	// The second registration is answered, not silently dropped.
	w = postForm(router, "/register", credentials("alice@example.com", "other-pw", "teacher"))
	require.Equal(t, http.StatusConflict, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "already exists")
}

func TestAuthFlow_LoginFailuresAreUniform(t *testing.T) {
	router := setupTestRouter(t)

	w := postForm(router, "/register", credentials("alice@example.com", "pw123", "student"))
	require.Equal(t, http.StatusSeeOther, w.Code)

	readError := func(w *httptest.ResponseRecorder) string {
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body["error"]
	}

	// Correct password under the wrong role.
	w = postForm(router, "/login", credentials("alice@example.com", "pw123", "teacher"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	wrongRole := readError(w)

	// Wrong password under the right role.
	w = postForm(router, "/login", credentials("alice@example.com", "nope", "student"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	wrongPassword := readError(w)

	// Email that was never registered.
	w = postForm(router, "/login", credentials("nobody@example.com", "pw123", "student"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	unknownEmail := readError(w)

	// One message for all three causes, nothing to enumerate accounts with.
	assert.Equal(t, wrongRole, wrongPassword)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func TestAuthFlow_ForgedCookieRedirectsToLogin(t *testing.T) {
	router := setupTestRouter(t)

	forgedCodec := sessions.NewCookieCodec("attacker-secret", time.Hour)
	forged, err := forgedCodec.Seal("some-session")
	require.NoError(t, err)

	w := get(router, "/teacher/dashboard", &http.Cookie{Name: sessions.CookieName, Value: forged})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Result().Header.Get("Location"))
}

func TestAuthFlow_JSONBodyAccepted(t *testing.T) {
	router := setupTestRouter(t)

	register := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := register(`{"email":"bob@example.com","password":"pw456","role":"teacher"}`)
	require.Equal(t, http.StatusSeeOther, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"bob@example.com","password":"pw456","role":"teacher"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/teacher/dashboard", w.Result().Header.Get("Location"))
	assert.NotNil(t, sessionCookie(w))
}

func TestAuthFlow_EntryPointDescriptors(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{"/login", "/register"} {
		w := get(router, path)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, path, body["action"])
	}
}
