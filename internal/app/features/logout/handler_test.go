package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/exceptionpages/internal/app/features/logout"
	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/dalemusser/exceptionpages/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*logout.Handler, *auth.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	// nil audit logger is a no-op
	return logout.NewHandler(sessionMgr, nil, logger), sessionMgr
}

func TestHandleLogout_RedirectsToHome(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/logout", testutil.AdminUser())
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}
}

func TestHandleLogout_ClearsSessionCookie(t *testing.T) {
	handler, sessionMgr := newTestHandler(t)

	// Sign in first so the request carries a real session cookie.
	rec1 := httptest.NewRecorder()
	if err := sessionMgr.Login(rec1, httptest.NewRequest("POST", "/login", nil), "507f1f77bcf86cd799439011"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	req := testutil.NewAuthenticatedRequest("POST", "/logout", testutil.AdminUser())
	for _, c := range rec1.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.HandleLogout(rec, req)

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge >= 0 {
				t.Errorf("cookie MaxAge: got %d, want negative (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestHandleLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.NewAuthenticatedRequest("POST", "/logout", testutil.AdminUser())
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	handler.HandleLogout(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	handler, sessionMgr := newTestHandler(t)
	router := logout.Routes(handler, sessionMgr)

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("anonymous logout status = %d, want 303 to login", rec.Code)
	}
}
