package subrequest_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/exceptionpages/internal/app/system/subrequest"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newExecutor(t *testing.T) *subrequest.Executor {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/node/{id}", func(w http.ResponseWriter, r *http.Request) {
		info, _ := subrequest.FromContext(r.Context())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Length", "999")
		w.Header().Set("X-Seen-ID", r.Header.Get(subrequest.HeaderID))
		_, _ = w.Write([]byte("node " + chi.URLParam(r, "id") +
			" lang=" + r.URL.Query().Get("lang") +
			" dest=" + r.URL.Query().Get(subrequest.DestinationParam) +
			" info=" + info.Destination +
			" method=" + r.Method))
	})
	r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	e := subrequest.New(zap.NewNop())
	e.SetHandler(r)
	return e
}

func TestRender_WritesTargetWithStatus(t *testing.T) {
	e := newExecutor(t)
	req := httptest.NewRequest(http.MethodGet, "/missing/page?x=1", nil)
	rec := httptest.NewRecorder()

	if err := e.Render(rec, req, "/node/17", http.StatusNotFound); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "node 17") {
		t.Errorf("body = %q, want node 17 rendering", body)
	}
	if !strings.Contains(body, "dest=/missing/page?x=1") || !strings.Contains(body, "info=/missing/page?x=1") {
		t.Errorf("destination not passed through: %q", body)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "" {
		t.Errorf("Content-Length should not be copied, got %q", got)
	}
	if rec.Header().Get("X-Seen-ID") == "" {
		t.Error("sub-request id header not set")
	}
}

func TestRender_KeepsTargetQuery(t *testing.T) {
	e := newExecutor(t)
	req := httptest.NewRequest(http.MethodGet, "/gone", nil)
	rec := httptest.NewRecorder()

	if err := e.Render(rec, req, "/node/4?lang=fr", http.StatusForbidden); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "lang=fr") {
		t.Errorf("body = %q, want lang=fr", rec.Body.String())
	}
}

func TestRender_PostBecomesGet(t *testing.T) {
	e := newExecutor(t)
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("a=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	if err := e.Render(rec, req, "/node/1", http.StatusBadRequest); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "method=GET") {
		t.Errorf("body = %q, want method=GET", rec.Body.String())
	}
}

func TestRender_NonOKTarget(t *testing.T) {
	e := newExecutor(t)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()

	err := e.Render(rec, req, "/broken", http.StatusNotFound)
	if !errors.Is(err, subrequest.ErrNotOK) {
		t.Fatalf("err = %v, want ErrNotOK", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("nothing should be written on failure, got %q", rec.Body.String())
	}
}

func TestRender_UnknownRoute(t *testing.T) {
	e := newExecutor(t)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	err := e.Render(httptest.NewRecorder(), req, "/node/1/extra", http.StatusNotFound)
	if !errors.Is(err, subrequest.ErrNotOK) {
		t.Fatalf("err = %v, want ErrNotOK", err)
	}
}

func TestRender_RejectsAbsoluteTarget(t *testing.T) {
	e := newExecutor(t)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if err := e.Render(httptest.NewRecorder(), req, "https://evil.example/node/1", http.StatusNotFound); err == nil {
		t.Fatal("expected error for absolute target")
	}
}

func TestRender_NoHandler(t *testing.T) {
	e := subrequest.New(zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if err := e.Render(httptest.NewRecorder(), req, "/node/1", http.StatusNotFound); err == nil {
		t.Fatal("expected error without handler")
	}
}

func TestRender_FromInsideRoutedRequest(t *testing.T) {
	// The outer request already carries a chi route context.
	e := newExecutor(t)
	outer := chi.NewRouter()
	outer.Get("/outer/{slug}", func(w http.ResponseWriter, r *http.Request) {
		if err := e.Render(w, r, "/node/9", http.StatusNotFound); err != nil {
			t.Errorf("Render failed: %v", err)
		}
	})
	rec := httptest.NewRecorder()
	outer.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/outer/abc", nil))

	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "node 9") {
		t.Errorf("got %d %q, want 404 with node 9", rec.Code, rec.Body.String())
	}
}

func TestIsSubrequest(t *testing.T) {
	var seen bool
	e := subrequest.New(zap.NewNop())
	e.SetHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = subrequest.IsSubrequest(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if subrequest.IsSubrequest(req) {
		t.Error("plain request reported as sub-request")
	}
	if err := e.Render(httptest.NewRecorder(), req, "/node/1", http.StatusNotFound); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !seen {
		t.Error("sub-request not marked in context")
	}
}
