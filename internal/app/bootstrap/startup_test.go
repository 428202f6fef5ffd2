package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/exceptionpages/internal/app/resources"
	configstore "github.com/dalemusser/exceptionpages/internal/app/store/config"
	userstore "github.com/dalemusser/exceptionpages/internal/app/store/users"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/exceptionpages/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "exception_pages",
		SessionKey:    "test-session-key-0123456789abcdef0123456789",
		SessionName:   "exceptionpages-session",
		SessionMaxAge: time.Hour,
		Languages:     []string{"en", "fr"},
		AuditLogAuth:  "all",
		AuditLogAdmin: "db",
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"bad uri":        func(c *AppConfig) { c.MongoURI = "postgres://nope" },
		"no languages":   func(c *AppConfig) { c.Languages = nil },
		"bad language":   func(c *AppConfig) { c.Languages = []string{"not a tag"} },
		"bad audit auth": func(c *AppConfig) { c.AuditLogAuth = "sometimes" },
		"bad audit adm":  func(c *AppConfig) { c.AuditLogAdmin = "" },
		"negative ttl":   func(c *AppConfig) { c.ConfigCacheTTL = -time.Second },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := ValidateConfig(nil, cfg, testLogger()); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEnsureAdmin_CreatesAndIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	cfg := validConfig()
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminPassword = "pw"

	if err := ensureAdmin(ctx, deps, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	if err := ensureAdmin(ctx, deps, cfg, testLogger()); err != nil {
		t.Fatalf("second ensureAdmin failed: %v", err)
	}

	u, err := userstore.New(db).Authenticate(ctx, "admin@example.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("role = %q", u.Role)
	}
}

func TestEnsureAdmin_NoPasswordSkipsCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cfg := validConfig()
	cfg.AdminEmail = "admin@example.com"

	if err := ensureAdmin(ctx, DBDeps{MongoDatabase: db}, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	n, _ := db.Collection("users").CountDocuments(ctx, map[string]any{})
	if n != 0 {
		t.Errorf("created %d users without a password", n)
	}
}

var sharedTemplatesOnce sync.Once

func buildTestHandler(t *testing.T) (http.Handler, DBDeps) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sharedTemplatesOnce.Do(resources.LoadSharedTemplates)

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	t.Cleanup(func() {
		if loginLimiter != nil {
			loginLimiter.Stop()
		}
		if settingsCache != nil {
			_ = settingsCache.Close()
		}
	})

	h, err := BuildHandler(&config.CoreConfig{Env: "test"}, validConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	return h, deps
}

func htmlGet(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Accept", "text/html")
	return req
}

func TestBuildHandler_NotFoundWithoutSettingsReplaysOriginal(t *testing.T) {
	h, _ := buildTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, htmlGet("/no/such/page"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	// chi's own NotFound body is replayed unchanged.
	if !strings.Contains(rec.Body.String(), "404 page not found") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestBuildHandler_NotFoundSubstitutesConfiguredNode(t *testing.T) {
	h, deps := buildTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, deps.MongoDatabase)
	fx.CreateContentType(ctx, "Missing", true)
	fx.CreateNode(ctx, 17, "Missing", "en", "Nothing here")
	fx.CreateNode(ctx, 18, "Missing", "fr", "Rien ici")

	cache := configstore.NewCache(configstore.New(deps.MongoDatabase), 0)
	if err := cache.SaveExceptionSettings(ctx, models.ExceptionSettings{NotFound: "Missing"}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, htmlGet("/no/such/page"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<p>Nothing here</p>") {
		t.Errorf("body does not contain node 17: %q", rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}

	req := htmlGet("/no/such/page")
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), "<p>Rien ici</p>") {
		t.Errorf("french visitor did not get node 18: %q", rec.Body.String())
	}
}

func TestBuildHandler_JSONClientsAreNotIntercepted(t *testing.T) {
	h, _ := buildTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/no/such/page", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<html") {
		t.Error("JSON client received an HTML error page")
	}
}

func TestBuildHandler_Health(t *testing.T) {
	h, _ := buildTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestCSRFProtect_RejectsUnsignedPost(t *testing.T) {
	mw := csrfProtect(validConfig(), false)
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("POST without token = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("GET = %d, want 204", rec.Code)
	}
}
