// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	auditlogfeature "github.com/dalemusser/exceptionpages/internal/app/features/auditlog"
	contenttypesfeature "github.com/dalemusser/exceptionpages/internal/app/features/contenttypes"
	errorsfeature "github.com/dalemusser/exceptionpages/internal/app/features/errors"
	"github.com/dalemusser/exceptionpages/internal/app/features/exceptions"
	healthfeature "github.com/dalemusser/exceptionpages/internal/app/features/health"
	homefeature "github.com/dalemusser/exceptionpages/internal/app/features/home"
	loginfeature "github.com/dalemusser/exceptionpages/internal/app/features/login"
	logoutfeature "github.com/dalemusser/exceptionpages/internal/app/features/logout"
	nodesfeature "github.com/dalemusser/exceptionpages/internal/app/features/nodes"
	settingsfeature "github.com/dalemusser/exceptionpages/internal/app/features/settings"
	"github.com/dalemusser/exceptionpages/internal/app/store/audit"
	configstore "github.com/dalemusser/exceptionpages/internal/app/store/config"
	contenttypestore "github.com/dalemusser/exceptionpages/internal/app/store/contenttypes"
	nodestore "github.com/dalemusser/exceptionpages/internal/app/store/nodes"
	userstore "github.com/dalemusser/exceptionpages/internal/app/store/users"
	"github.com/dalemusser/exceptionpages/internal/app/system/auditlog"
	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/dalemusser/exceptionpages/internal/app/system/locale"
	"github.com/dalemusser/exceptionpages/internal/app/system/metrics"
	"github.com/dalemusser/exceptionpages/internal/app/system/onlyone"
	"github.com/dalemusser/exceptionpages/internal/app/system/ratelimit"
	"github.com/dalemusser/exceptionpages/internal/app/system/subrequest"
	"github.com/dalemusser/exceptionpages/internal/app/system/urlgen"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// Background workers stopped by Shutdown.
var (
	loginLimiter  *ratelimit.LoginLimiter
	settingsCache *configstore.Cache
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed.
//
// The exception redirector wraps every route, so a 4xx written by any
// handler (including chi's NotFound and the role gate's bare 403) can be
// replaced by the content node configured for its class. Replacement pages
// are rendered by re-entering this same router as a sub-request.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fresh user data on each request, so role changes and disabled accounts
	// take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(db))

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	neg, err := locale.New(appCfg.Languages)
	if err != nil {
		return nil, err
	}

	errLog := errorsfeature.NewErrorLogger(logger)
	auditStore := audit.New(db)
	auditLogger := auditlog.New(auditStore, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	nodes := nodestore.New(db)
	types := contenttypestore.New(db)
	users := userstore.New(db)
	settingsCache = configstore.NewCache(configstore.New(db), appCfg.ConfigCacheTTL)
	singletons := onlyone.New(nodes, types)
	exec := subrequest.New(logger)

	redirector := exceptions.NewRedirector(exceptions.Capabilities{
		Settings:    settingsCache,
		Lookup:      singletons,
		URLs:        urlgen.New(neg.Default()),
		Subrequests: exec,
		Defaults:    errorsfeature.NewStockPages(logger),
		Language:    neg.Current,
		Log:         logger,
	})

	r := chi.NewRouter()

	r.Use(metrics.Middleware)
	r.Use(neg.Middleware)
	r.Use(redirector.Middleware)
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(csrfProtect(appCfg, secure))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	r.Handle("/metrics", metrics.Handler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(nodes, logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	nodesHandler := nodesfeature.NewHandler(nodes, types, neg.Languages(), auditLogger, errLog, logger)
	r.Mount("/node", nodesfeature.ViewRoutes(nodesHandler))

	// Authentication
	loginLimiter = ratelimit.NewLoginLimiter()
	loginHandler := loginfeature.NewHandler(users, sessionMgr, loginLimiter, auditLogger, errLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Administration
	r.Mount(nodesfeature.AdminPath, nodesfeature.AdminRoutes(nodesHandler, sessionMgr))

	typesHandler := contenttypesfeature.NewHandler(types, auditLogger, errLog, logger)
	r.Mount(contenttypesfeature.AdminPath, contenttypesfeature.Routes(typesHandler, sessionMgr))

	settingsHandler := settingsfeature.NewHandler(settingsCache, singletons, auditLogger, errLog, logger)
	r.Route(settingsfeature.Path, func(sr chi.Router) {
		sr.Use(sessionMgr.RequireRole("admin"))
		settingsHandler.MountRoutes(sr)
	})

	auditHandler := auditlogfeature.NewHandler(auditStore, users, errLog, logger)
	r.Mount(auditlogfeature.Path, auditlogfeature.Routes(auditHandler, sessionMgr))

	// Sub-requests re-enter the full router, middleware included.
	exec.SetHandler(r)

	return r, nil
}

// csrfProtect guards every unsafe method with gorilla/csrf. The token key is
// derived from the session key so both rotate together.
func csrfProtect(appCfg AppConfig, secure bool) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName(appCfg.SessionName+"-csrf"),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil {
				r = csrf.PlaintextHTTPRequest(r)
			}
			h.ServeHTTP(w, r)
		})
	}
}
