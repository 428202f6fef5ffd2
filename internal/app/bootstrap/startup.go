// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/exceptionpages/internal/app/resources"
	userstore "github.com/dalemusser/exceptionpages/internal/app/store/users"
	"github.com/dalemusser/exceptionpages/internal/app/system/metrics"
	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}
	metrics.Register()
	resources.LoadSharedTemplates()
	viewdata.Init(appCfg.SiteName)

	if err := ensureAdmin(ctx, deps, appCfg, logger); err != nil {
		logger.Error("ensure admin failed", zap.Error(err))
		return err
	}
	return nil
}

// ensureAdmin creates or promotes the configured admin account.
func ensureAdmin(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	users := userstore.New(deps.MongoDatabase)
	if appCfg.AdminPassword == "" {
		if _, err := users.GetByEmail(ctx, appCfg.AdminEmail); err != nil {
			logger.Warn("admin account missing and no admin_password set", zap.String("email", appCfg.AdminEmail))
			return nil
		}
	}

	created, err := users.EnsureAdmin(ctx, "Administrator", appCfg.AdminEmail, appCfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("created admin account", zap.String("email", appCfg.AdminEmail))
	}
	return nil
}
