// internal/app/features/exceptions/handlers.go
package exceptions

import (
	"net/http"
	"time"

	"github.com/dalemusser/exceptionpages/internal/app/system/errorevent"
	"github.com/dalemusser/exceptionpages/internal/app/system/metrics"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"go.uber.org/zap"
)

// HandlerFunc handles one error event. It must write a response.
type HandlerFunc func(c *Capabilities, ev *errorevent.Event)

// DefaultHandlers returns the handler for each class.
func DefaultHandlers() map[errorevent.Class]HandlerFunc {
	return map[errorevent.Class]HandlerFunc{
		errorevent.ClassClientError:  On40x,
		errorevent.ClassAccessDenied: On403,
		errorevent.ClassNotFound:     On404,
	}
}

// On40x substitutes content for any client error that is not 403 or 404.
// The response keeps the triggering status. It falls back to the general
// 4xx default.
func On40x(c *Capabilities, ev *errorevent.Event) {
	handle(c, ev, models.ClientErrorKey, ev.Status, c.Defaults.On4xx)
}

// On403 substitutes content for access denied.
func On403(c *Capabilities, ev *errorevent.Event) {
	handle(c, ev, models.AccessDeniedKey, http.StatusForbidden, c.Defaults.On403)
}

// On404 substitutes content for page not found.
func On404(c *Capabilities, ev *errorevent.Event) {
	handle(c, ev, models.NotFoundKey, http.StatusNotFound, c.Defaults.On404)
}

func handle(c *Capabilities, ev *errorevent.Event, key string, status int, fallback func(*errorevent.Event)) {
	outcome := substitute(c, ev, key, status)
	metrics.ObserveException(key, outcome)
	if outcome != metrics.OutcomeSubstituted {
		fallback(ev)
	}
}

// substitute renders the configured singleton node for key and reports the
// outcome. Nothing is written unless the outcome is OutcomeSubstituted.
func substitute(c *Capabilities, ev *errorevent.Event, key string, status int) string {
	r := ev.Request
	ctx := r.Context()
	log := c.Log.With(
		zap.String("class", key),
		zap.Int("status", ev.Status),
		zap.String("path", r.URL.Path),
	)

	settings, err := c.Settings.ExceptionSettings(ctx)
	if err != nil {
		log.Error("read exception settings failed", zap.Error(err))
		return metrics.OutcomeError
	}
	contentType := settings.TypeFor(key)
	if contentType == "" {
		log.Debug("no substitute configured")
		return metrics.OutcomeDefault
	}

	lang := c.Language(r)
	id, ok, err := c.Lookup.ExistsSingletonOfType(ctx, contentType, lang)
	if err != nil {
		log.Error("singleton lookup failed", zap.String("content_type", contentType), zap.String("lang", lang), zap.Error(err))
		return metrics.OutcomeError
	}
	if !ok {
		log.Debug("no singleton for content type", zap.String("content_type", contentType), zap.String("lang", lang))
		return metrics.OutcomeMiss
	}

	target, err := c.URLs.NodeURL(id, lang)
	if err != nil {
		log.Error("build node url failed", zap.Int64("node_id", id), zap.Error(err))
		return metrics.OutcomeError
	}

	start := time.Now()
	if err := c.Subrequests.Render(ev.Writer, r, target, status); err != nil {
		log.Warn("substitute render failed", zap.String("target", target), zap.Error(err))
		return metrics.OutcomeError
	}
	metrics.ObserveSubrequest(key, time.Since(start))

	log.Info("error page substituted",
		zap.String("content_type", contentType),
		zap.Int64("node_id", id),
		zap.String("target", target))
	return metrics.OutcomeSubstituted
}
