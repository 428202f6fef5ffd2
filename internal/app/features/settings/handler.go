// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/exceptionpages/internal/app/features/errors"
	"github.com/dalemusser/exceptionpages/internal/app/system/auditlog"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Store reads and writes the exception.settings record.
type Store interface {
	ExceptionSettings(ctx context.Context) (models.ExceptionSettings, error)
	SaveExceptionSettings(ctx context.Context, s models.ExceptionSettings) error
}

// TypeSource lists the content types that may back an error page.
type TypeSource interface {
	AvailableContentTypes(ctx context.Context) ([]string, error)
}

// RenderFunc renders a named template.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

// Handler owns the exception page settings form.
type Handler struct {
	Settings Store
	Types    TypeSource
	Audit    *auditlog.Logger
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger

	render RenderFunc
}

// NewHandler constructs a Handler over the settings record and the
// singleton lookup service.
func NewHandler(settings Store, types TypeSource, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Settings: settings,
		Types:    types,
		Audit:    audit,
		Log:      logger,
		ErrLog:   errLog,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

// WithRenderer swaps the template renderer. Tests use it to inspect view
// models without a template engine.
func (h *Handler) WithRenderer(fn RenderFunc) *Handler {
	h.render = fn
	return h
}
