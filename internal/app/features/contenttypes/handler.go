// internal/app/features/contenttypes/handler.go
package contenttypes

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/exceptionpages/internal/app/features/errors"
	"github.com/dalemusser/exceptionpages/internal/app/system/auditlog"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Store is the content type persistence. *contenttypestore.Store satisfies it.
type Store interface {
	Create(ctx context.Context, ct models.ContentType) (models.ContentType, error)
	Get(ctx context.Context, name string) (models.ContentType, error)
	List(ctx context.Context) ([]models.ContentType, error)
	SetOnlyOne(ctx context.Context, name string, onlyOne bool) error
}

// RenderFunc renders a named template.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

// Handler owns the content types admin.
type Handler struct {
	Types  Store
	Audit  *auditlog.Logger
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	render RenderFunc
}

func NewHandler(types Store, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Types:  types,
		Audit:  audit,
		Log:    logger,
		ErrLog: errLog,
		render: func(w http.ResponseWriter, r *http.Request, name string, data any) {
			templates.Render(w, r, name, data)
		},
	}
}

// WithRenderer swaps the template renderer.
func (h *Handler) WithRenderer(fn RenderFunc) *Handler {
	h.render = fn
	return h
}
