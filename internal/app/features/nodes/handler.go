// internal/app/features/nodes/handler.go
package nodes

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/exceptionpages/internal/app/features/errors"
	"github.com/dalemusser/exceptionpages/internal/app/system/auditlog"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// NodeStore is the node persistence the handlers need. *nodestore.Store
// satisfies it.
type NodeStore interface {
	GetByID(ctx context.Context, id int64) (models.Node, error)
	FirstOfType(ctx context.Context, contentType, lang string) (int64, bool, error)
	List(ctx context.Context, contentType string, limit int64) ([]models.Node, error)
	Create(ctx context.Context, n models.Node) (models.Node, error)
	Update(ctx context.Context, id int64, mut models.Node) error
	Delete(ctx context.Context, id int64) (int64, error)
}

// TypeStore lists and resolves content types. *contenttypestore.Store
// satisfies it.
type TypeStore interface {
	Get(ctx context.Context, name string) (models.ContentType, error)
	List(ctx context.Context) ([]models.ContentType, error)
}

// RenderFunc renders a named template.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

// Handler owns the public node page and the content admin.
type Handler struct {
	Nodes     NodeStore
	Types     TypeStore
	Languages []string
	Audit     *auditlog.Logger
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger

	render RenderFunc
}

// NewHandler constructs a Handler. languages lists the site languages, the
// first being the default.
func NewHandler(nodes NodeStore, types TypeStore, languages []string, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Nodes:     nodes,
		Types:     types,
		Languages: languages,
		Audit:     audit,
		Log:       logger,
		ErrLog:    errLog,
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

func (h *Handler) defaultLanguage() string {
	if len(h.Languages) == 0 {
		return "en"
	}
	return h.Languages[0]
}

func (h *Handler) knownLanguage(lang string) bool {
	for _, l := range h.Languages {
		if l == lang {
			return true
		}
	}
	return false
}
