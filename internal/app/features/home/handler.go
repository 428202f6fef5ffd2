package home

import (
	"context"
	"net/http"

	"github.com/dalemusser/exceptionpages/internal/app/system/locale"
	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// TemplateName is the front page template.
const TemplateName = "home"

const frontPageLimit = 20

// Lister returns published nodes for the front page. *nodestore.Store
// satisfies it.
type Lister interface {
	ListPublished(ctx context.Context, lang string, limit int64) ([]models.Node, error)
}

// RenderFunc renders a named template.
type RenderFunc func(w http.ResponseWriter, r *http.Request, name string, data any)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Nodes Lister
	Log   *zap.Logger

	render RenderFunc
}

func NewHandler(nodes Lister, logger *zap.Logger) *Handler {
	return &Handler{
		Nodes: nodes,
		Log:   logger,
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

type homeVM struct {
	viewdata.BaseVM
	Nodes []models.Node
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeRoot lists published content in the current language. A listing
// failure still renders the page, just without the list.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	lang, _ := locale.FromContext(r.Context())
	nodes, err := h.Nodes.ListPublished(ctx, lang, frontPageLimit)
	if err != nil {
		h.Log.Warn("front page listing failed", zap.String("lang", lang), zap.Error(err))
	}

	h.render(w, r, TemplateName, homeVM{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
		Nodes:  nodes,
	})
}
