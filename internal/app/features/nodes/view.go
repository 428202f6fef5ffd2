// internal/app/features/nodes/view.go
package nodes

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"

	nodestore "github.com/dalemusser/exceptionpages/internal/app/store/nodes"
	"github.com/dalemusser/exceptionpages/internal/app/system/authz"
	"github.com/dalemusser/exceptionpages/internal/app/system/htmlsanitize"
	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// ViewTemplate renders a single node.
const ViewTemplate = "node_view"

type nodeViewVM struct {
	viewdata.BaseVM
	Node    models.Node
	Content template.HTML
	CanEdit bool
}

// parseID reads the {id} URL parameter. Only positive integers are valid.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ServeNode renders a node at its canonical URL. Unpublished nodes are
// only visible to admins.
func (h *Handler) ServeNode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.LogNotFound(w, r, "bad node id", nil, "The page you requested could not be found.", "/")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Nodes.GetByID(ctx, id)
	if errors.Is(err, nodestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "node not found", err, "The page you requested could not be found.", "/")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load node failed", err, "Failed to load page.", "/")
		return
	}

	isAdmin := authz.IsAdmin(r)
	if !n.Published && !isAdmin {
		h.ErrLog.LogNotFound(w, r, "node unpublished", nil, "The page you requested could not be found.", "/")
		return
	}

	w.Header().Set("Content-Language", n.Language)
	h.render(w, r, ViewTemplate, nodeViewVM{
		BaseVM:  viewdata.NewBaseVM(r, n.Title, "/"),
		Node:    n,
		Content: htmlsanitize.SanitizeToHTML(n.Body),
		CanEdit: authz.CanEditContent(r),
	})
}
