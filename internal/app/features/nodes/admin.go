// internal/app/features/nodes/admin.go
package nodes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	contenttypestore "github.com/dalemusser/exceptionpages/internal/app/store/contenttypes"
	nodestore "github.com/dalemusser/exceptionpages/internal/app/store/nodes"
	"github.com/dalemusser/exceptionpages/internal/app/system/authz"
	"github.com/dalemusser/exceptionpages/internal/app/system/htmlsanitize"
	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Admin templates.
const (
	ListTemplate = "node_list"
	FormTemplate = "node_form"
)

const listLimit = 500

type nodeRow struct {
	ID        int64
	Title     string
	Type      string
	Language  string
	Published bool
}

type nodeListVM struct {
	viewdata.BaseVM
	Rows   []nodeRow
	Types  []models.ContentType
	Filter string
}

type typeOption struct {
	Name     string
	Label    string
	OnlyOne  bool
	Selected bool
}

type nodeFormVM struct {
	viewdata.BaseVM
	IsNew     bool
	ID        int64
	Type      string
	Language  string
	Title     string
	Body      string
	Published bool
	Types     []typeOption
	Languages []string
	CanDelete bool
	Error     string
}

// nodeInput is what the node form submits.
type nodeInput struct {
	Type      string
	Language  string
	Title     string
	Body      string
	Published bool
}

func readInput(r *http.Request) nodeInput {
	return nodeInput{
		Type:      strings.TrimSpace(r.PostFormValue("type")),
		Language:  strings.TrimSpace(r.PostFormValue("language")),
		Title:     strings.TrimSpace(r.PostFormValue("title")),
		Body:      htmlsanitize.Sanitize(strings.TrimSpace(r.PostFormValue("body"))),
		Published: r.PostFormValue("published") != "",
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/content – list                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeList lists nodes, optionally filtered by ?type=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	filter := query.Get(r, "type")
	nodes, err := h.Nodes.List(ctx, filter, listLimit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list nodes failed", err, "Failed to load content.", "/")
		return
	}
	types, err := h.Types.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list content types failed", err, "Failed to load content.", "/")
		return
	}

	vm := nodeListVM{
		BaseVM: viewdata.NewBaseVM(r, "Content", "/"),
		Types:  types,
		Filter: filter,
	}
	for _, n := range nodes {
		vm.Rows = append(vm.Rows, nodeRow{
			ID:        n.ID,
			Title:     n.Title,
			Type:      n.Type,
			Language:  n.Language,
			Published: n.Published,
		})
	}
	h.render(w, r, ListTemplate, vm)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/POST /admin/content/new                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeNew shows an empty node form. ?type= preselects the content type.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	in := nodeInput{
		Type:      query.Get(r, "type"),
		Language:  h.defaultLanguage(),
		Published: true,
	}
	vm, err := h.formVM(ctx, r, true, 0, in)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list content types failed", err, "Failed to load form.", AdminPath)
		return
	}
	h.render(w, r, FormTemplate, vm)
}

// HandleNew creates a node.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", AdminPath)
		return
	}
	in := readInput(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if msg, err := h.validate(ctx, 0, in); err != nil {
		h.ErrLog.LogServerError(w, r, "validate node failed", err, "Failed to save content.", AdminPath)
		return
	} else if msg != "" {
		h.renderFormError(ctx, w, r, true, 0, in, msg)
		return
	}

	n, err := h.Nodes.Create(ctx, models.Node{
		Type:      in.Type,
		Language:  in.Language,
		Title:     in.Title,
		Body:      in.Body,
		Published: in.Published,
	})
	if err != nil {
		h.Log.Error("failed to create node", zap.String("type", in.Type), zap.Error(err))
		h.renderFormError(ctx, w, r, true, 0, in, "Failed to save content.")
		return
	}

	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.NodeCreated(r.Context(), r, uid, n.ID, n.Type, n.Title)
	}
	http.Redirect(w, r, "/node/"+strconv.FormatInt(n.ID, 10), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/POST /admin/content/{id}/edit                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeEdit shows the form for an existing node.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, ok := h.loadForAdmin(ctx, w, r)
	if !ok {
		return
	}
	vm, err := h.formVM(ctx, r, false, n.ID, nodeInput{
		Type:      n.Type,
		Language:  n.Language,
		Title:     n.Title,
		Body:      n.Body,
		Published: n.Published,
	})
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list content types failed", err, "Failed to load form.", AdminPath)
		return
	}
	h.render(w, r, FormTemplate, vm)
}

// HandleEdit saves changes to a node. The content type is fixed at creation.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", AdminPath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadForAdmin(ctx, w, r)
	if !ok {
		return
	}
	in := readInput(r)
	in.Type = n.Type

	if msg, err := h.validate(ctx, n.ID, in); err != nil {
		h.ErrLog.LogServerError(w, r, "validate node failed", err, "Failed to save content.", AdminPath)
		return
	} else if msg != "" {
		h.renderFormError(ctx, w, r, false, n.ID, in, msg)
		return
	}

	err := h.Nodes.Update(ctx, n.ID, models.Node{
		Language:  in.Language,
		Title:     in.Title,
		Body:      in.Body,
		Published: in.Published,
	})
	if err != nil {
		h.Log.Error("failed to update node", zap.Int64("id", n.ID), zap.Error(err))
		h.renderFormError(ctx, w, r, false, n.ID, in, "Failed to save content.")
		return
	}

	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.NodeUpdated(r.Context(), r, uid, n.ID, n.Type, in.Title)
	}
	http.Redirect(w, r, "/node/"+strconv.FormatInt(n.ID, 10), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/content/{id}/delete                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleDelete removes a node.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	n, ok := h.loadForAdmin(ctx, w, r)
	if !ok {
		return
	}
	if _, err := h.Nodes.Delete(ctx, n.ID); err != nil {
		h.ErrLog.LogServerError(w, r, "delete node failed", err, "Failed to delete content.", AdminPath)
		return
	}

	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.NodeDeleted(r.Context(), r, uid, n.ID, n.Type, n.Title)
	}
	http.Redirect(w, r, AdminPath, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) loadForAdmin(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Node, bool) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		h.ErrLog.LogNotFound(w, r, "bad node id", nil, "Content not found.", AdminPath)
		return models.Node{}, false
	}
	n, err := h.Nodes.GetByID(ctx, id)
	if errors.Is(err, nodestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "node not found", err, "Content not found.", AdminPath)
		return models.Node{}, false
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load node failed", err, "Failed to load content.", AdminPath)
		return models.Node{}, false
	}
	return n, true
}

// validate returns a user-facing message for bad input, or an error when a
// lookup failed. selfID is the node being edited (0 when creating).
func (h *Handler) validate(ctx context.Context, selfID int64, in nodeInput) (string, error) {
	if in.Title == "" {
		return "Title is required.", nil
	}
	if !h.knownLanguage(in.Language) {
		return "Choose one of the site languages.", nil
	}
	ct, err := h.Types.Get(ctx, in.Type)
	if errors.Is(err, contenttypestore.ErrNotFound) {
		return "Choose a content type.", nil
	}
	if err != nil {
		return "", err
	}
	if !ct.OnlyOne {
		return "", nil
	}

	existing, found, err := h.Nodes.FirstOfType(ctx, ct.Name, in.Language)
	if err != nil {
		return "", err
	}
	if found && existing != selfID {
		return fmt.Sprintf("Only one %s may exist per language; node %d already uses %q.", ct.Label, existing, in.Language), nil
	}
	return "", nil
}

func (h *Handler) formVM(ctx context.Context, r *http.Request, isNew bool, id int64, in nodeInput) (nodeFormVM, error) {
	types, err := h.Types.List(ctx)
	if err != nil {
		return nodeFormVM{}, err
	}
	title := "Edit content"
	if isNew {
		title = "Add content"
	}
	vm := nodeFormVM{
		BaseVM:    viewdata.NewBaseVM(r, title, AdminPath),
		IsNew:     isNew,
		ID:        id,
		Type:      in.Type,
		Language:  in.Language,
		Title:     in.Title,
		Body:      in.Body,
		Published: in.Published,
		Languages: h.Languages,
		CanDelete: !isNew && authz.IsAdmin(r),
	}
	for _, ct := range types {
		vm.Types = append(vm.Types, typeOption{
			Name:     ct.Name,
			Label:    ct.Label,
			OnlyOne:  ct.OnlyOne,
			Selected: ct.Name == in.Type,
		})
	}
	return vm, nil
}

func (h *Handler) renderFormError(ctx context.Context, w http.ResponseWriter, r *http.Request, isNew bool, id int64, in nodeInput, msg string) {
	vm, err := h.formVM(ctx, r, isNew, id, in)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list content types failed", err, "Failed to load form.", AdminPath)
		return
	}
	vm.Error = msg
	h.render(w, r, FormTemplate, vm)
}
