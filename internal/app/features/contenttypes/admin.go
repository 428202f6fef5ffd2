// internal/app/features/contenttypes/admin.go
package contenttypes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	contenttypestore "github.com/dalemusser/exceptionpages/internal/app/store/contenttypes"
	"github.com/dalemusser/exceptionpages/internal/app/system/authz"
	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Templates.
const (
	ListTemplate = "contenttype_list"
	FormTemplate = "contenttype_form"
)

type listVM struct {
	viewdata.BaseVM
	Types []models.ContentType
}

type formVM struct {
	viewdata.BaseVM
	Name        string
	Label       string
	Description string
	OnlyOne     bool
	Error       string
}

// ServeList lists every content type with its only-one flag.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	types, err := h.Types.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "list content types failed", err, "Failed to load content types.", "/")
		return
	}
	h.render(w, r, ListTemplate, listVM{
		BaseVM: viewdata.NewBaseVM(r, "Content types", "/"),
		Types:  types,
	})
}

// ServeNew shows the add form.
func (h *Handler) ServeNew(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, FormTemplate, formVM{
		BaseVM: viewdata.NewBaseVM(r, "Add content type", AdminPath),
	})
}

// HandleNew creates a content type.
func (h *Handler) HandleNew(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", AdminPath)
		return
	}
	vm := formVM{
		BaseVM:      viewdata.NewBaseVM(r, "Add content type", AdminPath),
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Label:       strings.TrimSpace(r.PostFormValue("label")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		OnlyOne:     r.PostFormValue("only_one") != "",
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ct, err := h.Types.Create(ctx, models.ContentType{
		Name:        vm.Name,
		Label:       vm.Label,
		Description: vm.Description,
		OnlyOne:     vm.OnlyOne,
	})
	switch {
	case errors.Is(err, contenttypestore.ErrInvalidName), errors.Is(err, contenttypestore.ErrDuplicateName):
		vm.Error = err.Error()
		h.render(w, r, FormTemplate, vm)
		return
	case err != nil:
		h.Log.Error("failed to create content type", zap.String("name", vm.Name), zap.Error(err))
		vm.Error = "Failed to save content type."
		h.render(w, r, FormTemplate, vm)
		return
	}

	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.ContentTypeCreated(r.Context(), r, uid, ct.Name, ct.OnlyOne)
	}
	http.Redirect(w, r, AdminPath, http.StatusSeeOther)
}

// HandleOnlyOne sets or clears the only-one flag. Clearing it does not touch
// the exception settings; a configured type that stops being only-one simply
// stops being offered by the settings form.
func (h *Handler) HandleOnlyOne(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", AdminPath)
		return
	}
	name := chi.URLParam(r, "name")
	onlyOne := r.PostFormValue("only_one") == "1"

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Types.SetOnlyOne(ctx, name, onlyOne)
	if errors.Is(err, contenttypestore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "content type not found", err, "Content type not found.", AdminPath)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "update content type failed", err, "Failed to update content type.", AdminPath)
		return
	}

	if _, _, uid, ok := authz.UserCtx(r); ok {
		h.Audit.ContentTypeUpdated(r.Context(), r, uid, name, onlyOne)
	}
	http.Redirect(w, r, AdminPath, http.StatusSeeOther)
}
