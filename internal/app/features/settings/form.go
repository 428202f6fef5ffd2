// internal/app/features/settings/form.go
package settings

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/exceptionpages/internal/app/system/authz"
	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TemplateName is the page template for the form.
const TemplateName = "exception_settings"

type optionVM struct {
	Value    string
	Label    string
	Selected bool
}

type fieldVM struct {
	Key     string
	Label   string
	Help    string
	Value   string
	Options []optionVM
}

type settingsVM struct {
	viewdata.BaseVM
	Fields    []fieldVM
	NoTypes   bool
	Saved     bool
	Error     string
	UpdatedAt string
	UpdatedBy string
}

var fieldDefs = []struct {
	Key   string
	Label string
	Help  string
}{
	{models.ClientErrorKey, "(Only one) Content type to use for 40X error page.", "The (Only one) content type to show in case of a 40X error."},
	{models.AccessDeniedKey, "(Only one) Content type to use for 403 error page.", "The (Only one) content type to show in case of a 403 error."},
	{models.NotFoundKey, "(Only one) Content type to use for 404 error page.", "The (Only one) content type to show in case of a 404 error."},
}

// ServeSettings displays the settings form.
func (h *Handler) ServeSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, types, err := h.load(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load exception settings failed", err, "Failed to load settings.", "/")
		return
	}

	vm := h.newVM(r, current, types, current.Values())
	vm.Saved = r.URL.Query().Get("saved") == "1"
	h.render(w, r, TemplateName, vm)
}

// HandleSettings saves the three selections.
func (h *Handler) HandleSettings(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", Path)
		return
	}

	submitted := make(map[string]string, len(fieldDefs))
	for _, f := range fieldDefs {
		submitted[f.Key] = strings.TrimSpace(r.PostFormValue(f.Key))
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	current, types, err := h.load(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "load exception settings failed", err, "Failed to load settings.", Path)
		return
	}

	if msg := validate(submitted, types, current); msg != "" {
		vm := h.newVM(r, current, types, submitted)
		vm.Error = msg
		h.render(w, r, TemplateName, vm)
		return
	}

	_, uname, uid, signedIn := authz.UserCtx(r)
	next := models.ExceptionSettings{
		ClientError:   submitted[models.ClientErrorKey],
		AccessDenied:  submitted[models.AccessDeniedKey],
		NotFound:      submitted[models.NotFoundKey],
		UpdatedByName: uname,
	}
	if signedIn {
		next.UpdatedByID = &uid
	}

	if err := h.Settings.SaveExceptionSettings(ctx, next); err != nil {
		h.Log.Error("failed to save exception settings", zap.Error(err))
		vm := h.newVM(r, current, types, submitted)
		vm.Error = "Failed to save settings."
		h.render(w, r, TemplateName, vm)
		return
	}

	h.Log.Info("exception settings saved",
		zap.String("40x", next.ClientError),
		zap.String("403", next.AccessDenied),
		zap.String("404", next.NotFound),
		zap.String("by", uname))
	if signedIn {
		h.Audit.ExceptionSettingsUpdated(r.Context(), r, uid, next.Values())
	}

	http.Redirect(w, r, Path+"?saved=1", http.StatusSeeOther)
}

// load reads the record and the available types concurrently.
func (h *Handler) load(ctx context.Context) (models.ExceptionSettings, []string, error) {
	var (
		current models.ExceptionSettings
		types   []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = h.Settings.ExceptionSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		types, err = h.Types.AvailableContentTypes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.ExceptionSettings{}, nil, err
	}
	return current, types, nil
}

// validate accepts an empty value, an available type, or the value already
// stored for that key.
func validate(submitted map[string]string, types []string, current models.ExceptionSettings) string {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	for _, f := range fieldDefs {
		v := submitted[f.Key]
		if v == "" || allowed[v] || v == current.TypeFor(f.Key) {
			continue
		}
		return fmt.Sprintf("An illegal choice has been detected for the %s error page.", f.Key)
	}
	return ""
}

func (h *Handler) newVM(r *http.Request, current models.ExceptionSettings, types []string, values map[string]string) settingsVM {
	vm := settingsVM{
		BaseVM:    viewdata.NewBaseVM(r, "Exception pages", "/"),
		NoTypes:   len(types) == 0,
		UpdatedBy: current.UpdatedByName,
	}
	if current.UpdatedAt != nil {
		vm.UpdatedAt = current.UpdatedAt.Format("2006-01-02 15:04 MST")
	}
	for _, f := range fieldDefs {
		vm.Fields = append(vm.Fields, fieldVM{
			Key:     f.Key,
			Label:   f.Label,
			Help:    f.Help,
			Value:   values[f.Key],
			Options: options(types, values[f.Key]),
		})
	}
	return vm
}

// options lists "none" then every type. A selected value that is no longer
// available stays listed so saving other fields keeps it.
func options(types []string, selected string) []optionVM {
	opts := make([]optionVM, 0, len(types)+2)
	opts = append(opts, optionVM{Value: "", Label: "- None -", Selected: selected == ""})
	found := selected == ""
	for _, t := range types {
		opts = append(opts, optionVM{Value: t, Label: t, Selected: t == selected})
		if t == selected {
			found = true
		}
	}
	if !found {
		opts = append(opts, optionVM{Value: selected, Label: selected + " (unavailable)", Selected: true})
	}
	return opts
}
