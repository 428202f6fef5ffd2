package contenttypes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/dalemusser/exceptionpages/internal/app/features/contenttypes"
	uierrors "github.com/dalemusser/exceptionpages/internal/app/features/errors"
	contenttypestore "github.com/dalemusser/exceptionpages/internal/app/store/contenttypes"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/exceptionpages/internal/testutil"
	"go.uber.org/zap"
)

type memTypes struct {
	types map[string]models.ContentType
}

func (m *memTypes) Create(_ context.Context, ct models.ContentType) (models.ContentType, error) {
	if !contenttypestore.ValidName(ct.Name) {
		return models.ContentType{}, contenttypestore.ErrInvalidName
	}
	if _, ok := m.types[ct.Name]; ok {
		return models.ContentType{}, contenttypestore.ErrDuplicateName
	}
	m.types[ct.Name] = ct
	return ct, nil
}

func (m *memTypes) Get(_ context.Context, name string) (models.ContentType, error) {
	ct, ok := m.types[name]
	if !ok {
		return models.ContentType{}, contenttypestore.ErrNotFound
	}
	return ct, nil
}

func (m *memTypes) List(context.Context) ([]models.ContentType, error) {
	var out []models.ContentType
	for _, ct := range m.types {
		out = append(out, ct)
	}
	return out, nil
}

func (m *memTypes) SetOnlyOne(_ context.Context, name string, onlyOne bool) error {
	ct, ok := m.types[name]
	if !ok {
		return contenttypestore.ErrNotFound
	}
	ct.OnlyOne = onlyOne
	m.types[name] = ct
	return nil
}

type captured struct {
	name string
	data any
}

func (c *captured) render(w http.ResponseWriter, _ *http.Request, name string, data any) {
	c.name, c.data = name, data
	w.WriteHeader(http.StatusOK)
}

func newHandler(store *memTypes) (*contenttypes.Handler, *captured) {
	logger := zap.NewNop()
	c := &captured{}
	return contenttypes.NewHandler(store, nil, uierrors.NewErrorLogger(logger), logger).WithRenderer(c.render), c
}

func post(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, testutil.AdminUser())
}

func TestHandleNew_CreatesOnlyOneType(t *testing.T) {
	store := &memTypes{types: map[string]models.ContentType{}}
	h, _ := newHandler(store)

	rec := httptest.NewRecorder()
	h.HandleNew(rec, post("/admin/types/new", url.Values{"name": {"ErrorPage"}, "label": {"Error page"}, "only_one": {"1"}}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if ct := store.types["ErrorPage"]; !ct.OnlyOne || ct.Label != "Error page" {
		t.Errorf("stored = %+v", ct)
	}
}

func TestHandleNew_RejectsBadAndDuplicateNames(t *testing.T) {
	store := &memTypes{types: map[string]models.ContentType{"Missing": {Name: "Missing"}}}
	h, c := newHandler(store)

	for _, name := range []string{"9lives", "Missing"} {
		rec := httptest.NewRecorder()
		h.HandleNew(rec, post("/admin/types/new", url.Values{"name": {name}}))
		if rec.Code == http.StatusSeeOther {
			t.Errorf("%q accepted", name)
		}
		if reflect.ValueOf(c.data).FieldByName("Error").String() == "" {
			t.Errorf("%q: no form error", name)
		}
	}
}

func TestHandleOnlyOne_Toggles(t *testing.T) {
	store := &memTypes{types: map[string]models.ContentType{"Missing": {Name: "Missing"}}}
	h, _ := newHandler(store)

	req := testutil.WithChiURLParam(post("/admin/types/Missing/onlyone", url.Values{"only_one": {"1"}}), "name", "Missing")
	rec := httptest.NewRecorder()
	h.HandleOnlyOne(rec, req)

	if rec.Code != http.StatusSeeOther || !store.types["Missing"].OnlyOne {
		t.Errorf("status = %d, type = %+v", rec.Code, store.types["Missing"])
	}

	req = testutil.WithChiURLParam(post("/admin/types/Nope/onlyone", url.Values{"only_one": {"1"}}), "name", "Nope")
	rec = httptest.NewRecorder()
	h.HandleOnlyOne(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown type status = %d, want 404", rec.Code)
	}
}

func TestServeList(t *testing.T) {
	store := &memTypes{types: map[string]models.ContentType{"Missing": {Name: "Missing", OnlyOne: true}}}
	h, c := newHandler(store)

	h.ServeList(httptest.NewRecorder(), testutil.NewAuthenticatedRequest(http.MethodGet, "/admin/types", testutil.AdminUser()))

	if c.name != contenttypes.ListTemplate {
		t.Fatalf("template = %q", c.name)
	}
	if n := reflect.ValueOf(c.data).FieldByName("Types").Len(); n != 1 {
		t.Errorf("types = %d, want 1", n)
	}
}
