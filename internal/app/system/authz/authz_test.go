package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/dalemusser/exceptionpages/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx_NoUser(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)

	role, name, id, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false without a user")
	}
	if role != "visitor" || name != "" || id != primitive.NilObjectID {
		t.Errorf("unexpected visitor values: %q %q %v", role, name, id)
	}
}

func TestUserCtx_LowercasesRole(t *testing.T) {
	oid := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: oid.Hex(), Name: "Ada", Role: "ADMIN"})

	role, name, id, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if role != "admin" {
		t.Errorf("role: got %q, want %q", role, "admin")
	}
	if name != "Ada" {
		t.Errorf("name: got %q", name)
	}
	if id != oid {
		t.Errorf("id: got %v, want %v", id, oid)
	}
}

func TestUserCtx_MalformedID_FailsClosed(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-an-object-id", Role: "admin"})

	if _, _, _, ok := authz.UserCtx(req); ok {
		t.Error("expected ok=false for malformed ID")
	}
	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin=false for malformed ID")
	}
}

func TestIsAdmin(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "admin"})
	if !authz.IsAdmin(req) {
		t.Error("expected IsAdmin=true for admin")
	}

	req = httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: "editor"})
	if authz.IsAdmin(req) {
		t.Error("expected IsAdmin=false for editor")
	}
}

func TestCanEditContent(t *testing.T) {
	for _, role := range []string{"admin", "editor"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: role})
		if !authz.CanEditContent(req) {
			t.Errorf("expected CanEditContent=true for %s", role)
		}
	}

	req := httptest.NewRequest("GET", "/test", nil)
	if authz.CanEditContent(req) {
		t.Error("expected CanEditContent=false for visitor")
	}
}
