package userstore_test

import (
	"errors"
	"testing"

	userstore "github.com/dalemusser/exceptionpages/internal/app/store/users"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/exceptionpages/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	u, err := store.Create(ctx, models.User{FullName: "Ed Itor", Email: " Ed@Example.com ", Role: "Editor"}, "s3cret")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.Role != "editor" || u.Status != "active" || u.PasswordHash == "s3cret" {
		t.Errorf("user = %+v", u)
	}

	got, err := store.Authenticate(ctx, "ed@example.com", "s3cret")
	if err != nil || got.ID != u.ID {
		t.Errorf("Authenticate = %v, %v", got, err)
	}
	if _, err := store.Authenticate(ctx, "ed@example.com", "wrong"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := store.Authenticate(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("unknown user err = %v", err)
	}

	if _, err := store.Create(ctx, models.User{Email: "ED@example.com", Role: "editor"}, "x"); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("duplicate err = %v", err)
	}
	if _, err := store.Create(ctx, models.User{Email: "x@example.com", Role: "member"}, "x"); err == nil {
		t.Error("accepted unknown role")
	}
}

func TestStore_EnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.EnsureAdmin(ctx, "Admin", "admin@example.com", "pw")
	if err != nil || !created {
		t.Fatalf("first EnsureAdmin = %v, %v", created, err)
	}
	created, err = store.EnsureAdmin(ctx, "Admin", "admin@example.com", "other")
	if err != nil || created {
		t.Errorf("second EnsureAdmin = %v, %v", created, err)
	}
	// The original password survives a repeat call.
	if _, err := store.Authenticate(ctx, "admin@example.com", "pw"); err != nil {
		t.Errorf("Authenticate: %v", err)
	}

	if _, err := store.Create(ctx, models.User{Email: "ed@example.com", Role: "editor"}, "pw"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.EnsureAdmin(ctx, "Ed", "ed@example.com", "pw"); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	u, _ := store.GetByEmail(ctx, "ed@example.com")
	if u.Role != "admin" {
		t.Errorf("role = %q after promote", u.Role)
	}
}

func TestStore_GetByIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := testutil.NewFixtures(t, db).CreateAdmin(ctx, "Ada", "ada@example.com")

	got, err := store.GetByIDs(ctx, []primitive.ObjectID{a.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("GetByIDs failed: %v", err)
	}
	if len(got) != 1 || got[0].FullName != "Ada" {
		t.Errorf("GetByIDs = %+v", got)
	}
	if got[0].PasswordHash != "" {
		t.Error("password hash should not be projected")
	}
}
