package configstore_test

import (
	"testing"

	configstore "github.com/dalemusser/exceptionpages/internal/app/store/config"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/exceptionpages/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_GetMissingIsEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := configstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec, err := store.Get(ctx, models.ExceptionConfigName)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.Name != models.ExceptionConfigName || len(rec.Data) != 0 {
		t.Errorf("rec = %+v", rec)
	}
	if ok, _ := store.Exists(ctx, models.ExceptionConfigName); ok {
		t.Error("Exists reported an unsaved record")
	}
}

func TestStore_SaveOverwritesAllKeys(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := configstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	actor := primitive.NewObjectID()
	first := models.ExceptionSettings{ClientError: "Oops", NotFound: "Missing"}
	if err := store.Save(ctx, models.ConfigRecord{Name: models.ExceptionConfigName, Data: first.Values(), UpdatedByID: &actor, UpdatedByName: "Ada"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second := models.ExceptionSettings{AccessDenied: "Denied"}
	if err := store.Save(ctx, models.ConfigRecord{Name: models.ExceptionConfigName, Data: second.Values()}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rec, err := store.Get(ctx, models.ExceptionConfigName)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	s := models.ExceptionSettingsFromRecord(rec)
	if s.ClientError != "" || s.NotFound != "" || s.AccessDenied != "Denied" {
		t.Errorf("settings = %+v", s)
	}
	if s.UpdatedAt == nil {
		t.Error("UpdatedAt not set")
	}

	if ok, _ := store.Exists(ctx, models.ExceptionConfigName); !ok {
		t.Error("Exists = false after save")
	}
	if err := store.Delete(ctx, models.ExceptionConfigName); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := store.Exists(ctx, models.ExceptionConfigName); ok {
		t.Error("Exists = true after delete")
	}
}
