package nodestore_test

import (
	"errors"
	"testing"

	nodestore "github.com/dalemusser/exceptionpages/internal/app/store/nodes"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/exceptionpages/internal/testutil"
)

func TestStore_CreateAssignsSequentialIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := nodestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, err := store.Create(ctx, models.Node{Type: "article", Language: "en", Title: "First"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := store.Create(ctx, models.Node{Type: "article", Language: "en", Title: "Second"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Errorf("ids = %d, %d; want 1, 2", a.ID, b.ID)
	}
	if a.TitleCI != "first" {
		t.Errorf("TitleCI = %q", a.TitleCI)
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil || got.Title != "Second" {
		t.Errorf("GetByID = %+v, %v", got, err)
	}
}

func TestStore_CreateRejectsBlankFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := nodestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Node{Type: "article", Language: "en"})
	if !errors.Is(err, nodestore.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestStore_GetByIDNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := nodestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, 404); !errors.Is(err, nodestore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_FirstOfType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := nodestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	fx.CreateNode(ctx, 17, "ErrorPage", "en", "Not found")
	fx.CreateNode(ctx, 21, "ErrorPage", "en", "Duplicate")
	fx.CreateNode(ctx, 18, "ErrorPage", "fr", "Introuvable")

	id, ok, err := store.FirstOfType(ctx, "ErrorPage", "en")
	if err != nil || !ok || id != 17 {
		t.Errorf("en = %d, %v, %v; want 17", id, ok, err)
	}
	id, ok, err = store.FirstOfType(ctx, "ErrorPage", "fr")
	if err != nil || !ok || id != 18 {
		t.Errorf("fr = %d, %v, %v; want 18", id, ok, err)
	}
	if _, ok, err := store.FirstOfType(ctx, "ErrorPage", "de"); err != nil || ok {
		t.Errorf("de matched: %v, %v", ok, err)
	}

	// Fixtures bump the sequence, so new nodes never collide with them.
	n, err := store.Create(ctx, models.Node{Type: "article", Language: "en", Title: "Next"})
	if err != nil || n.ID != 22 {
		t.Errorf("next id = %d, %v; want 22", n.ID, err)
	}
}

func TestStore_UpdateDeleteAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := nodestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	n, err := store.Create(ctx, models.Node{Type: "article", Language: "en", Title: "Draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if pub, _ := store.ListPublished(ctx, "en", 10); len(pub) != 0 {
		t.Errorf("unpublished node listed: %+v", pub)
	}

	if err := store.Update(ctx, n.ID, models.Node{Title: "Final", Body: "<p>x</p>", Published: true}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	pub, err := store.ListPublished(ctx, "en", 10)
	if err != nil || len(pub) != 1 || pub[0].Title != "Final" || pub[0].Language != "en" {
		t.Errorf("ListPublished = %+v, %v", pub, err)
	}

	if err := store.Update(ctx, 999, models.Node{Title: "x"}); !errors.Is(err, nodestore.ErrNotFound) {
		t.Errorf("Update missing = %v, want ErrNotFound", err)
	}

	all, err := store.List(ctx, "article", 10)
	if err != nil || len(all) != 1 {
		t.Errorf("List = %d, %v", len(all), err)
	}

	deleted, err := store.Delete(ctx, n.ID)
	if err != nil || deleted != 1 {
		t.Errorf("Delete = %d, %v", deleted, err)
	}
}
