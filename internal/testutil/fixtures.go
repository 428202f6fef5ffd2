package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateContentType creates a content type with the given machine name.
func (f *Fixtures) CreateContentType(ctx context.Context, name string, onlyOne bool) models.ContentType {
	f.t.Helper()

	ct := models.ContentType{
		Name:      name,
		Label:     name,
		OnlyOne:   onlyOne,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("content_types").InsertOne(ctx, ct); err != nil {
		f.t.Fatalf("failed to create test content type: %v", err)
	}
	return ct
}

// CreateNode creates a published node with a fixed ID.
func (f *Fixtures) CreateNode(ctx context.Context, id int64, contentType, lang, title string) models.Node {
	f.t.Helper()

	node := models.Node{
		ID:        id,
		Type:      contentType,
		Language:  lang,
		Title:     title,
		TitleCI:   text.Fold(title),
		Body:      "<p>" + title + "</p>",
		Published: true,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("nodes").InsertOne(ctx, node); err != nil {
		f.t.Fatalf("failed to create test node: %v", err)
	}

	// Keep the node ID sequence ahead of fixture IDs.
	_, err := f.db.Collection("counters").UpdateOne(ctx,
		bson.M{"_id": "nodes"},
		bson.M{"$max": bson.M{"seq": id}},
		options.Update().SetUpsert(true))
	if err != nil {
		f.t.Fatalf("failed to bump node counter: %v", err)
	}
	return node
}

// CreateAdmin creates an admin user. The password hash is not a valid bcrypt
// hash; use userstore.Create when a test needs to sign in.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: "x",
		Role:         "admin",
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
