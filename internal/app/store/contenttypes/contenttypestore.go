// internal/app/store/contenttypes/contenttypestore.go
package contenttypestore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateName = errors.New("a content type with this name already exists")
	ErrInvalidName   = errors.New("content type name must start with a letter and contain only letters, digits, '_' or '-'")
	ErrNotFound      = errors.New("content type not found")
)

var namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ValidName reports whether name is usable as a content type machine name.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Store provides access to the content_types collection.
type Store struct {
	c *mongo.Collection
}

// New creates a new content type store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("content_types")}
}

// EnsureIndexes supports ListOnlyOne.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "only_one", Value: 1}, {Key: "_id", Value: 1}},
	})
	return err
}

// Create inserts a content type. Names are unique.
func (s *Store) Create(ctx context.Context, ct models.ContentType) (models.ContentType, error) {
	if !ValidName(ct.Name) {
		return models.ContentType{}, ErrInvalidName
	}
	if ct.Label == "" {
		ct.Label = ct.Name
	}
	ct.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, ct); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ContentType{}, ErrDuplicateName
		}
		return models.ContentType{}, err
	}
	return ct, nil
}

// Get returns a content type by name.
func (s *Store) Get(ctx context.Context, name string) (models.ContentType, error) {
	var ct models.ContentType
	err := s.c.FindOne(ctx, bson.M{"_id": name}).Decode(&ct)
	if err == mongo.ErrNoDocuments {
		return models.ContentType{}, ErrNotFound
	}
	if err != nil {
		return models.ContentType{}, err
	}
	return ct, nil
}

// List returns all content types ordered by name.
func (s *Store) List(ctx context.Context) ([]models.ContentType, error) {
	return s.find(ctx, bson.M{})
}

// ListOnlyOne returns the content types flagged as only-one, ordered by name.
func (s *Store) ListOnlyOne(ctx context.Context) ([]models.ContentType, error) {
	return s.find(ctx, bson.M{"only_one": true})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.ContentType, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ContentType
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetOnlyOne toggles the only-one flag of a content type.
func (s *Store) SetOnlyOne(ctx context.Context, name string, onlyOne bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": name}, bson.M{"$set": bson.M{"only_one": onlyOne}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
