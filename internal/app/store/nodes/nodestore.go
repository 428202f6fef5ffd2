// internal/app/store/nodes/nodestore.go
package nodestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no node matches the given ID.
	ErrNotFound = errors.New("node not found")
	// ErrInvalid is returned when a required field is blank.
	ErrInvalid = errors.New("node title, type and language are required")
)

// Store provides access to the nodes collection.
type Store struct {
	c        *mongo.Collection
	counters *mongo.Collection
}

// New creates a new node store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("nodes"),
		counters: db.Collection("counters"),
	}
}

// nextID atomically advances the node sequence and returns the new value.
func (s *Store) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "nodes"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next node id: %w", err)
	}
	return doc.Seq, nil
}

// Create inserts a new node, assigning its ID and timestamps.
func (s *Store) Create(ctx context.Context, n models.Node) (models.Node, error) {
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Type) == "" || strings.TrimSpace(n.Language) == "" {
		return models.Node{}, ErrInvalid
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return models.Node{}, err
	}

	now := time.Now().UTC()
	n.ID = id
	n.TitleCI = text.Fold(n.Title)
	n.CreatedAt = now
	n.UpdatedAt = &now

	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.Node{}, err
	}
	return n, nil
}

// GetByID returns the node with the given ID or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (models.Node, error) {
	var n models.Node
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return models.Node{}, ErrNotFound
	}
	if err != nil {
		return models.Node{}, err
	}
	return n, nil
}

// FirstOfType returns the lowest-ID node of the given type and language.
// ok is false when no such node exists.
func (s *Store) FirstOfType(ctx context.Context, contentType, lang string) (id int64, ok bool, err error) {
	var n struct {
		ID int64 `bson:"_id"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1})
	err = s.c.FindOne(ctx, bson.M{"type": contentType, "language": lang}, opts).Decode(&n)
	if err == mongo.ErrNoDocuments {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n.ID, true, nil
}

// List returns nodes ordered by title, optionally filtered by type.
func (s *Store) List(ctx context.Context, contentType string, limit int64) ([]models.Node, error) {
	filter := bson.M{}
	if contentType != "" {
		filter["type"] = contentType
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Node
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublished returns published nodes in lang, newest first.
func (s *Store) ListPublished(ctx context.Context, lang string, limit int64) ([]models.Node, error) {
	filter := bson.M{"published": true}
	if lang != "" {
		filter["language"] = lang
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Node
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates the indexes the singleton lookup and listings rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "language", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "title_ci", Value: 1}, {Key: "_id", Value: 1}}},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "language", Value: 1}, {Key: "_id", Value: -1}}},
	})
	return err
}

// Update modifies the editable fields of a node and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, id int64, mut models.Node) error {
	if strings.TrimSpace(mut.Title) == "" {
		return ErrInvalid
	}
	now := time.Now().UTC()
	set := bson.M{
		"title":      mut.Title,
		"title_ci":   text.Fold(mut.Title),
		"body":       mut.Body,
		"published":  mut.Published,
		"updated_at": now,
	}
	if strings.TrimSpace(mut.Language) != "" {
		set["language"] = mut.Language
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a node. It returns the number of deleted documents.
func (s *Store) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
