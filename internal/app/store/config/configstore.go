// internal/app/store/config/configstore.go
package configstore

import (
	"context"
	"time"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the config collection.
// Each named configuration record is a single document keyed by its name.
type Store struct {
	c *mongo.Collection
}

// New creates a new config store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("config")}
}

// Get returns the named record. A record that was never saved comes back
// empty (no error) so callers can treat every key as unset.
func (s *Store) Get(ctx context.Context, name string) (models.ConfigRecord, error) {
	var rec models.ConfigRecord
	err := s.c.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return models.ConfigRecord{Name: name, Data: map[string]string{}}, nil
	}
	if err != nil {
		return models.ConfigRecord{}, err
	}
	if rec.Data == nil {
		rec.Data = map[string]string{}
	}
	return rec, nil
}

// Save replaces the data of the named record. Uses upsert so it works whether
// the record exists or not.
func (s *Store) Save(ctx context.Context, rec models.ConfigRecord) error {
	now := time.Now().UTC()
	rec.UpdatedAt = &now
	if rec.Data == nil {
		rec.Data = map[string]string{}
	}

	filter := bson.M{"_id": rec.Name}
	update := bson.M{
		"$set": bson.M{
			"data":            rec.Data,
			"updated_at":      rec.UpdatedAt,
			"updated_by_id":   rec.UpdatedByID,
			"updated_by_name": rec.UpdatedByName,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.c.UpdateOne(ctx, filter, update, opts)
	return err
}

// Exists checks whether the named record has been saved.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	count, err := s.c.CountDocuments(ctx, bson.M{"_id": name})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the named record.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": name})
	return err
}
