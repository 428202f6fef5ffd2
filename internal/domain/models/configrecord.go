// internal/domain/models/configrecord.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConfigRecord is a named bag of string settings edited from the admin UI.
// One document per record name in the config collection.
type ConfigRecord struct {
	Name string            `bson:"_id" json:"name"`
	Data map[string]string `bson:"data" json:"data"`

	// Audit fields
	UpdatedAt     *time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	UpdatedByID   *primitive.ObjectID `bson:"updated_by_id,omitempty" json:"updated_by_id,omitempty"`
	UpdatedByName string              `bson:"updated_by_name,omitempty" json:"updated_by_name,omitempty"`
}
