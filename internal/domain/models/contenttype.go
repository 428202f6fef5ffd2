// internal/domain/models/contenttype.go
package models

import "time"

// ContentType groups nodes. When OnlyOne is set the site expects at most one
// node of the type per language, which makes the type usable as an error page.
type ContentType struct {
	Name        string `bson:"_id" json:"name"` // machine name, e.g. "ErrorPage"
	Label       string `bson:"label" json:"label"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	OnlyOne     bool   `bson:"only_one" json:"only_one"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
