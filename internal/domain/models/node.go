// internal/domain/models/node.go
package models

import "time"

// Node is a single piece of site content. Nodes are addressed by a small
// integer ID so canonical URLs stay short (/node/17).
type Node struct {
	ID       int64  `bson:"_id" json:"id"`
	Type     string `bson:"type" json:"type"`         // ContentType.Name
	Language string `bson:"language" json:"language"` // BCP 47 tag, e.g. "en"

	Title   string `bson:"title" json:"title"`
	TitleCI string `bson:"title_ci" json:"title_ci"`
	Body    string `bson:"body" json:"body"` // sanitized HTML

	Published bool `bson:"published" json:"published"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
