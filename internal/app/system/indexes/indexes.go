// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/exceptionpages/internal/app/store/audit"
	contenttypestore "github.com/dalemusser/exceptionpages/internal/app/store/contenttypes"
	nodestore "github.com/dalemusser/exceptionpages/internal/app/store/nodes"
	userstore "github.com/dalemusser/exceptionpages/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

type ensurer interface {
	EnsureIndexes(ctx context.Context) error
}

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name string
		s    ensurer
	}{
		{"users", userstore.New(db)},
		{"nodes", nodestore.New(db)},
		{"content_types", contenttypestore.New(db)},
		{"audit_events", audit.New(db)},
	}

	var problems []string
	for _, set := range sets {
		if err := set.s.EnsureIndexes(ctx); err != nil {
			problems = append(problems, set.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
