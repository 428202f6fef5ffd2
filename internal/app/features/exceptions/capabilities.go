// internal/app/features/exceptions/capabilities.go
package exceptions

import (
	"context"
	"net/http"

	"github.com/dalemusser/exceptionpages/internal/app/system/errorevent"
	"github.com/dalemusser/exceptionpages/internal/domain/models"
	"go.uber.org/zap"
)

// SettingsReader reads the exception.settings record.
type SettingsReader interface {
	ExceptionSettings(ctx context.Context) (models.ExceptionSettings, error)
}

// Lookup resolves the singleton node of a content type in a language.
type Lookup interface {
	ExistsSingletonOfType(ctx context.Context, contentType, lang string) (int64, bool, error)
}

// URLBuilder builds the canonical URL of a node.
type URLBuilder interface {
	NodeURL(id int64, lang string) (string, error)
}

// Subrequester renders target in place of the current response.
type Subrequester interface {
	Render(w http.ResponseWriter, r *http.Request, target string, status int) error
}

// Capabilities is everything an exception handler may use.
type Capabilities struct {
	Settings    SettingsReader
	Lookup      Lookup
	URLs        URLBuilder
	Subrequests Subrequester
	Defaults    errorevent.Defaults

	// Language returns the current content language of a request.
	Language func(r *http.Request) string

	Log *zap.Logger
}
