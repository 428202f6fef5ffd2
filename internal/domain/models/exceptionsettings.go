// internal/domain/models/exceptionsettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExceptionConfigName is the name of the configuration record holding the
// error page substitutions.
const ExceptionConfigName = "exception.settings"

// Keys within the exception.settings record.
const (
	ClientErrorKey  = "40x"
	AccessDeniedKey = "403"
	NotFoundKey     = "404"
)

// ExceptionSettings names, per error class, the only-one content type whose
// node replaces the default error page. Empty means "use the default page".
type ExceptionSettings struct {
	ClientError  string // 40x
	AccessDenied string // 403
	NotFound     string // 404

	UpdatedAt     *time.Time
	UpdatedByID   *primitive.ObjectID
	UpdatedByName string
}

// Values returns the settings as the key/value map stored in the record.
func (s ExceptionSettings) Values() map[string]string {
	return map[string]string{
		ClientErrorKey:  s.ClientError,
		AccessDeniedKey: s.AccessDenied,
		NotFoundKey:     s.NotFound,
	}
}

// ExceptionSettingsFromRecord extracts the settings from a config record.
// Missing keys read as empty.
func ExceptionSettingsFromRecord(rec ConfigRecord) ExceptionSettings {
	return ExceptionSettings{
		ClientError:   rec.Data[ClientErrorKey],
		AccessDenied:  rec.Data[AccessDeniedKey],
		NotFound:      rec.Data[NotFoundKey],
		UpdatedAt:     rec.UpdatedAt,
		UpdatedByID:   rec.UpdatedByID,
		UpdatedByName: rec.UpdatedByName,
	}
}

// TypeFor returns the content type configured under key.
func (s ExceptionSettings) TypeFor(key string) string {
	switch key {
	case ClientErrorKey:
		return s.ClientError
	case AccessDeniedKey:
		return s.AccessDenied
	case NotFoundKey:
		return s.NotFound
	default:
		return ""
	}
}
