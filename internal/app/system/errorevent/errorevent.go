// Package errorevent describes a captured 4xx response handed to the
// exception layer, and the default handling every class can fall back to.
package errorevent

import (
	"net/http"

	"github.com/dalemusser/exceptionpages/internal/domain/models"
)

// Class identifies which exception handler owns a status code.
type Class string

const (
	ClassClientError  Class = models.ClientErrorKey
	ClassAccessDenied Class = models.AccessDeniedKey
	ClassNotFound     Class = models.NotFoundKey
)

// ClassOf maps a status code to its class. Only 4xx codes have one.
func ClassOf(status int) (Class, bool) {
	switch {
	case status == http.StatusForbidden:
		return ClassAccessDenied, true
	case status == http.StatusNotFound:
		return ClassNotFound, true
	case status >= 400 && status < 500:
		return ClassClientError, true
	default:
		return "", false
	}
}

// Event is an intercepted error response. Nothing has been written to
// Writer yet; whoever handles the event owns the response.
type Event struct {
	Writer  http.ResponseWriter
	Request *http.Request

	// Status, Header and Body are what the original handler produced.
	Status int
	Header http.Header
	Body   []byte
}

// Defaults is the stock handling for each class.
type Defaults interface {
	On4xx(ev *Event)
	On403(ev *Event)
	On404(ev *Event)
}
