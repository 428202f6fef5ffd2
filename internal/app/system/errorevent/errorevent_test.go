package errorevent_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/exceptionpages/internal/app/system/errorevent"
)

func TestClassOf(t *testing.T) {
	cases := map[int]errorevent.Class{
		http.StatusBadRequest:       errorevent.ClassClientError,
		http.StatusUnauthorized:     errorevent.ClassClientError,
		http.StatusForbidden:        errorevent.ClassAccessDenied,
		http.StatusNotFound:         errorevent.ClassNotFound,
		http.StatusMethodNotAllowed: errorevent.ClassClientError,
		http.StatusTeapot:           errorevent.ClassClientError,
	}
	for status, want := range cases {
		got, ok := errorevent.ClassOf(status)
		if !ok || got != want {
			t.Errorf("ClassOf(%d) = %q, %v; want %q", status, got, ok, want)
		}
	}
}

func TestClassOf_NonClientError(t *testing.T) {
	for _, status := range []int{200, 204, 301, 399, 500, 503} {
		if c, ok := errorevent.ClassOf(status); ok {
			t.Errorf("ClassOf(%d) = %q, want no class", status, c)
		}
	}
}

func TestClassKeysMatchSettingsKeys(t *testing.T) {
	if errorevent.ClassClientError != "40x" || errorevent.ClassAccessDenied != "403" || errorevent.ClassNotFound != "404" {
		t.Error("class names must equal the exception.settings keys")
	}
}
