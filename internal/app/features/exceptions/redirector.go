// internal/app/features/exceptions/redirector.go
package exceptions

import (
	"net/http"

	"github.com/dalemusser/exceptionpages/internal/app/system/errorevent"
	"go.uber.org/zap"
)

// Redirector routes intercepted error responses to the handler registered
// for their class.
type Redirector struct {
	caps     Capabilities
	handlers map[errorevent.Class]HandlerFunc
}

// NewRedirector builds a Redirector with the default handlers.
func NewRedirector(caps Capabilities) *Redirector {
	if caps.Log == nil {
		caps.Log = zap.NewNop()
	}
	if caps.Language == nil {
		caps.Language = func(*http.Request) string { return "" }
	}
	return &Redirector{
		caps:     caps,
		handlers: DefaultHandlers(),
	}
}

// Handle replaces the handler for class. A nil fn removes it, which stops
// interception for that class.
func (x *Redirector) Handle(class errorevent.Class, fn HandlerFunc) {
	if fn == nil {
		delete(x.handlers, class)
		return
	}
	x.handlers[class] = fn
}

// Handles reports whether a response with status would be intercepted.
func (x *Redirector) Handles(status int) bool {
	class, ok := errorevent.ClassOf(status)
	if !ok {
		return false
	}
	_, ok = x.handlers[class]
	return ok
}

// Dispatch hands ev to its class handler. It returns false when no handler
// is registered, in which case nothing was written.
func (x *Redirector) Dispatch(ev *errorevent.Event) bool {
	class, ok := errorevent.ClassOf(ev.Status)
	if !ok {
		return false
	}
	fn, ok := x.handlers[class]
	if !ok {
		return false
	}

	// Cookies set by the original handler survive whatever replaces its body.
	for _, c := range ev.Header.Values("Set-Cookie") {
		ev.Writer.Header().Add("Set-Cookie", c)
	}

	fn(&x.caps, ev)
	return true
}
