// internal/app/features/errors/stock.go
package errors

import (
	"net/http"

	"github.com/dalemusser/exceptionpages/internal/app/system/errorevent"
	"go.uber.org/zap"
)

// StockPages is the default handling for intercepted error responses.
// A response that already has a body is replayed as-is; an empty one gets
// the stock page for its status.
type StockPages struct {
	Log *zap.Logger
}

func NewStockPages(logger *zap.Logger) *StockPages {
	return &StockPages{Log: logger}
}

// On4xx handles any client error.
func (s *StockPages) On4xx(ev *errorevent.Event) {
	s.write(ev, "", "The request could not be completed.")
}

// On403 handles access denied.
func (s *StockPages) On403(ev *errorevent.Event) {
	s.write(ev, "Access denied", "You don't have permission to view this page.")
}

// On404 handles page not found.
func (s *StockPages) On404(ev *errorevent.Event) {
	s.write(ev, "Page not found", "The page you requested could not be found.")
}

func (s *StockPages) write(ev *errorevent.Event, title, message string) {
	if len(ev.Body) > 0 {
		replay(ev)
		return
	}
	WritePage(s.Log, ev.Writer, ev.Request, ev.Status, title, message, "/")
}

// replay writes the captured response back. The captured body may have been
// cut at the capture limit, so the original Content-Length is not trusted.
func replay(ev *errorevent.Event) {
	dst := ev.Writer.Header()
	for k, v := range ev.Header {
		if k == "Content-Length" {
			continue
		}
		dst[k] = v
	}
	if dst.Get("Content-Type") == "" {
		dst.Set("Content-Type", http.DetectContentType(ev.Body))
	}
	ev.Writer.WriteHeader(ev.Status)
	_, _ = ev.Writer.Write(ev.Body)
}
