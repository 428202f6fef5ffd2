// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/exceptionpages/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"go.uber.org/zap"
)

// ErrorLogger logs a handler failure and writes the stock error page.
// 4xx pages written here still pass through the exception layer, which may
// replace them with configured content.
type ErrorLogger struct {
	Log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if u, ok := auth.CurrentUser(r); ok {
		fields = append(fields, zap.String("user_id", u.ID))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	return fields
}

func backURL(r *http.Request, back string) string {
	if back != "" {
		return back
	}
	return httpnav.ResolveBackURL(r, "/")
}

// LogServerError logs at Error and writes a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, back string) {
	e.Log.Error(msg, e.fields(r, err)...)
	WritePage(e.Log, w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL(r, back))
}

// LogBadRequest logs at Warn and writes a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, back string) {
	e.Log.Warn(msg, e.fields(r, err)...)
	WritePage(e.Log, w, r, http.StatusBadRequest, "Bad request", userMsg, backURL(r, back))
}

// LogNotFound logs at Debug and writes a 404 page.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, back string) {
	e.Log.Debug(msg, e.fields(r, err)...)
	WritePage(e.Log, w, r, http.StatusNotFound, "Page not found", userMsg, backURL(r, back))
}

// LogForbidden logs at Info and writes a 403 page.
func (e *ErrorLogger) LogForbidden(w http.ResponseWriter, r *http.Request, msg string, err error, userMsg, back string) {
	e.Log.Info(msg, e.fields(r, err)...)
	WritePage(e.Log, w, r, http.StatusForbidden, "Access denied", userMsg, backURL(r, back))
}
