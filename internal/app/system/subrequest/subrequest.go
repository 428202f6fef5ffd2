// Package subrequest renders a site path in-process on behalf of another
// request, the way an internal redirect would.
package subrequest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/exceptionpages/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotOK is returned when the target did not answer with a 2xx status.
var ErrNotOK = errors.New("subrequest: target did not return 2xx")

// HeaderID carries the sub-request correlation id.
const HeaderID = "X-Subrequest-ID"

// DestinationParam is the query parameter carrying the original request URI.
const DestinationParam = "destination"

type ctxKey struct{}

// Info describes a running sub-request.
type Info struct {
	ID          string
	Destination string
}

// FromContext returns the sub-request info when ctx belongs to one.
func FromContext(ctx context.Context) (Info, bool) {
	info, ok := ctx.Value(ctxKey{}).(Info)
	return info, ok
}

// IsSubrequest reports whether r is a sub-request.
func IsSubrequest(r *http.Request) bool {
	_, ok := FromContext(r.Context())
	return ok
}

// Executor runs sub-requests against the root handler.
type Executor struct {
	handler http.Handler
	log     *zap.Logger
}

// New creates an Executor. The root handler is attached with SetHandler once
// the router is built.
func New(logger *zap.Logger) *Executor {
	return &Executor{log: logger}
}

// SetHandler sets the handler sub-requests are served by.
func (e *Executor) SetHandler(h http.Handler) {
	e.handler = h
}

// Render serves target as a GET sub-request of r. On success the target's
// response is written to w with the given status. Nothing is written to w
// on error.
func (e *Executor) Render(w http.ResponseWriter, r *http.Request, target string, status int) error {
	if e.handler == nil {
		return errors.New("subrequest: no handler configured")
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("subrequest: parse %q: %w", target, err)
	}
	if u.IsAbs() || u.Host != "" {
		return fmt.Errorf("subrequest: target %q must be site-relative", target)
	}

	q := u.Query()
	q.Set(DestinationParam, r.URL.RequestURI())
	u.RawQuery = q.Encode()

	info := Info{ID: uuid.NewString(), Destination: r.URL.RequestURI()}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Subrequest(), e.log, "subrequest "+u.Path)
	defer cancel()
	ctx = context.WithValue(ctx, ctxKey{}, info)
	// Routing starts over from the root.
	ctx = context.WithValue(ctx, chi.RouteCtxKey, nil)

	sub := r.Clone(ctx)
	sub.Method = http.MethodGet
	sub.URL = u
	sub.RequestURI = u.RequestURI()
	sub.Body = http.NoBody
	sub.ContentLength = 0
	sub.Header.Del("Content-Type")
	sub.Header.Del("Content-Length")
	sub.Header.Set(HeaderID, info.ID)

	rec := newRecorder()
	e.handler.ServeHTTP(rec, sub)

	if rec.status < 200 || rec.status > 299 {
		return fmt.Errorf("%w: %s returned %d", ErrNotOK, u.Path, rec.status)
	}

	dst := w.Header()
	for k, v := range rec.header {
		switch k {
		case "Content-Length":
			continue
		case "Set-Cookie":
			// Cookies already on w belong to the original response.
			for _, c := range v {
				dst.Add(k, c)
			}
		default:
			dst[k] = v
		}
	}
	dst.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(rec.body.Bytes()); err != nil {
		e.log.Debug("subrequest: write response failed", zap.String("id", info.ID), zap.Error(err))
	}

	e.log.Debug("subrequest rendered",
		zap.String("id", info.ID),
		zap.String("target", u.Path),
		zap.String("destination", info.Destination),
		zap.Int("status", status))
	return nil
}

// recorder buffers a sub-response.
type recorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.status = code
}

func (r *recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}
