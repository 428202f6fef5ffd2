// internal/app/features/exceptions/intercept.go
package exceptions

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/dalemusser/exceptionpages/internal/app/system/errorevent"
	"github.com/dalemusser/exceptionpages/internal/app/system/subrequest"
)

// MaxCapturedBody caps how much of an intercepted body is kept for replay.
const MaxCapturedBody = 1 << 20

// Middleware intercepts 4xx responses to HTML requests and dispatches them.
// Sub-requests pass straight through.
func (x *Redirector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if subrequest.IsSubrequest(r) || !AcceptsHTML(r) {
			next.ServeHTTP(w, r)
			return
		}

		iw := &interceptWriter{
			w:         w,
			header:    make(http.Header),
			intercept: x.Handles,
		}
		next.ServeHTTP(iw, r)

		if !iw.intercepted {
			iw.finish()
			return
		}

		ev := &errorevent.Event{
			Writer:  w,
			Request: r,
			Status:  iw.status,
			Header:  iw.header,
			Body:    iw.body.Bytes(),
		}
		if !x.Dispatch(ev) {
			// Handlers changed after interception started.
			iw.forward()
		}
	})
}

// AcceptsHTML reports whether r would take an HTML response.
func AcceptsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html") ||
		strings.Contains(accept, "application/xhtml+xml") ||
		strings.Contains(accept, "*/*")
}

// interceptWriter holds back responses whose status is intercepted and
// passes everything else through.
type interceptWriter struct {
	w         http.ResponseWriter
	header    http.Header
	intercept func(status int) bool

	wroteHeader bool
	intercepted bool
	status      int
	body        bytes.Buffer
}

func (iw *interceptWriter) Header() http.Header { return iw.header }

func (iw *interceptWriter) WriteHeader(code int) {
	if iw.wroteHeader {
		return
	}
	// 1xx responses are informational and may repeat.
	if code >= 100 && code < 200 {
		iw.copyHeader()
		iw.w.WriteHeader(code)
		return
	}
	iw.wroteHeader = true
	iw.status = code
	if iw.intercept(code) {
		iw.intercepted = true
		return
	}
	iw.copyHeader()
	iw.w.WriteHeader(code)
}

func (iw *interceptWriter) Write(p []byte) (int, error) {
	if !iw.wroteHeader {
		iw.WriteHeader(http.StatusOK)
	}
	if !iw.intercepted {
		return iw.w.Write(p)
	}
	if room := MaxCapturedBody - iw.body.Len(); room > 0 {
		if len(p) > room {
			iw.body.Write(p[:room])
		} else {
			iw.body.Write(p)
		}
	}
	return len(p), nil
}

func (iw *interceptWriter) Flush() {
	if iw.intercepted {
		return
	}
	if !iw.wroteHeader {
		iw.WriteHeader(http.StatusOK)
	}
	if f, ok := iw.w.(http.Flusher); ok {
		f.Flush()
	}
}

func (iw *interceptWriter) Unwrap() http.ResponseWriter { return iw.w }

func (iw *interceptWriter) copyHeader() {
	dst := iw.w.Header()
	for k, v := range iw.header {
		dst[k] = v
	}
}

// finish sends headers for handlers that returned without writing.
func (iw *interceptWriter) finish() {
	if !iw.wroteHeader {
		iw.copyHeader()
	}
}

// forward writes a held-back response unchanged.
func (iw *interceptWriter) forward() {
	iw.copyHeader()
	iw.w.WriteHeader(iw.status)
	_, _ = iw.w.Write(iw.body.Bytes())
}
