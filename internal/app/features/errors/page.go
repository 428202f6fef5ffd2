// internal/app/features/errors/page.go
package errors

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/exceptionpages/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// pageData is the view model for the stock error page.
type pageData struct {
	viewdata.BaseVM
	Status  int
	Message string
}

// ProblemDetails is the JSON body sent to API clients.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

// WantsJSON reports whether the client asked for JSON.
func WantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.HasPrefix(accept, "application/json") || strings.Contains(accept, "+json")
}

// WritePage writes the stock error page for status. JSON clients get a
// problem document instead.
func WritePage(logger *zap.Logger, w http.ResponseWriter, r *http.Request, status int, title, message, backURL string) {
	if title == "" {
		title = http.StatusText(status)
	}

	if WantsJSON(r) {
		body, err := json.Marshal(ProblemDetails{
			Type:   "about:blank",
			Title:  title,
			Status: status,
			Detail: message,
		})
		if err != nil {
			logger.Error("marshal problem details failed", zap.Error(err))
			http.Error(w, http.StatusText(status), status)
			return
		}
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(status)
		_, _ = w.Write(body)
		return
	}

	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, title, "/"),
		Status:  status,
		Message: message,
	}
	data.BackURL = backURL

	// Render into a buffer so the error status, not the renderer's 500, is
	// what the client sees.
	var page pageBuffer
	templates.Render(&page, r, PageTemplate, data)
	if page.failed() {
		logger.Error("render error page failed", zap.Int("status", status))
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(page.body.Bytes())
}

// pageBuffer collects a rendered page. templates.Render reports failure by
// writing a 500 to it.
type pageBuffer struct {
	header http.Header
	code   int
	body   bytes.Buffer
}

func (b *pageBuffer) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *pageBuffer) WriteHeader(code int) {
	if b.code == 0 {
		b.code = code
	}
}

func (b *pageBuffer) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *pageBuffer) failed() bool {
	return b.code >= http.StatusInternalServerError || b.body.Len() == 0
}
