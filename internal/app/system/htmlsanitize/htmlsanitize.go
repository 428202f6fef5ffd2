// Package htmlsanitize cleans admin-authored HTML before it is stored or rendered.
package htmlsanitize

import (
	"html/template"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").OnElements("table", "td", "th", "div", "span", "p")
		p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
		policy = p
	})
	return policy
}

// Sanitize strips scripts, event handlers, javascript: URLs and other unsafe
// markup while keeping ordinary formatting.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return getPolicy().Sanitize(html)
}

// SanitizeToHTML sanitizes and marks the result safe for html/template.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}
