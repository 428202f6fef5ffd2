// Package locale picks the current content language for a request.
//
// The language comes from the ?lang= query parameter when it names a site
// language, then from Accept-Language matched against the site languages,
// and finally from the default (the first configured language).
package locale

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type ctxKey struct{}

// QueryParam is the query parameter that selects a language explicitly.
const QueryParam = "lang"

// Negotiator holds the configured site languages.
type Negotiator struct {
	codes   []string
	known   map[string]bool
	matcher language.Matcher
}

// New builds a Negotiator from a list of BCP 47 codes. The first code is the
// default language.
func New(codes []string) (*Negotiator, error) {
	codes = Normalize(codes)
	if len(codes) == 0 {
		return nil, fmt.Errorf("locale: at least one language is required")
	}
	tags := make([]language.Tag, 0, len(codes))
	known := make(map[string]bool, len(codes))
	for _, c := range codes {
		tag, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("locale: invalid language %q: %w", c, err)
		}
		tags = append(tags, tag)
		known[c] = true
	}
	return &Negotiator{
		codes:   codes,
		known:   known,
		matcher: language.NewMatcher(tags),
	}, nil
}

// Normalize lower-cases, trims and de-duplicates a list of codes, keeping order.
func Normalize(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ParseList splits a comma separated list of codes.
func ParseList(s string) []string {
	return Normalize(strings.Split(s, ","))
}

// Default returns the site's default language.
func (n *Negotiator) Default() string { return n.codes[0] }

// Languages returns the configured languages, default first.
func (n *Negotiator) Languages() []string {
	out := make([]string, len(n.codes))
	copy(out, n.codes)
	return out
}

// Supported reports whether code is a configured site language.
func (n *Negotiator) Supported(code string) bool {
	return n.known[strings.ToLower(strings.TrimSpace(code))]
}

// Negotiate returns the language for r.
func (n *Negotiator) Negotiate(r *http.Request) string {
	if q := r.URL.Query().Get(QueryParam); n.Supported(q) {
		return strings.ToLower(strings.TrimSpace(q))
	}
	if al := r.Header.Get("Accept-Language"); al != "" {
		tags, _, err := language.ParseAcceptLanguage(al)
		if err == nil && len(tags) > 0 {
			_, idx, conf := n.matcher.Match(tags...)
			if conf != language.No && idx >= 0 && idx < len(n.codes) {
				return n.codes[idx]
			}
		}
	}
	return n.Default()
}

// Middleware stores the negotiated language in the request context.
func (n *Negotiator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := n.Negotiate(r)
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
	})
}

// Current returns the language stored on r, or the default when the
// middleware did not run.
func (n *Negotiator) Current(r *http.Request) string {
	if lang, ok := FromContext(r.Context()); ok {
		return lang
	}
	return n.Negotiate(r)
}

// WithLanguage returns a copy of ctx carrying lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// FromContext returns the language stored by the middleware.
func FromContext(ctx context.Context) (string, bool) {
	lang, ok := ctx.Value(ctxKey{}).(string)
	return lang, ok && lang != ""
}
