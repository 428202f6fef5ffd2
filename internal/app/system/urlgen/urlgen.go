// Package urlgen builds canonical content URLs.
package urlgen

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Builder builds node URLs relative to the site root.
type Builder struct {
	defaultLang string
}

func New(defaultLang string) *Builder {
	return &Builder{defaultLang: strings.ToLower(defaultLang)}
}

// NodeURL returns the canonical path for node id in lang. The language is
// only added for non-default languages.
func (b *Builder) NodeURL(id int64, lang string) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("urlgen: invalid node id %d", id)
	}
	u := url.URL{Path: "/node/" + strconv.FormatInt(id, 10)}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang != "" && lang != b.defaultLang {
		u.RawQuery = url.Values{"lang": {lang}}.Encode()
	}
	return u.String(), nil
}

// Absolute joins a site-relative path onto base. An empty base returns path.
func Absolute(base, path string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return path
	}
	return base + path
}
