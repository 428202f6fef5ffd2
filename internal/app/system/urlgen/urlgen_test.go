package urlgen_test

import (
	"testing"

	"github.com/dalemusser/exceptionpages/internal/app/system/urlgen"
)

func TestNodeURL(t *testing.T) {
	b := urlgen.New("en")

	tests := []struct {
		id   int64
		lang string
		want string
	}{
		{17, "en", "/node/17"},
		{17, "", "/node/17"},
		{17, "EN", "/node/17"},
		{4, "fr", "/node/4?lang=fr"},
	}
	for _, tt := range tests {
		got, err := b.NodeURL(tt.id, tt.lang)
		if err != nil {
			t.Errorf("NodeURL(%d, %q) error: %v", tt.id, tt.lang, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NodeURL(%d, %q) = %q, want %q", tt.id, tt.lang, got, tt.want)
		}
	}
}

func TestNodeURL_InvalidID(t *testing.T) {
	b := urlgen.New("en")
	if _, err := b.NodeURL(0, "en"); err == nil {
		t.Error("expected error for id 0")
	}
}

func TestAbsolute(t *testing.T) {
	if got := urlgen.Absolute("https://example.org/", "/node/1"); got != "https://example.org/node/1" {
		t.Errorf("Absolute = %q", got)
	}
	if got := urlgen.Absolute("", "/node/1"); got != "/node/1" {
		t.Errorf("Absolute with empty base = %q", got)
	}
}
