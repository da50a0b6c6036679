package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSkill(t *testing.T) {
	tests := map[string]string{
		"Go":         "go",
		"  Rust  ":   "rust",
		"":           "",
		"   ":        "",
		"\tGRPC\n":   "grpc",
		"Node.JS":    "node.js",
		"Ünïcödé ":   "ünïcödé",
		"two words ": "two words",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSkill(in), "NormalizeSkill(%q)", in)
	}
}

func TestNormalizeSkill_Idempotent(t *testing.T) {
	inputs := []string{"", " ", "Go ", " MIXED case ", "ŞİŞ", " nbsp ", "a\tb", "ǅ"}
	for _, in := range inputs {
		once := NormalizeSkill(in)
		assert.Equal(t, once, NormalizeSkill(once), "not idempotent for %q", in)
	}
}

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"https://a.b", true},
		{"http://example.com/path?q=1", true},
		{"HTTPS://Example.com", true},
		{"ftp://x.com", false},
		{"mailto:someone@example.com", false},
		{"javascript:alert(1)", false},
		{"example.com", false},
		{"//example.com", false},
		{"http://", false},
		{"https://exa mple.com", false},
		{"not a url", false},
		{"http://[::1", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidURL(tt.in), "IsValidURL(%q)", tt.in)
	}
}

func TestNormalizeProfileSkills(t *testing.T) {
	got := normalizeProfileSkills([]string{"Go ", "go", "", "  ", "RUST"})
	assert.Equal(t, []string{"go", "rust"}, got)
}

func TestCleanProjectSkills_KeepsCase(t *testing.T) {
	got := cleanProjectSkills([]string{"Go ", "go", "", " TypeScript"})
	assert.Equal(t, []string{"Go", "go", "TypeScript"}, got)
}

func TestFilterProjectLinks(t *testing.T) {
	n := 0
	newID := func() string {
		n++
		return strings.Repeat("x", n)
	}

	in := []ProjectLink{
		{Label: " repo ", URL: " https://github.com/me/repo "},
		{Label: "", URL: "https://example.com"},
		{Label: "live", URL: ""},
		{Label: "ftp", URL: "ftp://example.com"},
		{Label: strings.Repeat("l", MaxLinkLabelLen+1), URL: "https://example.com"},
		{Label: strings.Repeat("l", MaxLinkLabelLen), URL: "http://example.com"},
		{ID: "client-supplied", Label: "docs", URL: "https://docs.example.com"},
	}

	got := filterProjectLinks(in, newID)
	want := []ProjectLink{
		{ID: "x", Label: "repo", URL: "https://github.com/me/repo"},
		{ID: "xx", Label: strings.Repeat("l", MaxLinkLabelLen), URL: "http://example.com"},
		{ID: "xxx", Label: "docs", URL: "https://docs.example.com"},
	}
	assert.Equal(t, want, got)
}
