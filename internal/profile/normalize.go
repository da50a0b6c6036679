package profile

import (
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxLinkLabelLen is the longest project link label kept on write.
const MaxLinkLabelLen = 30

// NormalizeSkill trims and lowercases a skill token. It is idempotent.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsValidURL reports whether s is empty or an absolute http/https URL.
// The check is purely syntactic.
func IsValidURL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// normalizeProfileSkills lowercases and trims every skill, dropping empties
// and repeats. First occurrence wins.
func normalizeProfileSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		n := NormalizeSkill(s)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// cleanProjectSkills trims every skill and drops empties. Case is kept.
func cleanProjectSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// filterProjectLinks keeps links with a non-empty label of at most
// MaxLinkLabelLen runes and a non-empty valid URL. Kept links are trimmed and
// get a fresh id from newID.
func filterProjectLinks(links []ProjectLink, newID func() string) []ProjectLink {
	out := make([]ProjectLink, 0, len(links))
	for _, l := range links {
		label := strings.TrimSpace(l.Label)
		u := strings.TrimSpace(l.URL)
		if label == "" || utf8.RuneCountInString(label) > MaxLinkLabelLen {
			continue
		}
		if u == "" || !IsValidURL(u) {
			continue
		}
		out = append(out, ProjectLink{ID: newID(), Label: label, URL: u})
	}
	return out
}
