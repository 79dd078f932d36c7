// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t]+`)
)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// StripHTML removes all HTML tags from a string, including tags hidden
// behind encoded entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes user-provided text fields like notes and activity bodies.
func Text(s string) string {
	return StripHTML(s)
}

// Line sanitizes single-line fields such as names, collapsing runs of spaces.
func Line(s string) string {
	s = strings.ReplaceAll(StripHTML(s), "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}

// Tags trims each tag, drops empties and removes duplicates under Unicode
// case folding while keeping first-seen order.
func Tags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	fold := cases.Fold()
	for _, tag := range tags {
		clean := Line(tag)
		if clean == "" {
			continue
		}
		key := fold.String(clean)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, clean)
	}
	return out
}

// Fold returns the case-folded, trimmed form of s for case-insensitive matching.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
