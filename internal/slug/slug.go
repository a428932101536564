// Package slug provides URL-friendly slug generation and validation.
// Post and category slugs are the canonical URL keys for routing, so
// everything stored must survive a round trip through a path segment.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a lowercase letter, digit, space, or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid matches a well-formed slug: hyphen-separated lowercase alphanumeric runs.
	valid = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// IsValid reports whether s is already a well-formed slug. Used to
// validate slugs entered by hand in the admin forms.
func IsValid(s string) bool {
	return s != "" && valid.MatchString(s)
}
