package normalize

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces     = regexp.MustCompile(`\s+`)
	slugHyphens    = regexp.MustCompile(`-+`)
	repeatedSlash  = regexp.MustCompile(`/{2,}`)
)

// PathKey normalizes a route path: one leading slash, no duplicate or
// trailing slashes. An empty or slash-only value becomes "/".
func PathKey(value string) string {
	value = strings.TrimSpace(value)
	value = repeatedSlash.ReplaceAllString("/"+value, "/")
	value = strings.TrimRight(value, "/")
	if value == "" {
		return "/"
	}
	return value
}

// Slugify lowercases value and reduces it to [a-z0-9-] with single hyphens
// between words.
func Slugify(value string) string {
	value = strings.ToLower(value)
	value = slugDisallowed.ReplaceAllString(value, "")
	value = slugSpaces.ReplaceAllString(strings.TrimSpace(value), "-")
	value = slugHyphens.ReplaceAllString(value, "-")
	return strings.Trim(value, "-")
}

// TagSlug derives the lookup slug of a tag name. It prefers go-slug, which
// transliterates accents, and falls back to Slugify.
func TagSlug(name string) string {
	if normalized, err := slug.Normalize(name); err == nil && normalized != "" && slug.IsValid(normalized) {
		return normalized
	}
	return Slugify(name)
}
