package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-cms-bulkload/internal/markdown"
)

const (
	DescriptionMinLength = 120
	DescriptionMaxLength = 155
	TitleMaxLength       = 60
	SummaryMaxLength     = 170

	Ellipsis = "…"

	// DescriptionPadding tops up descriptions that stay below the minimum.
	DescriptionPadding = "Read more on our website for further details and related information."
)

// SEO is the search metadata component attached to pages and articles.
type SEO struct {
	MetaTitle       string `json:"metaTitle"`
	MetaDescription string `json:"metaDescription"`
}

// Description builds a meta description from explicit, appending each
// fallback while it is shorter than DescriptionMinLength, then the canned
// padding, and finally truncating to DescriptionMaxLength.
func Description(explicit string, fallbacks ...string) string {
	description := collapse(explicit)
	for _, fallback := range fallbacks {
		if utf8.RuneCountInString(description) >= DescriptionMinLength {
			break
		}
		description = joinSentence(description, collapse(fallback))
	}
	for utf8.RuneCountInString(description) < DescriptionMinLength {
		description = joinSentence(description, DescriptionPadding)
	}
	return Truncate(description, DescriptionMaxLength)
}

// MetaTitle returns the first non-empty candidate truncated to
// TitleMaxLength.
func MetaTitle(candidates ...string) string {
	for _, candidate := range candidates {
		if candidate = collapse(candidate); candidate != "" {
			return Truncate(candidate, TitleMaxLength)
		}
	}
	return ""
}

// Summary returns explicit or, when empty, the first paragraph of body with
// markup stripped. The result is truncated to SummaryMaxLength.
func Summary(explicit, body string) string {
	summary := collapse(explicit)
	if summary == "" {
		summary = markdown.FirstParagraph(body)
	}
	return Truncate(summary, SummaryMaxLength)
}

// Truncate shortens value to at most max runes, the last one being the
// ellipsis.
func Truncate(value string, max int) string {
	if utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	cut := strings.TrimRight(string(runes[:max-1]), " \t\n")
	return cut + Ellipsis
}

// PlainText flattens a markdown or HTML body to one line of text.
func PlainText(body string) string {
	return strings.Join(markdown.Paragraphs(body), " ")
}

func joinSentence(head, tail string) string {
	switch {
	case tail == "":
		return head
	case head == "":
		return tail
	default:
		return head + " " + tail
	}
}

func collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
