// Package source turns input files into ordered rows: CSV text through the
// tabular parser, JSON arrays through the JSON loader, and Markdown files with
// frontmatter through the markdown loader.
package source

import (
	"fmt"
	"strconv"
	"strings"
)

// Row is one input record. Line is the 1-based source line for CSV, the
// 1-based array index for JSON and the 1-based file ordinal for Markdown.
type Row struct {
	Line   int
	Fields map[string]any
}

// Has reports whether the row carries field.
func (r Row) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// Value returns the raw value of the first present field among names.
func (r Row) Value(names ...string) (any, bool) {
	for _, name := range names {
		if value, ok := r.Fields[name]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// String returns the trimmed string form of the first non-empty field among
// names. Non-string scalars are formatted with fmt.
func (r Row) String(names ...string) string {
	for _, name := range names {
		value, ok := r.Fields[name]
		if !ok || value == nil {
			continue
		}
		var text string
		switch v := value.(type) {
		case string:
			text = v
		case float64:
			text = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			text = fmt.Sprint(v)
		}
		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}
