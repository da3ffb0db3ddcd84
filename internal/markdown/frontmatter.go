package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
)

// Document is a markdown file split into its frontmatter map and body.
type Document struct {
	Path string
	Meta map[string]any
	Body []byte
}

// ParseDocument separates YAML/TOML/JSON frontmatter from the markdown body.
// Nested maps are converted to map[string]any so the values can be encoded
// as JSON later on.
func ParseDocument(path string, source []byte) (*Document, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("parse frontmatter %s: %w", path, err)
	}
	for key, value := range meta {
		meta[key] = normalizeValue(value)
	}
	return &Document{
		Path: path,
		Meta: meta,
		Body: body,
	}, nil
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return out
	case map[string]any:
		for key, inner := range v {
			v[key] = normalizeValue(inner)
		}
		return v
	case []any:
		for i, inner := range v {
			v[i] = normalizeValue(inner)
		}
		return v
	default:
		return value
	}
}
