package source

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ReadJSON reads r fully and parses it with ParseJSON.
func ReadJSON(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return ParseJSON(data)
}

// ParseJSON decodes a JSON array of objects. Element i becomes a row with
// Line i+1.
func ParseJSON(data []byte) ([]Row, error) {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, &ParseError{Err: fmt.Errorf("decode json: %w", err)}
	}
	items, ok := decoded.([]any)
	if !ok {
		return nil, &ParseError{Err: ErrNotArray}
	}

	rows := make([]Row, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Line: i + 1, Err: ErrNotObject}
		}
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}
	return rows, nil
}
