package store

import (
	"bytes"
	"fmt"
	"maps"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageSize  int `json:"pageSize"`
			PageCount int `json:"pageCount"`
			Total     int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

// decodeList reads a list response. A missing page count is reported as a
// single page.
func decodeList(body []byte) (*interfaces.RecordPage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var items []map[string]any
	data := bytes.TrimSpace(env.Data)
	if len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: list data: %v", ErrMalformedResponse, err)
		}
	}

	page := &interfaces.RecordPage{
		Records:   make([]*interfaces.Record, 0, len(items)),
		Page:      env.Meta.Pagination.Page,
		PageCount: env.Meta.Pagination.PageCount,
	}
	if page.PageCount == 0 && len(items) > 0 {
		page.PageCount = 1
	}
	for _, item := range items {
		page.Records = append(page.Records, canonicalRecord(item))
	}
	return page, nil
}

// decodeSingle reads a create or update response.
func decodeSingle(body []byte) (*interfaces.Record, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	var item map[string]any
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, fmt.Errorf("%w: empty data", ErrMalformedResponse)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("%w: record data: %v", ErrMalformedResponse, err)
	}
	return canonicalRecord(item), nil
}

// canonicalRecord flattens both response shapes into one Record: the nested
// form {"id", "attributes": {...}} and the flat form {"id", "documentId",
// ...fields}.
func canonicalRecord(item map[string]any) *interfaces.Record {
	record := &interfaces.Record{
		ID:         numericID(item["id"]),
		DocumentID: stringValue(item["documentId"]),
	}
	if attributes, ok := item["attributes"].(map[string]any); ok {
		record.Fields = maps.Clone(attributes)
		if record.DocumentID == "" {
			record.DocumentID = stringValue(attributes["documentId"])
		}
	} else {
		record.Fields = maps.Clone(item)
	}
	if record.Fields == nil {
		record.Fields = map[string]any{}
	}
	delete(record.Fields, "id")
	delete(record.Fields, "documentId")
	return record
}

func numericID(value any) int64 {
	switch v := value.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		id, _ := v.Int64()
		return id
	case string:
		id, _ := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id
	}
	return 0
}

func stringValue(value any) string {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
