package interfaces

import (
	"context"
	"strconv"
)

// Record is the canonical shape of a remote document after the store adapter
// has unwrapped whatever envelope the API version returned.
type Record struct {
	ID         int64
	DocumentID string
	Fields     map[string]any
}

// Identifier returns the value used to address the record on update: the
// document identifier when the store exposes one, the numeric id otherwise.
// An empty string means the record cannot be addressed.
func (r *Record) Identifier() string {
	if r == nil {
		return ""
	}
	if r.DocumentID != "" {
		return r.DocumentID
	}
	if r.ID > 0 {
		return strconv.FormatInt(r.ID, 10)
	}
	return ""
}

// String returns the named field as a string, or "" when it is absent or not a string.
func (r *Record) String(field string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	value, _ := r.Fields[field].(string)
	return value
}

// ListOptions narrows a collection listing. Filters are equality filters keyed
// by field name.
type ListOptions struct {
	Filters  map[string]string
	Page     int
	PageSize int
}

// RecordPage is one page of a collection listing.
type RecordPage struct {
	Records   []*Record
	Page      int
	PageCount int
}

// RemoteStore is the boundary to the content store REST API. Every method is a
// single blocking round-trip.
type RemoteStore interface {
	List(ctx context.Context, collection string, opts ListOptions) (*RecordPage, error)
	Create(ctx context.Context, collection string, data any) (*Record, error)
	Update(ctx context.Context, collection, id string, data any) (*Record, error)
}
