package store

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// Write records one mutating call made against a MemoryStore.
type Write struct {
	Method     string
	Collection string
	ID         string
	Data       map[string]any
}

// MemoryStore is an in-process RemoteStore. Payloads are round-tripped
// through JSON so stored fields look like what the REST API would return.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]*interfaces.Record
	writes  []Write
	lists   int
	nextID  int64

	// FailWrites, when set, is consulted before every create and update.
	FailWrites func(method, collection string, data map[string]any) error
	// OmitIdentifiers makes listed records expose neither id nor documentId.
	OmitIdentifiers bool
}

var _ interfaces.RemoteStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string][]*interfaces.Record{}}
}

// Seed inserts fields into collection without counting it as a write.
func (m *MemoryStore) Seed(collection string, fields map[string]any) *interfaces.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(collection, maps.Clone(fields))
}

// Writes returns every create and update in call order.
func (m *MemoryStore) Writes() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.writes...)
}

// ListCalls reports how many listings were served.
func (m *MemoryStore) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

// Records returns the stored records of collection.
func (m *MemoryStore) Records(collection string) []*interfaces.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*interfaces.Record(nil), m.records[collection]...)
}

func (m *MemoryStore) List(_ context.Context, collection string, opts interfaces.ListOptions) (*interfaces.RecordPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++

	var matched []*interfaces.Record
	for _, record := range m.records[collection] {
		if matches(record, opts.Filters) {
			matched = append(matched, record)
		}
	}

	size := opts.PageSize
	if size <= 0 {
		size = 25
	}
	page := max(opts.Page, 1)
	pageCount := (len(matched) + size - 1) / size
	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))

	out := &interfaces.RecordPage{Page: page, PageCount: pageCount}
	for _, record := range matched[start:end] {
		copied := &interfaces.Record{ID: record.ID, DocumentID: record.DocumentID, Fields: maps.Clone(record.Fields)}
		if m.OmitIdentifiers {
			copied.ID, copied.DocumentID = 0, ""
		}
		out.Records = append(out.Records, copied)
	}
	return out, nil
}

func (m *MemoryStore) Create(_ context.Context, collection string, data any) (*interfaces.Record, error) {
	fields, err := toFields(data)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		if err := m.FailWrites("POST", collection, fields); err != nil {
			return nil, err
		}
	}
	m.writes = append(m.writes, Write{Method: "POST", Collection: collection, Data: fields})
	return m.insert(collection, maps.Clone(fields)), nil
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, data any) (*interfaces.Record, error) {
	fields, err := toFields(data)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		if err := m.FailWrites("PUT", collection, fields); err != nil {
			return nil, err
		}
	}
	for _, record := range m.records[collection] {
		if record.Identifier() != id {
			continue
		}
		m.writes = append(m.writes, Write{Method: "PUT", Collection: collection, ID: id, Data: fields})
		maps.Copy(record.Fields, fields)
		return &interfaces.Record{ID: record.ID, DocumentID: record.DocumentID, Fields: maps.Clone(record.Fields)}, nil
	}
	return nil, &RemoteError{Method: "PUT", URL: collection + "/" + id, StatusCode: 404, Err: ErrNotFound}
}

func (m *MemoryStore) insert(collection string, fields map[string]any) *interfaces.Record {
	if fields == nil {
		fields = map[string]any{}
	}
	m.nextID++
	record := &interfaces.Record{
		ID:         m.nextID,
		DocumentID: "doc-" + strconv.FormatInt(m.nextID, 10),
		Fields:     fields,
	}
	m.records[collection] = append(m.records[collection], record)
	return &interfaces.Record{ID: record.ID, DocumentID: record.DocumentID, Fields: maps.Clone(fields)}
}

func matches(record *interfaces.Record, filters map[string]string) bool {
	for field, want := range filters {
		value, ok := record.Fields[field]
		if !ok || fmt.Sprint(value) != want {
			return false
		}
	}
	return true
}

func toFields(data any) (map[string]any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("store: encode payload: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, fmt.Errorf("store: payload must encode to an object: %w", err)
	}
	return fields, nil
}
