package journal

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewRunRepository returns the generic repository for runs.
func NewRunRepository(db *bun.DB) repository.Repository[*Run] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Run]{
		NewRecord: func() *Run { return &Run{} },
		GetID: func(r *Run) uuid.UUID {
			return r.ID
		},
		SetID: func(r *Run, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *Run) string {
			return r.ID.String()
		},
	})
}

// NewEntryRepository returns the generic repository for entries.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord: func() *Entry { return &Entry{} },
		GetID: func(e *Entry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *Entry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *Entry) string {
			return e.ID.String()
		},
	})
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
