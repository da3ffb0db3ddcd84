package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// DefaultTagCollection is where tag references live.
const DefaultTagCollection = "tags"

// TagResolver looks tags up by slug and creates missing ones. In a dry run it
// never creates, so unknown tags resolve to ok=false.
type TagResolver struct {
	store      interfaces.RemoteStore
	collection string
	dryRun     bool
	logger     interfaces.Logger

	mu    sync.Mutex
	cache map[string]int64
}

var _ normalize.TagResolver = (*TagResolver)(nil)

// NewTagResolver builds a resolver over store. An empty collection uses
// DefaultTagCollection.
func NewTagResolver(store interfaces.RemoteStore, collection string, dryRun bool, logger interfaces.Logger) *TagResolver {
	if collection == "" {
		collection = DefaultTagCollection
	}
	return &TagResolver{
		store:      store,
		collection: collection,
		dryRun:     dryRun,
		logger:     logging.Ensure(logger),
		cache:      map[string]int64{},
	}
}

func (r *TagResolver) ResolveTag(ctx context.Context, tag normalize.Tag) (int64, bool, error) {
	r.mu.Lock()
	id, cached := r.cache[tag.Slug]
	r.mu.Unlock()
	if cached {
		return id, true, nil
	}

	page, err := r.store.List(ctx, r.collection, interfaces.ListOptions{
		Filters:  map[string]string{"slug": tag.Slug},
		PageSize: 1,
	})
	if err != nil {
		return 0, false, err
	}
	if len(page.Records) > 0 {
		return r.remember(tag.Slug, page.Records[0])
	}

	if r.dryRun {
		r.logger.Info("bulkload.tag.create.skipped", "slug", tag.Slug, "dry_run", true)
		return 0, false, nil
	}
	created, err := r.store.Create(ctx, r.collection, map[string]any{"name": tag.Name, "slug": tag.Slug})
	if err != nil {
		return 0, false, err
	}
	r.logger.Info("bulkload.tag.created", "slug", tag.Slug, "id", created.ID)
	return r.remember(tag.Slug, created)
}

func (r *TagResolver) remember(slug string, record *interfaces.Record) (int64, bool, error) {
	if record.ID <= 0 {
		return 0, false, &RemoteError{Err: fmt.Errorf("%w: tag %q has no numeric id", ErrMissingIdentifier, slug)}
	}
	r.mu.Lock()
	r.cache[slug] = record.ID
	r.mu.Unlock()
	return record.ID, true, nil
}
