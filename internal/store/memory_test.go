package store

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

func TestMemoryStoreFiltersAndPaginates(t *testing.T) {
	store := NewMemoryStore()
	for _, path := range []string{"/a", "/b", "/c", "/d", "/e"} {
		store.Seed("pages", map[string]any{"routePath": path, "group": "x"})
	}

	page, err := store.List(context.Background(), "pages", interfaces.ListOptions{
		Filters:  map[string]string{"routePath": "/c"},
		PageSize: 1,
	})
	if err != nil || len(page.Records) != 1 || page.Records[0].String("routePath") != "/c" {
		t.Fatalf("unexpected filter result %+v %v", page, err)
	}

	page, err = store.List(context.Background(), "pages", interfaces.ListOptions{Page: 3, PageSize: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.PageCount != 3 || len(page.Records) != 1 || page.Records[0].String("routePath") != "/e" {
		t.Fatalf("unexpected last page %+v", page)
	}
	if len(store.Writes()) != 0 {
		t.Fatalf("seeding must not count as a write")
	}
}

func TestMemoryStoreWrites(t *testing.T) {
	store := NewMemoryStore()
	created, err := store.Create(context.Background(), "pages", map[string]any{"routePath": "/", "pageName": "Home"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Update(context.Background(), "pages", created.Identifier(), map[string]any{"pageName": "Start"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := store.Records("pages")[0].String("pageName"); got != "Start" {
		t.Fatalf("expected updated field, got %q", got)
	}
	writes := store.Writes()
	if len(writes) != 2 || writes[0].Method != "POST" || writes[1].Method != "PUT" || writes[1].ID != created.Identifier() {
		t.Fatalf("unexpected writes %+v", writes)
	}

	_, err = store.Update(context.Background(), "pages", "missing", map[string]any{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTagResolverCreatesOnceAndHonoursDryRun(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed(DefaultTagCollection, map[string]any{"name": "Go", "slug": "go"})

	dry := NewTagResolver(store, "", true, nil)
	if id, ok, err := dry.ResolveTag(ctx, normalize.Tag{Name: "Go", Slug: "go"}); err != nil || !ok || id != 1 {
		t.Fatalf("expected existing tag in dry run, got %d %v %v", id, ok, err)
	}
	if _, ok, err := dry.ResolveTag(ctx, normalize.Tag{Name: "News", Slug: "news"}); err != nil || ok {
		t.Fatalf("expected unknown tag to be skipped in dry run, got %v %v", ok, err)
	}
	if len(store.Writes()) != 0 {
		t.Fatalf("dry run must not create tags")
	}

	live := NewTagResolver(store, "", false, nil)
	first, ok, err := live.ResolveTag(ctx, normalize.Tag{Name: "News", Slug: "news"})
	if err != nil || !ok {
		t.Fatalf("expected tag creation, got %v %v", ok, err)
	}
	second, _, _ := live.ResolveTag(ctx, normalize.Tag{Name: "NEWS", Slug: "news"})
	if first != second || len(store.Writes()) != 1 {
		t.Fatalf("expected one creation reused by slug, got ids %d/%d writes %d", first, second, len(store.Writes()))
	}
}
