package migratecmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-bulkload/internal/batch"
	"github.com/goliatone/go-cms-bulkload/internal/store"
)

func seedPages(remote *store.MemoryStore) {
	remote.Seed("pages", map[string]any{"routePath": "/", "content": "## Welcome\n\nHello there."})
	remote.Seed("pages", map[string]any{"routePath": "/empty", "content": ""})
	remote.Seed("pages", map[string]any{
		"routePath": "/done",
		"content":   "Already converted",
		"blocks":    []any{map[string]any{"__component": "blocks.rich-text", "body": "kept"}},
	})
}

func TestMigrateBlocksHandlerUpdatesRecords(t *testing.T) {
	remote := store.NewMemoryStore()
	seedPages(remote)
	var out bytes.Buffer
	var outcome *batch.Outcome

	handler := NewMigrateBlocksHandler(Dependencies{
		Store:      remote,
		Output:     &out,
		OnComplete: func(o *batch.Outcome) { outcome = o },
	})
	err := handler.Execute(context.Background(), MigrateBlocksCommand{Kind: "pages", OnlyWhenEmpty: true, PageSize: 2})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if outcome.Updated != 1 || outcome.Skipped != 2 || outcome.Failed != 0 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	writes := remote.Writes()
	if len(writes) != 1 || writes[0].Method != "PUT" {
		t.Fatalf("expected a single update, got %+v", writes)
	}
	if !strings.Contains(out.String(), "migrate-blocks pages") {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
}

func TestMigrateBlocksHandlerDryRun(t *testing.T) {
	remote := store.NewMemoryStore()
	seedPages(remote)
	var outcome *batch.Outcome

	handler := NewMigrateBlocksHandler(Dependencies{
		Store:      remote,
		OnComplete: func(o *batch.Outcome) { outcome = o },
	})
	err := handler.Execute(context.Background(), MigrateBlocksCommand{Kind: "pages", DryRun: true})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(remote.Writes()) != 0 {
		t.Fatalf("expected no writes in dry run")
	}
	if outcome.Updated != 2 {
		t.Fatalf("expected dry run to report both regenerable records, got %+v", outcome)
	}
}

func TestMigrateBlocksCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		cmd     MigrateBlocksCommand
		wantErr bool
	}{
		{"pages", MigrateBlocksCommand{Kind: "pages"}, false},
		{"articles with page size", MigrateBlocksCommand{Kind: "articles", PageSize: 100}, false},
		{"redirects", MigrateBlocksCommand{Kind: "redirects"}, true},
		{"page size too large", MigrateBlocksCommand{Kind: "pages", PageSize: 101}, true},
		{"page size negative", MigrateBlocksCommand{Kind: "pages", PageSize: -1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cmd.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestMigrateBlocksHandlerRejectsRedirects(t *testing.T) {
	handler := NewMigrateBlocksHandler(Dependencies{Store: store.NewMemoryStore()})
	err := handler.Execute(context.Background(), MigrateBlocksCommand{Kind: "redirects"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}
