package loadcmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-cms-bulkload/internal/batch"
	"github.com/goliatone/go-cms-bulkload/internal/journal"
	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/logging/console"
	"github.com/goliatone/go-cms-bulkload/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeJournal struct {
	started  []string
	entries  []batch.Entry
	finished *batch.Outcome
}

func (f *fakeJournal) Start(_ context.Context, operation, kind, src string, dryRun bool) (*journal.Run, error) {
	f.started = append(f.started, operation+":"+kind)
	return &journal.Run{Operation: operation, Kind: kind, Source: src, DryRun: dryRun}, nil
}

func (f *fakeJournal) Record(_ context.Context, entry batch.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeJournal) Finish(_ context.Context, outcome *batch.Outcome) (*journal.Run, error) {
	f.finished = outcome
	return &journal.Run{}, nil
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

const pagesCSV = "routePath,pageName,content\n/,Home,Welcome home\n/about,About,About us\n,Broken,missing key\n"

func TestImportHandlerRunsRowsAndReports(t *testing.T) {
	remote := store.NewMemoryStore()
	remote.Seed("pages", map[string]any{"routePath": "/about", "pageName": "Old"})
	var out bytes.Buffer
	jr := &fakeJournal{}
	var outcome *batch.Outcome

	handler := NewImportHandler(Dependencies{
		Store:      remote,
		Journal:    jr,
		Output:     &out,
		Now:        func() time.Time { return fixedNow },
		OnComplete: func(o *batch.Outcome) { outcome = o },
	})

	err := handler.Execute(context.Background(), ImportCommand{
		Kind:   "pages",
		Source: writeInput(t, "pages.csv", pagesCSV),
		Mode:   "update",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if outcome == nil || outcome.Created != 1 || outcome.Updated != 1 || outcome.Failed != 1 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if len(jr.started) != 1 || jr.started[0] != "import:pages" {
		t.Fatalf("expected journal run to start, got %v", jr.started)
	}
	if len(jr.entries) != 3 || jr.finished != outcome {
		t.Fatalf("expected journal to receive every row and the outcome")
	}
	summary := out.String()
	for _, want := range []string{"import pages from", "created: 1", "updated: 1", "failed:  1", "line 4"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestImportHandlerRoutesModuleLoggers(t *testing.T) {
	var logs bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &logs, Clock: func() time.Time { return fixedNow }})

	handler := NewImportHandler(Dependencies{
		Store:        store.NewMemoryStore(),
		Journal:      &fakeJournal{},
		Logger:       logging.BatchLogger(provider),
		SourceLogger: logging.SourceLogger(provider),
	})
	err := handler.Execute(context.Background(), ImportCommand{
		Kind:   "pages",
		Source: writeInput(t, "pages.csv", "routePath,pageName\n/,Home\n"),
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	var loaded, created string
	for _, line := range strings.Split(logs.String(), "\n") {
		switch {
		case strings.Contains(line, "bulkload.source.loaded"):
			loaded = line
		case strings.Contains(line, "bulkload.row.created"):
			created = line
		}
	}
	if !strings.Contains(loaded, "logger=bulkload.source") || !strings.Contains(loaded, "rows=1") {
		t.Fatalf("expected the load event on the source logger, got %q", loaded)
	}
	if !strings.Contains(created, "logger=bulkload.batch") || !strings.Contains(created, "run_id=") {
		t.Fatalf("expected the row event on the batch logger with run_id, got %q", created)
	}
}

func TestImportHandlerDryRunWritesNothing(t *testing.T) {
	remote := store.NewMemoryStore()
	var out bytes.Buffer

	handler := NewImportHandler(Dependencies{Store: remote, Output: &out})
	err := handler.Execute(context.Background(), ImportCommand{
		Kind:   "pages",
		Source: writeInput(t, "pages.csv", pagesCSV),
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if writes := remote.Writes(); len(writes) != 0 {
		t.Fatalf("expected no writes in dry run, got %d", len(writes))
	}
	if !strings.Contains(out.String(), "(dry run)") {
		t.Fatalf("expected dry run marker in summary:\n%s", out.String())
	}
}

func TestSyncHandlerSkipModeLeavesMissingRecords(t *testing.T) {
	remote := store.NewMemoryStore()
	remote.Seed("redirects", map[string]any{"from": "/old", "to": "/new", "statusCode": 301})
	var outcome *batch.Outcome

	handler := NewSyncHandler(Dependencies{
		Store:      remote,
		OnComplete: func(o *batch.Outcome) { outcome = o },
	})
	input := writeInput(t, "redirects.json", `[
		{"from": "/old", "to": "/newer", "statusCode": 301},
		{"from": "/gone", "to": "/", "statusCode": 302}
	]`)

	if err := handler.Execute(context.Background(), SyncCommand{Kind: "redirects", Source: input, Mode: "skip"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if outcome.Updated != 1 || outcome.Skipped != 1 || outcome.Created != 0 {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if outcome.SkipReasons[batch.SkipMissing] != 1 {
		t.Fatalf("expected missing skip reason, got %v", outcome.SkipReasons)
	}
}

func TestImportHandlerParseFailureIsCategorised(t *testing.T) {
	remote := store.NewMemoryStore()
	handler := NewImportHandler(Dependencies{Store: remote})

	err := handler.Execute(context.Background(), ImportCommand{
		Kind:   "pages",
		Source: writeInput(t, "pages.csv", "routePath,pageName\n\"/,Home\n"),
	})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(remote.Writes()) != 0 || remote.ListCalls() != 0 {
		t.Fatal("expected no remote calls before a parse failure")
	}
}

func TestImportHandlerRejectsInvalidMessage(t *testing.T) {
	handler := NewImportHandler(Dependencies{Store: store.NewMemoryStore()})

	err := handler.Execute(context.Background(), ImportCommand{Kind: "pages"})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}
