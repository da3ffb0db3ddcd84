package batch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/internal/reconcile"
	"github.com/goliatone/go-cms-bulkload/internal/source"
	"github.com/goliatone/go-cms-bulkload/internal/store"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	entries []Entry
}

func (r *recorder) Record(_ context.Context, entry Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func newImportRunner(t *testing.T, remote *store.MemoryStore, mode string, opts Options) *Runner {
	t.Helper()
	normalizer, err := normalize.New(normalize.Options{
		DefaultAuthorID: 1,
		Tags:            store.NewTagResolver(remote, "", opts.DryRun, nil),
		Now:             func() time.Time { return fixedNow },
	})
	if err != nil {
		t.Fatalf("normalize.New: %v", err)
	}
	policy, err := reconcile.ImportPolicy(mode)
	if err != nil {
		t.Fatalf("ImportPolicy: %v", err)
	}
	engine := reconcile.New(remote, reconcile.Options{
		Policy: policy,
		DryRun: opts.DryRun,
		Now:    func() time.Time { return fixedNow },
	}, nil)
	return NewRunner(normalizer, engine, opts, nil)
}

func homeRows(t *testing.T) []source.Row {
	t.Helper()
	rows, err := source.ParseJSON([]byte(`[{"routePath":"/","pageName":"Home","content":""}]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	return rows
}

func TestRunCreatesMissingPage(t *testing.T) {
	remote := store.NewMemoryStore()
	outcome, err := newImportRunner(t, remote, "update", Options{}).Run(context.Background(), normalize.KindPages, homeRows(t))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Created != 1 || outcome.Updated != 0 || outcome.Skipped != 0 || outcome.Failed != 0 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestRunExistingPageHonoursMode(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		remote := store.NewMemoryStore()
		remote.Seed("pages", map[string]any{"routePath": "/", "pageName": "Old"})
		outcome, err := newImportRunner(t, remote, "skip", Options{}).Run(context.Background(), normalize.KindPages, homeRows(t))
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if outcome.Skipped != 1 || outcome.SkipReasons[SkipExisting] != 1 || len(remote.Writes()) != 0 {
			t.Fatalf("unexpected outcome %+v", outcome)
		}
	})

	t.Run("update", func(t *testing.T) {
		remote := store.NewMemoryStore()
		remote.Seed("pages", map[string]any{"routePath": "/", "pageName": "Old"})
		rows := homeRows(t)
		outcome, err := newImportRunner(t, remote, "update", Options{}).Run(context.Background(), normalize.KindPages, rows)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if outcome.Updated != 1 || outcome.Total() != 1 {
			t.Fatalf("unexpected outcome %+v", outcome)
		}

		normalizer, _ := normalize.New(normalize.Options{Now: func() time.Time { return fixedNow }})
		want, err := normalizer.Normalize(context.Background(), normalize.KindPages, rows[0])
		if err != nil {
			t.Fatalf("Normalize: %v", err)
		}
		page := want.(*normalize.PagePayload)
		sent := remote.Writes()[0].Data
		if sent["routePath"] != page.RoutePath || sent["pageName"] != page.PageName {
			t.Fatalf("expected normalized payload, got %v", sent)
		}
		seo, _ := sent["seo"].(map[string]any)
		if seo["metaDescription"] != page.SEO.MetaDescription {
			t.Fatalf("expected derived SEO to be sent, got %v", sent["seo"])
		}
	})
}

func TestRunCSVRowMissingKeyFailsAndContinues(t *testing.T) {
	rows, err := source.ParseCSV("routePath,pageName\n/,Home\n,Orphan\n/about,About\n")
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	remote := store.NewMemoryStore()
	outcome, err := newImportRunner(t, remote, "update", Options{}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Failed != 1 || outcome.Created != 2 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	var out bytes.Buffer
	if err := WriteSummary(&out, "import pages", false, outcome); err != nil {
		t.Fatalf("WriteSummary: %v", err)
	}
	if !strings.Contains(out.String(), "failed:  1") || !strings.Contains(out.String(), "line 3: failed:") {
		t.Fatalf("unexpected summary:\n%s", out.String())
	}
}

func TestRunFailsOnlySecondDuplicate(t *testing.T) {
	rows, err := source.ParseJSON([]byte(`[
		{"title":"Hello World","body":"one"},
		{"title":"Other","body":"two"},
		{"slug":"hello-world","title":"Again","body":"three"}
	]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	remote := store.NewMemoryStore()
	rec := &recorder{}
	outcome, err := newImportRunner(t, remote, "update", Options{Recorder: rec}).Run(context.Background(), normalize.KindArticles, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Created != 2 || outcome.Failed != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if rec.entries[0].Action != string(reconcile.ActionCreate) || rec.entries[2].Action != ActionFailed {
		t.Fatalf("expected the second occurrence to fail, got %+v", rec.entries)
	}
	if !strings.Contains(rec.entries[2].Error, "first seen on line 1") {
		t.Fatalf("unexpected duplicate error %q", rec.entries[2].Error)
	}
	if writes := remote.Writes(); writes[0].Data["title"] != "Hello World" {
		t.Fatalf("expected first occurrence to be written, got %v", writes[0].Data)
	}
}

func TestRunIsolatesRemoteFailures(t *testing.T) {
	rows, _ := source.ParseCSV("routePath,pageName\n/a,A\n/b,B\n/c,C\n")
	remote := store.NewMemoryStore()
	remote.FailWrites = func(_ string, _ string, data map[string]any) error {
		if data["routePath"] == "/b" {
			return &store.RemoteError{Method: "POST", StatusCode: 500, Body: "boom"}
		}
		return nil
	}
	outcome, err := newImportRunner(t, remote, "update", Options{}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Created != 2 || outcome.Failed != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if !strings.Contains(strings.Join(outcome.Messages, "\n"), "status 500: boom") {
		t.Fatalf("expected response body in messages, got %v", outcome.Messages)
	}
}

func TestDryRunMatchesLiveCounters(t *testing.T) {
	input := `[
		{"routePath":"/","pageName":"Home"},
		{"routePath":"/about","pageName":"About","tags":"team, company"},
		{"routePath":"/about/","pageName":"Duplicate"},
		{"pageName":"No path"},
		{"routePath":"/contact","pageName":"Contact","structuredData":"{broken"}
	]`
	seed := func() *store.MemoryStore {
		remote := store.NewMemoryStore()
		remote.Seed("pages", map[string]any{"routePath": "/", "pageName": "Old"})
		remote.Seed("tags", map[string]any{"name": "Team", "slug": "team"})
		return remote
	}

	rows, err := source.ParseJSON([]byte(input))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	dryStore := seed()
	dry, err := newImportRunner(t, dryStore, "update", Options{DryRun: true}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("dry Run: %v", err)
	}

	rows, _ = source.ParseJSON([]byte(input))
	liveStore := seed()
	live, err := newImportRunner(t, liveStore, "update", Options{}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("live Run: %v", err)
	}

	if len(dryStore.Writes()) != 0 {
		t.Fatalf("dry run wrote %+v", dryStore.Writes())
	}
	if dry.Created != live.Created || dry.Updated != live.Updated || dry.Skipped != live.Skipped || dry.Failed != live.Failed {
		t.Fatalf("dry %+v differs from live %+v", dry, live)
	}
	if live.Created != 1 || live.Updated != 1 || live.Failed != 3 {
		t.Fatalf("unexpected live outcome %+v", live)
	}
}

func TestRunOnlyKeyFiltersRows(t *testing.T) {
	rows, _ := source.ParseCSV("routePath,pageName\n/a,A\n/b,B\n")
	remote := store.NewMemoryStore()
	outcome, err := newImportRunner(t, remote, "update", Options{OnlyKey: "b/"}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Created != 1 || outcome.SkipReasons[SkipFiltered] != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestRunStopsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	remote := store.NewMemoryStore()
	outcome, err := newImportRunner(t, remote, "update", Options{}).Run(ctx, normalize.KindPages, homeRows(t))
	if !errors.Is(err, context.Canceled) || outcome.Total() != 0 {
		t.Fatalf("expected cancellation before any row, got %+v %v", outcome, err)
	}
}

func TestRunSkippedRowsDoNotWriteTags(t *testing.T) {
	rows, err := source.ParseJSON([]byte(`[
		{"routePath":"/a","pageName":"A","tags":"alpha, beta"},
		{"routePath":"/b","pageName":"B"},
		{"routePath":"/b","pageName":"B again","tags":"gamma"}
	]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	remote := store.NewMemoryStore()
	outcome, err := newImportRunner(t, remote, "update", Options{OnlyKey: "/b"}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Created != 1 || outcome.Skipped != 1 || outcome.Failed != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	writes := remote.Writes()
	if len(writes) != 1 || writes[0].Collection != "pages" || writes[0].Data["routePath"] != "/b" {
		t.Fatalf("expected a single page write for /b, got %+v", writes)
	}
	if tags := remote.Records(store.DefaultTagCollection); len(tags) != 0 {
		t.Fatalf("expected no tags for filtered or duplicate rows, got %d", len(tags))
	}
}

func TestRunResolvesTagsForReconciledRows(t *testing.T) {
	rows, _ := source.ParseJSON([]byte(`[{"routePath":"/a","pageName":"A","tags":"alpha|beta"}]`))
	remote := store.NewMemoryStore()
	outcome, err := newImportRunner(t, remote, "update", Options{}).Run(context.Background(), normalize.KindPages, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Created != 1 || len(remote.Records(store.DefaultTagCollection)) != 2 {
		t.Fatalf("expected the page and two tags, got %+v", outcome)
	}
	page := remote.Writes()[2].Data
	if tags, _ := page["tags"].([]any); len(tags) != 2 {
		t.Fatalf("expected tag ids on the page write, got %v", page["tags"])
	}
}
