// Package batch drives rows through normalization and reconciliation one at a
// time and accumulates the run outcome. Row failures are recorded and never
// stop the run.
package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/internal/reconcile"
	"github.com/goliatone/go-cms-bulkload/internal/source"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// Normalizer maps a row to a payload in two steps: Prepare has no side
// effects, ResolveTags may write tags to the remote store.
type Normalizer interface {
	Prepare(kind normalize.Kind, row source.Row) (normalize.Payload, error)
	ResolveTags(ctx context.Context, payload normalize.Payload) error
}

// Reconciler decides and applies the upsert for one payload.
type Reconciler interface {
	Reconcile(ctx context.Context, payload normalize.Payload) (reconcile.Result, error)
}

// Entry is one terminal row state, handed to a Recorder.
type Entry struct {
	Kind   normalize.Kind
	Line   int
	Key    string
	Action string
	Reason string
	Error  string
	DryRun bool
}

// Recorder persists row entries. Recorder failures are logged and ignored.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// ActionFailed is the Entry action of a failed row.
const ActionFailed = "fail"

// Options configures a Runner.
type Options struct {
	// OnlyKey restricts the run to rows whose natural key equals it.
	OnlyKey  string
	DryRun   bool
	Recorder Recorder
}

// Runner processes input rows sequentially.
type Runner struct {
	normalizer Normalizer
	reconciler Reconciler
	opts       Options
	logger     interfaces.Logger
}

// NewRunner wires a runner.
func NewRunner(normalizer Normalizer, reconciler Reconciler, opts Options, logger interfaces.Logger) *Runner {
	return &Runner{
		normalizer: normalizer,
		reconciler: reconciler,
		opts:       opts,
		logger:     logging.Ensure(logger),
	}
}

// rowResult is the terminal state of one successfully processed row.
type rowResult struct {
	Key    string
	Action reconcile.Action
	Reason string
}

// Run processes rows in order. It returns early only when ctx is done; the
// outcome then covers the rows processed so far.
func (r *Runner) Run(ctx context.Context, kind normalize.Kind, rows []source.Row) (*Outcome, error) {
	outcome := NewOutcome()
	seen := map[string]int{}
	onlyKey := filterKey(kind, r.opts.OnlyKey)

	r.logger.Info("bulkload.run.started", "kind", string(kind), "rows", len(rows), "dry_run", r.opts.DryRun)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		result, err := r.processRow(ctx, kind, row, onlyKey, seen)
		logger := logging.WithRowContext(r.logger, row.Line, result.Key, string(result.Action))
		entry := Entry{Kind: kind, Line: row.Line, Key: result.Key, Action: string(result.Action), Reason: result.Reason, DryRun: r.opts.DryRun}
		if err != nil {
			outcome.fail(row.Line, result.Key, err)
			logger.Error("bulkload.row.failed", "error", err)
			entry.Action, entry.Error = ActionFailed, err.Error()
		} else {
			outcome.record(row.Line, result.Key, result.Action, result.Reason)
			logger.Info("bulkload.row." + pastTense(result.Action, ""))
		}
		r.journal(ctx, entry)
	}
	r.logger.Info("bulkload.run.completed",
		"created", outcome.Created,
		"updated", outcome.Updated,
		"skipped", outcome.Skipped,
		"failed", outcome.Failed,
	)
	return outcome, nil
}

// processRow takes one row from pending to a terminal state. A non-nil error
// marks the row failed; the returned key is set whenever it was resolved.
func (r *Runner) processRow(ctx context.Context, kind normalize.Kind, row source.Row, onlyKey string, seen map[string]int) (rowResult, error) {
	payload, err := r.normalizer.Prepare(kind, row)
	if err != nil {
		return rowResult{}, err
	}
	result := rowResult{Key: payload.NaturalKey()}

	if onlyKey != "" && result.Key != onlyKey {
		result.Action, result.Reason = reconcile.ActionSkip, SkipFiltered
		return result, nil
	}
	if first, dup := seen[result.Key]; dup {
		return result, &normalize.ValidationError{
			Line:  row.Line,
			Field: kind.KeyField(),
			Err:   fmt.Errorf("%w %q (first seen on line %d)", normalize.ErrDuplicateKey, result.Key, first),
		}
	}
	seen[result.Key] = row.Line

	if err := r.normalizer.ResolveTags(ctx, payload); err != nil {
		return result, err
	}
	reconciled, err := r.reconciler.Reconcile(ctx, payload)
	if err != nil {
		return result, err
	}
	result.Action, result.Reason = reconciled.Action, reconciled.Reason
	return result, nil
}

func (r *Runner) journal(ctx context.Context, entry Entry) {
	if r.opts.Recorder == nil {
		return
	}
	if err := r.opts.Recorder.Record(ctx, entry); err != nil {
		r.logger.Warn("bulkload.journal.record.failed", "line", entry.Line, "error", err)
	}
}

// filterKey normalizes a targeted key the way row keys are normalized.
func filterKey(kind normalize.Kind, key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	switch kind {
	case normalize.KindPages, normalize.KindRedirects:
		return normalize.PathKey(key)
	case normalize.KindArticles:
		return normalize.Slugify(key)
	}
	return key
}
