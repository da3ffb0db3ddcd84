package commands

import (
	"context"

	"github.com/goliatone/go-cms-bulkload/internal/batch"
	"github.com/goliatone/go-cms-bulkload/internal/journal"
	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// RunJournal is the slice of *journal.Journal that command handlers use.
type RunJournal interface {
	batch.Recorder
	Start(ctx context.Context, operation, kind, source string, dryRun bool) (*journal.Run, error)
	Finish(ctx context.Context, outcome *batch.Outcome) (*journal.Run, error)
}

var _ RunJournal = (*journal.Journal)(nil)

// StartJournal begins a run when j is set and returns the recorder to hand
// to the batch runner, plus a context carrying the run id as a log field.
// A nil journal yields ctx unchanged and a nil recorder.
func StartJournal(ctx context.Context, j RunJournal, logger interfaces.Logger, operation, kind, source string, dryRun bool) (context.Context, batch.Recorder, error) {
	if j == nil {
		return ctx, nil, nil
	}
	run, err := j.Start(ctx, operation, kind, source, dryRun)
	if err != nil {
		return ctx, nil, err
	}
	ctx = logging.ContextWithFields(ctx, map[string]any{"run_id": run.ID.String()})
	EnsureLogger(logger).WithContext(ctx).Info("bulkload.journal.run")
	return ctx, j, nil
}

// FinishJournal closes the active run. Failures are logged only; the batch
// outcome is already final.
func FinishJournal(ctx context.Context, j RunJournal, logger interfaces.Logger, outcome *batch.Outcome) {
	if j == nil {
		return
	}
	if _, err := j.Finish(ctx, outcome); err != nil {
		EnsureLogger(logger).Warn("bulkload.journal.finish_failed", "error", err)
	}
}
