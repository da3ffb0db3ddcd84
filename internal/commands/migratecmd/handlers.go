package migratecmd

import (
	"context"
	"fmt"
	"io"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-bulkload/internal/batch"
	"github.com/goliatone/go-cms-bulkload/internal/commands"
	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/internal/reconcile"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

const migrateOperation = "bulkload.migrate_blocks"

var _ command.Commander[MigrateBlocksCommand] = (*MigrateBlocksHandler)(nil)

// Dependencies wire the migration handler.
type Dependencies struct {
	Store interfaces.RemoteStore
	// Journal is optional. Leave it nil (not a typed nil) to disable it.
	Journal    commands.RunJournal
	Output     io.Writer
	Logger     interfaces.Logger
	OnComplete func(*batch.Outcome)
}

// MigrateBlocksHandler runs in-place block migrations.
type MigrateBlocksHandler struct {
	inner *commands.Handler[MigrateBlocksCommand]
}

// NewMigrateBlocksHandler creates a handler bound to deps.
func NewMigrateBlocksHandler(deps Dependencies, opts ...commands.HandlerOption[MigrateBlocksCommand]) *MigrateBlocksHandler {
	logger := commands.EnsureLogger(deps.Logger)

	exec := func(ctx context.Context, msg MigrateBlocksCommand) error {
		if deps.Store == nil {
			return commands.WrapConfigError(fmt.Errorf("migratecmd: remote store is required"))
		}
		kind, err := normalize.ParseKind(msg.Kind)
		if err != nil {
			return commands.WrapConfigError(err)
		}

		ctx, recorder, err := commands.StartJournal(ctx, deps.Journal, logger, "migrate-blocks", string(kind), "", msg.DryRun)
		if err != nil {
			return err
		}
		runLogger := logger.WithContext(ctx)

		engine := reconcile.New(deps.Store, reconcile.Options{DryRun: msg.DryRun}, runLogger)
		migrator := batch.NewMigrator(deps.Store, engine, runLogger)
		outcome, runErr := migrator.Run(ctx, batch.MigrationOptions{
			Kind:          kind,
			OnlyWhenEmpty: msg.OnlyWhenEmpty,
			PageSize:      msg.PageSize,
			OnlyKey:       msg.OnlyKey,
			DryRun:        msg.DryRun,
			Recorder:      recorder,
		})
		if outcome == nil {
			outcome = batch.NewOutcome()
		}

		commands.FinishJournal(ctx, deps.Journal, logger, outcome)
		if deps.OnComplete != nil {
			deps.OnComplete(outcome)
		}
		if deps.Output != nil {
			title := fmt.Sprintf("migrate-blocks %s", kind)
			if err := batch.WriteSummary(deps.Output, title, msg.DryRun, outcome); err != nil {
				logger.Warn("bulkload.summary.write_failed", "error", err)
			}
		}
		return runErr
	}

	handlerOpts := []commands.HandlerOption[MigrateBlocksCommand]{
		commands.WithLogger[MigrateBlocksCommand](logger),
		commands.WithOperation[MigrateBlocksCommand](migrateOperation),
		commands.WithMessageFields(func(msg MigrateBlocksCommand) map[string]any {
			fields := map[string]any{
				"kind":            msg.Kind,
				"only_when_empty": msg.OnlyWhenEmpty,
			}
			if msg.PageSize > 0 {
				fields["page_size"] = msg.PageSize
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[MigrateBlocksCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &MigrateBlocksHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[MigrateBlocksCommand].
func (h *MigrateBlocksHandler) Execute(ctx context.Context, msg MigrateBlocksCommand) error {
	return h.inner.Execute(ctx, msg)
}
