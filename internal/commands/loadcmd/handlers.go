package loadcmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-cms-bulkload/internal/batch"
	"github.com/goliatone/go-cms-bulkload/internal/commands"
	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/internal/reconcile"
	"github.com/goliatone/go-cms-bulkload/internal/source"
	"github.com/goliatone/go-cms-bulkload/internal/store"
	cmsvalidation "github.com/goliatone/go-cms-bulkload/internal/validation"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

const (
	importOperation = "bulkload.import"
	syncOperation   = "bulkload.sync"
)

var (
	_ command.Commander[ImportCommand] = (*ImportHandler)(nil)
	_ command.Commander[SyncCommand]   = (*SyncHandler)(nil)
)

// Dependencies are shared by the import and sync handlers.
type Dependencies struct {
	Store interfaces.RemoteStore
	// Journal is optional. Leave it nil (not a typed nil) to disable it.
	Journal commands.RunJournal
	// Output receives the run summary. Nil discards it.
	Output io.Writer
	Logger interfaces.Logger
	// SourceLogger receives input loading events. Nil uses Logger.
	SourceLogger interfaces.Logger
	// TagCollection defaults to store.DefaultTagCollection.
	TagCollection string
	Now           func() time.Time
	// OnComplete, when set, receives every finished outcome.
	OnComplete func(*batch.Outcome)
}

// runSpec is the operation independent view of an import or sync message.
type runSpec struct {
	operation      string
	kind           string
	source         string
	policy         reconcile.Policy
	dryRun         bool
	forcePublish   bool
	forceUnpublish bool
	authorID       int64
	onlyKey        string
	convertBlocks  bool
	schemaPath     string
}

// ImportHandler runs seed imports.
type ImportHandler struct {
	inner *commands.Handler[ImportCommand]
}

// NewImportHandler creates a handler bound to deps.
func NewImportHandler(deps Dependencies, opts ...commands.HandlerOption[ImportCommand]) *ImportHandler {
	logger := commands.EnsureLogger(deps.Logger)

	exec := func(ctx context.Context, msg ImportCommand) error {
		policy, err := reconcile.ImportPolicy(defaultMode(msg.Mode, reconcile.ModeUpdate))
		if err != nil {
			return commands.WrapConfigError(err)
		}
		return execute(ctx, deps, runSpec{
			operation:      "import",
			kind:           msg.Kind,
			source:         msg.Source,
			policy:         policy,
			dryRun:         msg.DryRun,
			forcePublish:   msg.ForcePublish,
			forceUnpublish: msg.ForceUnpublish,
			authorID:       msg.DefaultAuthorID,
			onlyKey:        msg.OnlyKey,
			convertBlocks:  msg.ConvertBlocks,
			schemaPath:     msg.SchemaPath,
		})
	}

	handlerOpts := []commands.HandlerOption[ImportCommand]{
		commands.WithLogger[ImportCommand](logger),
		commands.WithOperation[ImportCommand](importOperation),
		commands.WithMessageFields(func(msg ImportCommand) map[string]any {
			return messageFields(msg.Kind, msg.Source, msg.Mode, msg.DryRun)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ImportCommand].
func (h *ImportHandler) Execute(ctx context.Context, msg ImportCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncHandler runs sync operations.
type SyncHandler struct {
	inner *commands.Handler[SyncCommand]
}

// NewSyncHandler creates a handler bound to deps.
func NewSyncHandler(deps Dependencies, opts ...commands.HandlerOption[SyncCommand]) *SyncHandler {
	logger := commands.EnsureLogger(deps.Logger)

	exec := func(ctx context.Context, msg SyncCommand) error {
		policy, err := reconcile.SyncPolicy(defaultMode(msg.Mode, reconcile.ModeCreate))
		if err != nil {
			return commands.WrapConfigError(err)
		}
		return execute(ctx, deps, runSpec{
			operation:     "sync",
			kind:          msg.Kind,
			source:        msg.Source,
			policy:        policy,
			dryRun:        msg.DryRun,
			forcePublish:  msg.ForcePublish,
			authorID:      msg.DefaultAuthorID,
			onlyKey:       msg.OnlyKey,
			convertBlocks: msg.ConvertBlocks,
			schemaPath:    msg.SchemaPath,
		})
	}

	handlerOpts := []commands.HandlerOption[SyncCommand]{
		commands.WithLogger[SyncCommand](logger),
		commands.WithOperation[SyncCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncCommand) map[string]any {
			return messageFields(msg.Kind, msg.Source, msg.Mode, msg.DryRun)
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncCommand](logger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SyncCommand].
func (h *SyncHandler) Execute(ctx context.Context, msg SyncCommand) error {
	return h.inner.Execute(ctx, msg)
}

// execute loads the input, then drives every row through the runner.
// Errors returned here abort before or outside row processing; row failures
// only show up in the outcome.
func execute(ctx context.Context, deps Dependencies, spec runSpec) error {
	if deps.Store == nil {
		return commands.WrapConfigError(fmt.Errorf("loadcmd: remote store is required"))
	}
	kind, err := normalize.ParseKind(spec.kind)
	if err != nil {
		return commands.WrapConfigError(err)
	}

	var validator *cmsvalidation.Validator
	if path := strings.TrimSpace(spec.schemaPath); path != "" {
		if validator, err = cmsvalidation.LoadValidator(path); err != nil {
			return commands.WrapConfigError(err)
		}
	}

	logger := commands.EnsureLogger(deps.Logger)
	sourceLogger := deps.SourceLogger
	if sourceLogger == nil {
		sourceLogger = logger
	}
	rows, _, err := source.Load(spec.source, sourceLogger)
	if err != nil {
		return commands.WrapParseError(err)
	}

	ctx, recorder, err := commands.StartJournal(ctx, deps.Journal, logger, spec.operation, string(kind), spec.source, spec.dryRun)
	if err != nil {
		return err
	}
	logger = logger.WithContext(ctx)

	tagCollection := deps.TagCollection
	if tagCollection == "" {
		tagCollection = store.DefaultTagCollection
	}
	normalizer, err := normalize.New(normalize.Options{
		DefaultAuthorID: spec.authorID,
		ConvertBlocks:   spec.convertBlocks,
		Validator:       validator,
		Tags:            store.NewTagResolver(deps.Store, tagCollection, spec.dryRun, logger),
		Now:             deps.Now,
	})
	if err != nil {
		commands.FinishJournal(ctx, deps.Journal, logger, batch.NewOutcome())
		return commands.WrapConfigError(err)
	}

	engine := reconcile.New(deps.Store, reconcile.Options{
		Policy:         spec.policy,
		DryRun:         spec.dryRun,
		ForcePublish:   spec.forcePublish,
		ForceUnpublish: spec.forceUnpublish,
		Now:            deps.Now,
	}, logger)

	runner := batch.NewRunner(normalizer, engine, batch.Options{
		OnlyKey:  spec.onlyKey,
		DryRun:   spec.dryRun,
		Recorder: recorder,
	}, logger)
	outcome, runErr := runner.Run(ctx, kind, rows)

	commands.FinishJournal(ctx, deps.Journal, logger, outcome)
	if deps.OnComplete != nil {
		deps.OnComplete(outcome)
	}
	if deps.Output != nil {
		title := fmt.Sprintf("%s %s from %s", spec.operation, kind, spec.source)
		if err := batch.WriteSummary(deps.Output, title, spec.dryRun, outcome); err != nil {
			logger.Warn("bulkload.summary.write_failed", "error", err)
		}
	}
	return runErr
}

func defaultMode(mode, fallback string) string {
	if strings.TrimSpace(mode) == "" {
		return fallback
	}
	return mode
}

func messageFields(kind, src, mode string, dryRun bool) map[string]any {
	fields := map[string]any{
		"kind":   kind,
		"source": src,
	}
	if mode != "" {
		fields["mode"] = mode
	}
	if dryRun {
		fields["dry_run"] = true
	}
	return fields
}
