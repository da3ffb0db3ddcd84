package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-bulkload/internal/blocks"
	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/normalize"
	"github.com/goliatone/go-cms-bulkload/internal/reconcile"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// DefaultPageSize is the listing page size used when none is configured.
const DefaultPageSize = 25

// Patcher writes selected fields of a fetched record.
type Patcher interface {
	Collection(kind normalize.Kind) string
	Patch(ctx context.Context, kind normalize.Kind, record *interfaces.Record, data map[string]any) (reconcile.Result, error)
}

// MigrationOptions configures an in-place block migration.
type MigrationOptions struct {
	Kind normalize.Kind
	// OnlyWhenEmpty skips records that already carry blocks.
	OnlyWhenEmpty bool
	PageSize      int
	OnlyKey       string
	DryRun        bool
	Recorder      Recorder
}

// Migrator regenerates the blocks field of remote records from their legacy
// text field, paging through the whole collection.
type Migrator struct {
	store   interfaces.RemoteStore
	patcher Patcher
	logger  interfaces.Logger
}

// NewMigrator wires a migrator. Reads go to remote, writes through patcher.
func NewMigrator(remote interfaces.RemoteStore, patcher Patcher, logger interfaces.Logger) *Migrator {
	return &Migrator{store: remote, patcher: patcher, logger: logging.Ensure(logger)}
}

// Run visits every page reported by the store's page count. A listing
// failure ends the run with an error; record failures are counted.
func (m *Migrator) Run(ctx context.Context, opts MigrationOptions) (*Outcome, error) {
	if opts.Kind.LegacyField() == "" {
		return nil, fmt.Errorf("%w %q has no legacy text field", normalize.ErrUnknownKind, opts.Kind)
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	collection := m.patcher.Collection(opts.Kind)
	onlyKey := filterKey(opts.Kind, opts.OnlyKey)
	outcome := NewOutcome()
	position := 0

	m.logger.Info("bulkload.migrate.started", "kind", string(opts.Kind), "page_size", size, "only_when_empty", opts.OnlyWhenEmpty, "dry_run", opts.DryRun)
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return outcome, err
		}
		listing, err := m.store.List(ctx, collection, interfaces.ListOptions{Page: page, PageSize: size})
		if err != nil {
			return outcome, fmt.Errorf("list %s page %d: %w", collection, page, err)
		}
		for _, record := range listing.Records {
			position++
			key := record.String(opts.Kind.KeyField())
			action, reason, err := m.processRecord(ctx, opts, onlyKey, record)
			logger := logging.WithRowContext(m.logger, position, key, string(action))
			entry := Entry{Kind: opts.Kind, Line: position, Key: key, Action: string(action), Reason: reason, DryRun: opts.DryRun}
			if err != nil {
				outcome.fail(position, key, err)
				logger.Error("bulkload.record.failed", "error", err)
				entry.Action, entry.Error = ActionFailed, err.Error()
			} else {
				outcome.record(position, key, action, reason)
				logger.Info("bulkload.record."+pastTense(action, ""), "reason", reason)
			}
			if opts.Recorder != nil {
				if err := opts.Recorder.Record(ctx, entry); err != nil {
					m.logger.Warn("bulkload.journal.record.failed", "line", position, "error", err)
				}
			}
		}
		if page >= listing.PageCount || len(listing.Records) == 0 {
			break
		}
	}
	m.logger.Info("bulkload.migrate.completed",
		"updated", outcome.Updated,
		"skipped", outcome.Skipped,
		"failed", outcome.Failed,
	)
	return outcome, nil
}

func (m *Migrator) processRecord(ctx context.Context, opts MigrationOptions, onlyKey string, record *interfaces.Record) (reconcile.Action, string, error) {
	if onlyKey != "" && record.String(opts.Kind.KeyField()) != onlyKey {
		return reconcile.ActionSkip, SkipFiltered, nil
	}
	legacy := strings.TrimSpace(record.String(opts.Kind.LegacyField()))
	if legacy == "" {
		return reconcile.ActionSkip, SkipNoLegacyText, nil
	}
	if opts.OnlyWhenEmpty && !blocks.Empty(record.Fields[normalize.BlocksField]) {
		return reconcile.ActionSkip, SkipHasBlocks, nil
	}
	converted := blocks.Convert(legacy)
	if len(converted) == 0 {
		return reconcile.ActionSkip, SkipNoLegacyText, nil
	}
	if existing, err := blocks.Decode(record.Fields[normalize.BlocksField]); err == nil && blocks.Equal(existing, converted) {
		return reconcile.ActionSkip, SkipUnchanged, nil
	}
	if _, err := m.patcher.Patch(ctx, opts.Kind, record, map[string]any{normalize.BlocksField: converted}); err != nil {
		return reconcile.ActionUpdate, "", err
	}
	return reconcile.ActionUpdate, "", nil
}
