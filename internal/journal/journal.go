// Package journal keeps an optional SQLite ledger of runs and their row
// outcomes so repeated loads can be audited.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-cms-bulkload/internal/batch"
	"github.com/goliatone/go-cms-bulkload/internal/identity"
	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

var (
	ErrNoActiveRun = errors.New("journal: no active run")
	ErrRunNotFound = errors.New("journal: run not found")
)

// Options configures a Journal.
type Options struct {
	Cache         cache.CacheService
	KeySerializer cache.KeySerializer
	Logger        interfaces.Logger
	Now           func() time.Time
}

// Journal records runs and entries. It implements batch.Recorder once a run
// has been started.
type Journal struct {
	db      *bun.DB
	runs    repository.Repository[*Run]
	entries repository.Repository[*Entry]
	logger  interfaces.Logger
	now     func() time.Time
	run     *Run
	owned   *sql.DB
}

var _ batch.Recorder = (*Journal)(nil)

// Open opens (or creates) the SQLite database at path and prepares its
// tables.
func Open(ctx context.Context, path string, opts Options) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("journal: empty database path")
	}
	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)

	j, err := New(ctx, db, opts)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	j.owned = sqlDB
	return j, nil
}

// New uses an existing bun database and creates the journal tables if
// needed.
func New(ctx context.Context, db *bun.DB, opts Options) (*Journal, error) {
	for _, model := range []any{(*Run)(nil), (*Entry)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return nil, fmt.Errorf("journal: create table: %w", err)
		}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Journal{
		db:      db,
		runs:    wrapWithCache(NewRunRepository(db), opts.Cache, opts.KeySerializer),
		entries: NewEntryRepository(db),
		logger:  logging.Ensure(opts.Logger),
		now:     opts.Now,
	}, nil
}

// Start begins a new run; subsequent Record calls attach to it.
func (j *Journal) Start(ctx context.Context, operation, kind, source string, dryRun bool) (*Run, error) {
	run := &Run{
		ID:        uuid.New(),
		Operation: operation,
		Kind:      kind,
		Source:    source,
		DryRun:    dryRun,
		StartedAt: j.now().UTC(),
	}
	created, err := j.runs.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("journal: start run: %w", err)
	}
	j.run = created
	j.logger.Debug("bulkload.journal.run.started", "run_id", created.ID.String(), "operation", operation)
	return created, nil
}

// Record stores one row entry under the active run.
func (j *Journal) Record(ctx context.Context, entry batch.Entry) error {
	if j.run == nil {
		return ErrNoActiveRun
	}
	record := &Entry{
		ID:        identity.EntryUUID(j.run.ID, string(entry.Kind), entry.Key, entry.Line),
		RunID:     j.run.ID,
		Line:      entry.Line,
		Key:       entry.Key,
		Action:    entry.Action,
		Reason:    entry.Reason,
		Error:     entry.Error,
		DryRun:    entry.DryRun,
		CreatedAt: j.now().UTC(),
	}
	if _, err := j.entries.Create(ctx, record); err != nil {
		return fmt.Errorf("journal: record line %d: %w", entry.Line, err)
	}
	return nil
}

// Finish stores the final counters on the active run.
func (j *Journal) Finish(ctx context.Context, outcome *batch.Outcome) (*Run, error) {
	if j.run == nil {
		return nil, ErrNoActiveRun
	}
	finished := j.now().UTC()
	j.run.FinishedAt = &finished
	if outcome != nil {
		j.run.Created = outcome.Created
		j.run.Updated = outcome.Updated
		j.run.Skipped = outcome.Skipped
		j.run.Failed = outcome.Failed
	}
	updated, err := j.runs.Update(ctx, j.run)
	if err != nil {
		return nil, fmt.Errorf("journal: finish run: %w", err)
	}
	j.run = nil
	return updated, nil
}

// GetRun loads a run by id.
func (j *Journal) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run, err := j.runs.GetByID(ctx, id.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("journal: get run: %w", err)
	}
	return run, nil
}

// Entries lists the entries of a run in line order.
func (j *Journal) Entries(ctx context.Context, runID uuid.UUID) ([]*Entry, error) {
	records, _, err := j.entries.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.run_id = ?", runID).
				OrderExpr("?TableAlias.line ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("journal: list entries: %w", err)
	}
	return records, nil
}

// Close releases the database when the journal opened it.
func (j *Journal) Close() error {
	if j.owned == nil {
		return nil
	}
	return j.owned.Close()
}
