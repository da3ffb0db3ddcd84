package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Run is one execution of an import, sync or migration.
type Run struct {
	bun.BaseModel `bun:"table:bulkload_runs,alias:br"`

	ID         uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Operation  string     `bun:"operation,notnull" json:"operation"`
	Kind       string     `bun:"kind,notnull" json:"kind"`
	Source     string     `bun:"source" json:"source,omitempty"`
	DryRun     bool       `bun:"dry_run,notnull,default:false" json:"dry_run"`
	Created    int        `bun:"created,notnull,default:0" json:"created"`
	Updated    int        `bun:"updated,notnull,default:0" json:"updated"`
	Skipped    int        `bun:"skipped,notnull,default:0" json:"skipped"`
	Failed     int        `bun:"failed,notnull,default:0" json:"failed"`
	StartedAt  time.Time  `bun:"started_at,notnull" json:"started_at"`
	FinishedAt *time.Time `bun:"finished_at,nullzero" json:"finished_at,omitempty"`
}

// Entry is the terminal state of one row within a run.
type Entry struct {
	bun.BaseModel `bun:"table:bulkload_entries,alias:be"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	RunID     uuid.UUID `bun:"run_id,notnull,type:uuid" json:"run_id"`
	Line      int       `bun:"line,notnull" json:"line"`
	Key       string    `bun:"natural_key" json:"key,omitempty"`
	Action    string    `bun:"action,notnull" json:"action"`
	Reason    string    `bun:"reason" json:"reason,omitempty"`
	Error     string    `bun:"error" json:"error,omitempty"`
	DryRun    bool      `bun:"dry_run,notnull,default:false" json:"dry_run"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
