package loadcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	importMessageType = "bulkload.import"
	syncMessageType   = "bulkload.sync"
)

var kinds = []any{"pages", "articles", "redirects"}

// ImportCommand seeds a collection from an input file. Existing records are
// updated or skipped according to Mode; missing records are created.
type ImportCommand struct {
	// Kind selects the collection schema: pages, articles or redirects.
	Kind string `json:"kind"`
	// Source is a CSV, JSON or Markdown file, or a directory of Markdown files.
	Source string `json:"source"`
	// Mode is "update" (default) or "skip".
	Mode           string `json:"mode,omitempty"`
	DryRun         bool   `json:"dry_run,omitempty"`
	ForcePublish   bool   `json:"force_publish,omitempty"`
	ForceUnpublish bool   `json:"force_unpublish,omitempty"`
	// DefaultAuthorID fills the article author when a row has none.
	DefaultAuthorID int64  `json:"default_author_id,omitempty"`
	OnlyKey         string `json:"only_key,omitempty"`
	ConvertBlocks   bool   `json:"convert_blocks,omitempty"`
	// SchemaPath overrides the structured data JSON schema.
	SchemaPath string `json:"schema_path,omitempty"`
}

// Type implements command.Message.
func (ImportCommand) Type() string { return importMessageType }

// Validate ensures kind, source and mode are usable before any row runs.
func (cmd ImportCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&cmd.Source, validation.Required, validation.By(notBlank("source"))),
		validation.Field(&cmd.Mode, validation.In("update", "skip")),
		validation.Field(&cmd.DefaultAuthorID, validation.Min(int64(0))),
	)
}

// SyncCommand aligns a collection with an input file. Existing records are
// always updated; missing ones are created when Mode is "create" (default).
type SyncCommand struct {
	Kind            string `json:"kind"`
	Source          string `json:"source"`
	Mode            string `json:"mode,omitempty"`
	DryRun          bool   `json:"dry_run,omitempty"`
	ForcePublish    bool   `json:"force_publish,omitempty"`
	DefaultAuthorID int64  `json:"default_author_id,omitempty"`
	OnlyKey         string `json:"only_key,omitempty"`
	ConvertBlocks   bool   `json:"convert_blocks,omitempty"`
	SchemaPath      string `json:"schema_path,omitempty"`
}

// Type implements command.Message.
func (SyncCommand) Type() string { return syncMessageType }

// Validate ensures kind, source and mode are usable before any row runs.
func (cmd SyncCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.In(kinds...)),
		validation.Field(&cmd.Source, validation.Required, validation.By(notBlank("source"))),
		validation.Field(&cmd.Mode, validation.In("skip", "create")),
		validation.Field(&cmd.DefaultAuthorID, validation.Min(int64(0))),
	)
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return validation.NewError("bulkload."+field+"_required", field+" is required")
		}
		return nil
	}
}
