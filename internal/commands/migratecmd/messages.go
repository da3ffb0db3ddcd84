package migratecmd

import validation "github.com/go-ozzo/ozzo-validation/v4"

const migrateBlocksMessageType = "bulkload.migrate_blocks"

// MigrateBlocksCommand regenerates the blocks field of every remote record in
// a collection from its legacy text field.
type MigrateBlocksCommand struct {
	// Kind is pages or articles; redirects carry no legacy text.
	Kind string `json:"kind"`
	// OnlyWhenEmpty skips records that already hold blocks.
	OnlyWhenEmpty bool `json:"only_when_empty"`
	// PageSize is the listing page size, 1 to 100. Zero uses the default.
	PageSize int    `json:"page_size,omitempty"`
	OnlyKey  string `json:"only_key,omitempty"`
	DryRun   bool   `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (MigrateBlocksCommand) Type() string { return migrateBlocksMessageType }

// Validate checks the kind and page size bounds.
func (cmd MigrateBlocksCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Kind, validation.Required, validation.In("pages", "articles")),
		validation.Field(&cmd.PageSize, validation.Min(1), validation.Max(100)),
	)
}
