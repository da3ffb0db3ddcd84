package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cms-bulkload/cmd/bulkload/internal/bootstrap"
	"github.com/goliatone/go-cms-bulkload/internal/commands"
	"github.com/goliatone/go-cms-bulkload/internal/commands/loadcmd"
	"github.com/goliatone/go-cms-bulkload/internal/commands/migratecmd"
	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/runtimeconfig"
)

// loadFlags are the flags shared by import and sync.
type loadFlags struct {
	mode          string
	onlyKey       string
	authorID      int64
	convertBlocks bool
	schema        string
	publish       bool
}

func (f *loadFlags) register(cmd *cobra.Command, modeHelp string) {
	cmd.Flags().StringVar(&f.mode, "mode", "", modeHelp)
	cmd.Flags().StringVar(&f.onlyKey, "only", "", "Process only the row with this natural key")
	cmd.Flags().Int64Var(&f.authorID, "default-author", 0, "Author id used when an article row has none")
	cmd.Flags().BoolVar(&f.convertBlocks, "convert-blocks", true, "Derive blocks from legacy text when a row has none")
	cmd.Flags().StringVar(&f.schema, "schema", "", "JSON schema file for structuredData values")
	cmd.Flags().BoolVar(&f.publish, "force-publish", false, "Stamp every written record as published now")
}

func (f *loadFlags) apply(cmd *cobra.Command, cfg *runtimeconfig.Config) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Load.Mode = f.mode
	}
	if flags.Changed("only") {
		cfg.Load.OnlyKey = f.onlyKey
	}
	if flags.Changed("default-author") {
		cfg.Load.DefaultAuthorID = f.authorID
	}
	if flags.Changed("convert-blocks") {
		cfg.Load.ConvertBlocks = f.convertBlocks
	}
	if flags.Changed("schema") {
		cfg.Load.StructuredDataSchema = f.schema
	}
	if flags.Changed("force-publish") {
		cfg.Load.ForcePublish = f.publish
	}
}

func newImportCmd(global *globalOptions, env environment) *cobra.Command {
	var (
		flags     loadFlags
		unpublish bool
	)

	cmd := &cobra.Command{
		Use:   "import <pages|articles|redirects> <file>",
		Short: "Create missing records and update or skip existing ones",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, env)
			if err != nil {
				return commands.WrapConfigError(err)
			}
			flags.apply(cmd, &cfg)
			if cmd.Flags().Changed("force-unpublish") {
				cfg.Load.ForceUnpublish = unpublish
			}

			app, err := env.build(cmd.Context(), bootstrap.Options{Config: cfg, LogWriter: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer app.Close()

			handler := loadcmd.NewImportHandler(loadcmd.Dependencies{
				Store:        app.Store,
				Journal:      app.Journal(),
				Output:       cmd.OutOrStdout(),
				Logger:       logging.BatchLogger(app.LoggerProvider),
				SourceLogger: logging.SourceLogger(app.LoggerProvider),
			})
			return handler.Execute(cmd.Context(), loadcmd.ImportCommand{
				Kind:            strings.ToLower(args[0]),
				Source:          args[1],
				Mode:            cfg.Load.ResolvedMode("update"),
				DryRun:          cfg.Load.DryRun,
				ForcePublish:    cfg.Load.ForcePublish,
				ForceUnpublish:  cfg.Load.ForceUnpublish,
				DefaultAuthorID: cfg.Load.DefaultAuthorID,
				OnlyKey:         cfg.Load.OnlyKey,
				ConvertBlocks:   cfg.Load.ConvertBlocks,
				SchemaPath:      cfg.Load.StructuredDataSchema,
			})
		},
	}
	flags.register(cmd, "Existing records: update (default) or skip")
	cmd.Flags().BoolVar(&unpublish, "force-unpublish", false, "Clear the published timestamp of every written record")
	return cmd
}

func newSyncCmd(global *globalOptions, env environment) *cobra.Command {
	var flags loadFlags

	cmd := &cobra.Command{
		Use:   "sync <pages|articles|redirects> <file>",
		Short: "Update existing records and create or skip missing ones",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, env)
			if err != nil {
				return commands.WrapConfigError(err)
			}
			flags.apply(cmd, &cfg)

			app, err := env.build(cmd.Context(), bootstrap.Options{Config: cfg, LogWriter: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer app.Close()

			handler := loadcmd.NewSyncHandler(loadcmd.Dependencies{
				Store:        app.Store,
				Journal:      app.Journal(),
				Output:       cmd.OutOrStdout(),
				Logger:       logging.BatchLogger(app.LoggerProvider),
				SourceLogger: logging.SourceLogger(app.LoggerProvider),
			})
			return handler.Execute(cmd.Context(), loadcmd.SyncCommand{
				Kind:            strings.ToLower(args[0]),
				Source:          args[1],
				Mode:            cfg.Load.ResolvedMode("create"),
				DryRun:          cfg.Load.DryRun,
				ForcePublish:    cfg.Load.ForcePublish,
				DefaultAuthorID: cfg.Load.DefaultAuthorID,
				OnlyKey:         cfg.Load.OnlyKey,
				ConvertBlocks:   cfg.Load.ConvertBlocks,
				SchemaPath:      cfg.Load.StructuredDataSchema,
			})
		},
	}
	flags.register(cmd, "Missing records: create (default) or skip")
	return cmd
}

func newMigrateBlocksCmd(global *globalOptions, env environment) *cobra.Command {
	var (
		onlyWhenEmpty bool
		pageSize      int
		onlyKey       string
	)

	cmd := &cobra.Command{
		Use:   "migrate-blocks <pages|articles>",
		Short: "Regenerate blocks of remote records from their legacy text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global, env)
			if err != nil {
				return commands.WrapConfigError(err)
			}
			if cmd.Flags().Changed("only-when-empty") {
				cfg.Migrate.OnlyWhenEmpty = onlyWhenEmpty
			}
			if cmd.Flags().Changed("page-size") {
				cfg.Migrate.PageSize = pageSize
			}
			if cmd.Flags().Changed("only") {
				cfg.Load.OnlyKey = onlyKey
			}

			app, err := env.build(cmd.Context(), bootstrap.Options{Config: cfg, LogWriter: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer app.Close()

			handler := migratecmd.NewMigrateBlocksHandler(migratecmd.Dependencies{
				Store:   app.Store,
				Journal: app.Journal(),
				Output:  cmd.OutOrStdout(),
				Logger:  logging.MigrateLogger(app.LoggerProvider),
			})
			return handler.Execute(cmd.Context(), migratecmd.MigrateBlocksCommand{
				Kind:          strings.ToLower(args[0]),
				OnlyWhenEmpty: cfg.Migrate.OnlyWhenEmpty,
				PageSize:      cfg.Migrate.PageSize,
				OnlyKey:       cfg.Load.OnlyKey,
				DryRun:        cfg.Load.DryRun,
			})
		},
	}
	cmd.Flags().BoolVar(&onlyWhenEmpty, "only-when-empty", true, "Skip records that already have blocks")
	cmd.Flags().IntVar(&pageSize, "page-size", 25, "Listing page size (1-100)")
	cmd.Flags().StringVar(&onlyKey, "only", "", "Process only the record with this natural key")
	return cmd
}
