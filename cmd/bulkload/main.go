// Command bulkload imports CSV, JSON and Markdown rows into a REST content
// store and migrates legacy text fields into structured blocks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-cms-bulkload/cmd/bulkload/internal/bootstrap"
	"github.com/goliatone/go-cms-bulkload/internal/runtimeconfig"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(os.Stdout, defaultEnv)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile  string
	baseURL     string
	dryRun      bool
	logProvider string
	logLevel    string
	logFormat   string
	journalPath string
}

// environment lets tests replace process state.
type environment struct {
	lookupEnv func(string) (string, bool)
	envFiles  []string
	build     func(context.Context, bootstrap.Options) (*bootstrap.App, error)
}

var defaultEnv = environment{
	lookupEnv: os.LookupEnv,
	build:     bootstrap.Build,
}

func newRootCmd(out io.Writer, env environment) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "bulkload",
		Short: "Idempotent bulk loader for REST content stores",
		Long: `bulkload reads pages, articles or redirects from CSV, JSON or Markdown
files and creates or updates the matching records in a remote content store.

Usage:
  bulkload import <pages|articles|redirects> <file> [flags]
  bulkload sync <pages|articles|redirects> <file> [flags]
  bulkload migrate-blocks <pages|articles> [flags]`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "YAML config file applied before environment variables")
	flags.StringVar(&opts.baseURL, "cms-url", "", "Remote store base URL (overrides CMS_URL)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Report decisions without writing to the remote store")
	flags.StringVar(&opts.logProvider, "log-provider", "", "Logging provider: gologger or console")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "", "go-logger format: console, json or pretty")
	flags.StringVar(&opts.journalPath, "journal", "", "SQLite file recording every run and row outcome")

	root.AddCommand(
		newImportCmd(opts, env),
		newSyncCmd(opts, env),
		newMigrateBlocksCmd(opts, env),
	)
	return root
}

// loadConfig layers file and environment values, then applies the flags the
// user actually set.
func loadConfig(cmd *cobra.Command, opts *globalOptions, env environment) (runtimeconfig.Config, error) {
	cfg, err := runtimeconfig.Load(runtimeconfig.LoadOptions{
		ConfigFile: opts.configFile,
		EnvFiles:   env.envFiles,
		LookupEnv:  env.lookupEnv,
	})
	if err != nil {
		return runtimeconfig.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("cms-url") {
		cfg.Store.BaseURL = opts.baseURL
	}
	if flags.Changed("dry-run") {
		cfg.Load.DryRun = opts.dryRun
	}
	if flags.Changed("log-provider") {
		cfg.Logging.Provider = opts.logProvider
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = opts.logFormat
	}
	if flags.Changed("journal") {
		cfg.Journal.Path = opts.journalPath
	}
	return cfg, nil
}
