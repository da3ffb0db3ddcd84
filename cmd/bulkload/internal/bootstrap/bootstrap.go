package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"

	repocache "github.com/goliatone/go-repository-cache/cache"

	"github.com/goliatone/go-cms-bulkload/internal/commands"
	"github.com/goliatone/go-cms-bulkload/internal/journal"
	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/internal/logging/console"
	"github.com/goliatone/go-cms-bulkload/internal/logging/gologger"
	"github.com/goliatone/go-cms-bulkload/internal/runtimeconfig"
	"github.com/goliatone/go-cms-bulkload/internal/store"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// Options captures what the CLI hands to Build.
type Options struct {
	Config runtimeconfig.Config
	// LogWriter receives console provider output. Defaults to stderr.
	LogWriter io.Writer
	// LoggerProvider overrides the provider selected by Config.Logging.
	LoggerProvider interfaces.LoggerProvider
	// Store overrides the REST client, mostly for tests.
	Store interfaces.RemoteStore
}

// App holds the wired collaborators for one CLI invocation.
type App struct {
	Config         runtimeconfig.Config
	LoggerProvider interfaces.LoggerProvider
	Store          interfaces.RemoteStore
	journal        *journal.Journal
}

// Build validates the configuration and wires the store, logger and
// optional journal.
func Build(ctx context.Context, opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, commands.WrapConfigError(err)
	}

	provider := opts.LoggerProvider
	if provider == nil {
		var err error
		if provider, err = NewLoggerProvider(cfg.Logging, opts.LogWriter); err != nil {
			return nil, commands.WrapConfigError(err)
		}
	}

	app := &App{Config: cfg, LoggerProvider: provider, Store: opts.Store}
	if app.Store == nil {
		client, err := store.NewClient(store.Config{
			BaseURL:   cfg.Store.BaseURL,
			Token:     cfg.Store.Token,
			APIPrefix: cfg.Store.APIPrefix,
			Endpoints: cfg.Store.Endpoints,
			Timeout:   cfg.Store.Timeout,
			RateLimit: cfg.Store.RateLimit,
		}, logging.StoreLogger(provider))
		if err != nil {
			return nil, commands.WrapConfigError(err)
		}
		app.Store = client
	}

	if path := strings.TrimSpace(cfg.Journal.Path); path != "" {
		journalOpts := journal.Options{Logger: logging.JournalLogger(provider)}
		if cfg.Journal.Cache {
			cacheCfg := repocache.DefaultConfig()
			cacheService, err := repocache.NewCacheService(cacheCfg)
			if err != nil {
				return nil, fmt.Errorf("journal cache: %w", err)
			}
			journalOpts.Cache = cacheService
			journalOpts.KeySerializer = repocache.NewDefaultKeySerializer()
		}
		j, err := journal.Open(ctx, path, journalOpts)
		if err != nil {
			return nil, err
		}
		app.journal = j
	}
	return app, nil
}

// Journal returns the run journal, or a nil interface when none is configured.
func (a *App) Journal() commands.RunJournal {
	if a.journal == nil {
		return nil
	}
	return a.journal
}

// Close releases the journal database.
func (a *App) Close() error {
	if a.journal == nil {
		return nil
	}
	return a.journal.Close()
}

// NewLoggerProvider selects the go-logger or console provider.
func NewLoggerProvider(cfg runtimeconfig.LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "console":
		return console.NewProvider(console.Options{
			Writer:   w,
			MinLevel: console.ParseLevel(cfg.Level),
		}), nil
	case "", "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
