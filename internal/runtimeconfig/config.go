package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrBaseURLRequired    = errors.New("config: store base url is required")
	ErrTokenRequired      = errors.New("config: store token is required")
	ErrModeInvalid        = errors.New("config: upsert mode is invalid")
	ErrPageSizeOutOfRange = errors.New("config: page size must be between 1 and 100")
	ErrAuthorIDInvalid    = errors.New("config: default author id must be zero or positive")
	ErrRateLimitInvalid   = errors.New("config: rate limit must be zero or positive")
	ErrTimeoutInvalid     = errors.New("config: http timeout must be zero or positive")
	ErrEnvValueInvalid    = errors.New("config: environment value is invalid")
	ErrConfigFileInvalid  = errors.New("config: config file is invalid")
)

var (
	ErrLoggingProviderRequired = errors.New("config: logging provider is required")
	ErrLoggingProviderUnknown  = errors.New("config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("config: logging format is invalid")
)

const (
	MinPageSize = 1
	MaxPageSize = 100
)

// ConfigError names the option that failed validation or parsing.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Field)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(field string, err error) error {
	return &ConfigError{Field: field, Err: err}
}

// Config aggregates every option the loader reads.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Load    LoadConfig    `yaml:"load"`
	Migrate MigrateConfig `yaml:"migrate"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig locates the remote content store.
type StoreConfig struct {
	BaseURL   string            `yaml:"base_url"`
	Token     string            `yaml:"token"`
	APIPrefix string            `yaml:"api_prefix"`
	Endpoints map[string]string `yaml:"endpoints"`
	Timeout   time.Duration     `yaml:"timeout"`
	RateLimit float64           `yaml:"rate_limit"`
}

// LoadConfig drives import and sync runs.
type LoadConfig struct {
	// Mode is the upsert mode. Empty selects the operation default.
	Mode                 string `yaml:"mode"`
	DryRun               bool   `yaml:"dry_run"`
	ForcePublish         bool   `yaml:"force_publish"`
	ForceUnpublish       bool   `yaml:"force_unpublish"`
	DefaultAuthorID      int64  `yaml:"default_author_id"`
	OnlyKey              string `yaml:"only_key"`
	ConvertBlocks        bool   `yaml:"convert_blocks"`
	StructuredDataSchema string `yaml:"structured_data_schema"`
}

// MigrateConfig drives in-place block migration.
type MigrateConfig struct {
	OnlyWhenEmpty bool `yaml:"only_when_empty"`
	PageSize      int  `yaml:"page_size"`
}

// JournalConfig enables the SQLite run journal when Path is set.
type JournalConfig struct {
	Path  string `yaml:"path"`
	Cache bool   `yaml:"cache"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns the defaults applied before any file or environment.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			APIPrefix: "/api",
			Endpoints: map[string]string{},
		},
		Load: LoadConfig{
			ConvertBlocks: true,
		},
		Migrate: MigrateConfig{
			OnlyWhenEmpty: true,
			PageSize:      25,
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
	}
}

// Validate performs the checks that must pass before any row is processed.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Store.BaseURL) == "" {
		return configErr("CMS_URL", ErrBaseURLRequired)
	}
	if strings.TrimSpace(cfg.Store.Token) == "" {
		return configErr("CMS_TOKEN", ErrTokenRequired)
	}
	if mode := strings.ToLower(strings.TrimSpace(cfg.Load.Mode)); mode != "" && !isSupportedMode(mode) {
		return configErr("UPSERT_MODE", fmt.Errorf("%w: %s", ErrModeInvalid, cfg.Load.Mode))
	}
	if cfg.Migrate.PageSize < MinPageSize || cfg.Migrate.PageSize > MaxPageSize {
		return configErr("PAGE_SIZE", fmt.Errorf("%w: %d", ErrPageSizeOutOfRange, cfg.Migrate.PageSize))
	}
	if cfg.Load.DefaultAuthorID < 0 {
		return configErr("DEFAULT_AUTHOR_ID", ErrAuthorIDInvalid)
	}
	if cfg.Store.RateLimit < 0 {
		return configErr("RATE_LIMIT", ErrRateLimitInvalid)
	}
	if cfg.Store.Timeout < 0 {
		return configErr("HTTP_TIMEOUT", ErrTimeoutInvalid)
	}
	return cfg.Logging.Validate()
}

// Validate checks the logging provider options.
func (cfg LoggingConfig) Validate() error {
	provider := normalizeProvider(cfg.Provider)
	if provider == "" {
		return configErr("LOG_PROVIDER", ErrLoggingProviderRequired)
	}
	if !isSupportedProvider(provider) {
		return configErr("LOG_PROVIDER", fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider))
	}
	if level := strings.TrimSpace(cfg.Level); level != "" && !isSupportedLevel(level) {
		return configErr("LOG_LEVEL", fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level))
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Format); format != "" && !isSupportedFormat(format) {
			return configErr("LOG_FORMAT", fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format))
		}
	}
	return nil
}

// ResolvedMode returns the configured mode or fallback when none is set.
func (cfg LoadConfig) ResolvedMode(fallback string) string {
	if mode := strings.ToLower(strings.TrimSpace(cfg.Mode)); mode != "" {
		return mode
	}
	return fallback
}

func isSupportedMode(mode string) bool {
	switch mode {
	case "update", "skip", "create":
		return true
	default:
		return false
	}
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
