package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFiles are read best-effort, later files overriding earlier ones.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// ConfigFile is an optional YAML file applied over the defaults.
	ConfigFile string
	// EnvFiles defaults to DefaultEnvFiles. Missing files are ignored.
	EnvFiles []string
	// LookupEnv defaults to os.LookupEnv. Process values win over env files.
	LookupEnv func(string) (string, bool)
}

// Load layers defaults, the YAML file, env files and environment variables,
// in that order. The result is not validated; flags are usually applied on
// top before calling Validate.
func Load(opts LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	if path := strings.TrimSpace(opts.ConfigFile); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	files := opts.EnvFiles
	if files == nil {
		files = DefaultEnvFiles
	}
	fileValues, err := readEnvFiles(files)
	if err != nil {
		return Config{}, err
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) (string, bool) {
		if value, ok := lookup(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}

	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return configErr(path, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err))
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return configErr(path, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err))
	}
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	values := map[string]string{}
	for _, file := range files {
		read, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, configErr(file, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err))
		}
		for key, value := range read {
			values[key] = value
		}
	}
	return values, nil
}

func applyEnv(cfg *Config, env func(string) (string, bool)) error {
	str := func(key string, target *string) {
		if value, ok := env(key); ok {
			*target = strings.TrimSpace(value)
		}
	}
	var errs []error
	boolean := func(key string, target *bool) {
		value, ok := env(key)
		if !ok || strings.TrimSpace(value) == "" {
			return
		}
		parsed, err := parseBool(value)
		if err != nil {
			errs = append(errs, configErr(key, fmt.Errorf("%w: %q", ErrEnvValueInvalid, value)))
			return
		}
		*target = parsed
	}

	str("CMS_URL", &cfg.Store.BaseURL)
	str("CMS_TOKEN", &cfg.Store.Token)
	str("CMS_API_PREFIX", &cfg.Store.APIPrefix)
	str("UPSERT_MODE", &cfg.Load.Mode)
	str("ONLY_KEY", &cfg.Load.OnlyKey)
	str("STRUCTURED_DATA_SCHEMA", &cfg.Load.StructuredDataSchema)
	str("JOURNAL_PATH", &cfg.Journal.Path)
	str("LOG_PROVIDER", &cfg.Logging.Provider)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	boolean("DRY_RUN", &cfg.Load.DryRun)
	boolean("FORCE_PUBLISH", &cfg.Load.ForcePublish)
	boolean("FORCE_UNPUBLISH", &cfg.Load.ForceUnpublish)
	boolean("CONVERT_BLOCKS", &cfg.Load.ConvertBlocks)
	boolean("ONLY_WHEN_EMPTY", &cfg.Migrate.OnlyWhenEmpty)
	boolean("JOURNAL_CACHE", &cfg.Journal.Cache)

	if value, ok := env("DEFAULT_AUTHOR_ID"); ok && strings.TrimSpace(value) != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			errs = append(errs, configErr("DEFAULT_AUTHOR_ID", fmt.Errorf("%w: %q", ErrEnvValueInvalid, value)))
		} else {
			cfg.Load.DefaultAuthorID = id
		}
	}
	if value, ok := env("PAGE_SIZE"); ok && strings.TrimSpace(value) != "" {
		size, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, configErr("PAGE_SIZE", fmt.Errorf("%w: %q", ErrEnvValueInvalid, value)))
		} else {
			cfg.Migrate.PageSize = size
		}
	}
	if value, ok := env("RATE_LIMIT"); ok && strings.TrimSpace(value) != "" {
		limit, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			errs = append(errs, configErr("RATE_LIMIT", fmt.Errorf("%w: %q", ErrEnvValueInvalid, value)))
		} else {
			cfg.Store.RateLimit = limit
		}
	}
	if value, ok := env("HTTP_TIMEOUT"); ok && strings.TrimSpace(value) != "" {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			errs = append(errs, configErr("HTTP_TIMEOUT", fmt.Errorf("%w: %q", ErrEnvValueInvalid, value)))
		} else {
			cfg.Store.Timeout = timeout
		}
	}

	return errors.Join(errs...)
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, errors.New("not a boolean")
	}
}
