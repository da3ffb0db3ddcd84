package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

const (
	rootModule     = "bulkload"
	sourceModule   = "bulkload.source"
	storeModule    = "bulkload.store"
	batchModule    = "bulkload.batch"
	migrateModule  = "bulkload.migrate"
	journalModule  = "bulkload.journal"
	fieldRowLine   = "line"
	fieldRowKey    = "key"
	fieldRowAction = "action"
)

// ModuleLogger returns a logger scoped to module, or a no-op logger when no
// provider is configured. The module name is attached as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// SourceLogger is used by input loaders.
func SourceLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sourceModule)
}

// StoreLogger is used by the remote store client.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// BatchLogger is used by the import and sync runners.
func BatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, batchModule)
}

// MigrateLogger is used by the in-place block migration runner.
func MigrateLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, migrateModule)
}

// JournalLogger is used by the run journal.
func JournalLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, journalModule)
}

// WithRowContext annotates logger with the row line, natural key and action.
// Zero and empty values are left out.
func WithRowContext(logger interfaces.Logger, line int, key, action string) interfaces.Logger {
	fields := map[string]any{}
	if line > 0 {
		fields[fieldRowLine] = line
	}
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		fields[fieldRowKey] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldRowAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
