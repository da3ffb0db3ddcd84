package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-cms-bulkload/internal/logging"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestConsoleLoggerFormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(Options{Writer: &buf, Clock: fixedClock, MinLevel: LevelDebug})

	logger := logging.WithFields(provider.GetLogger("bulkload.batch"), map[string]any{"line": 4})
	logger.Info("bulkload.row.failed", "error", errors.New("missing title"), "key", "/about")

	want := `2024-03-01T12:00:00Z INFO bulkload.row.failed error="missing title" key=/about line=4 logger=bulkload.batch` + "\n"
	if buf.String() != want {
		t.Fatalf("unexpected output\nwant %q\n got %q", want, buf.String())
	}
}

func TestConsoleLoggerHonoursMinLevel(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(Options{Writer: &buf, Clock: fixedClock, MinLevel: LevelWarn})

	logger := provider.GetLogger("x")
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsoleLoggerMergesContextFields(t *testing.T) {
	var buf bytes.Buffer
	provider := NewProvider(Options{Writer: &buf, Clock: fixedClock})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"run_id": "r1"})
	provider.GetLogger("x").WithContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), "run_id=r1") {
		t.Fatalf("expected context field, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warning") != LevelWarn || ParseLevel("ERROR") != LevelError || ParseLevel("nope") != LevelInfo {
		t.Fatalf("unexpected ParseLevel results")
	}
}
