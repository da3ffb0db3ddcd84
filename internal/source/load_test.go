package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "pages.csv", "routePath,pageName\n/about,About\n")
	jsonPath := writeFile(t, dir, "articles.JSON", `[{"slug":"hello"}]`)

	rows, format, err := Load(csvPath, nil)
	if err != nil || format != FormatCSV || len(rows) != 1 {
		t.Fatalf("csv: rows=%v format=%s err=%v", rows, format, err)
	}
	rows, format, err = Load(jsonPath, nil)
	if err != nil || format != FormatJSON || rows[0].Fields["slug"] != "hello" {
		t.Fatalf("json: rows=%v format=%s err=%v", rows, format, err)
	}
}

func TestLoadMarkdownDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b/second.md", "---\nslug: second\n---\nSecond body\n")
	writeFile(t, dir, "a/first.markdown", "---\nslug: first\ntags:\n  - go\n---\nFirst body\n")
	writeFile(t, dir, "notes.txt", "ignored")

	rows, format, err := Load(dir, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if format != FormatMarkdown || len(rows) != 2 {
		t.Fatalf("expected two markdown rows, got %d (%s)", len(rows), format)
	}
	if rows[0].Fields["slug"] != "first" || rows[0].Line != 1 || rows[1].Line != 2 {
		t.Fatalf("expected lexical order, got %+v", rows)
	}
	if body, _ := rows[0].Fields[BodyField].(string); strings.TrimSpace(body) != "First body" {
		t.Fatalf("unexpected body %q", rows[0].Fields[BodyField])
	}
}

func TestLoadErrorsCarryPath(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "broken.csv", "a\n\"open\n")
	other := writeFile(t, dir, "data.xml", "<x/>")

	_, _, err := Load(bad, nil)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Path != bad || perr.Line != 2 {
		t.Fatalf("expected ParseError for %s line 2, got %v", bad, err)
	}

	_, _, err = Load(other, nil)
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Fatalf("expected unsupported extension, got %v", err)
	}

	_, _, err = Load(filepath.Join(dir, "missing.csv"), nil)
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError for missing file, got %v", err)
	}
}
