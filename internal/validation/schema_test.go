package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidatorAcceptsObjectsAndArrays(t *testing.T) {
	v, err := NewValidator(nil)
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	accepted := []any{
		map[string]any{"@type": "Organization"},
		[]any{map[string]any{"@type": "WebPage"}, map[string]any{}},
	}
	for _, value := range accepted {
		if err := v.Validate(value); err != nil {
			t.Fatalf("expected %v to pass, got %v", value, err)
		}
	}

	rejected := []any{"text", 12.0, []any{"a"}}
	for _, value := range rejected {
		err := v.Validate(value)
		if !errors.Is(err, ErrSchemaValidation) {
			t.Fatalf("expected %v to fail validation, got %v", value, err)
		}
		if len(Issues(err)) == 0 {
			t.Fatalf("expected issues for %v", value)
		}
	}
}

func TestLoadValidatorFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	schema := `{"type":"object","required":["@context"]}`
	if err := os.WriteFile(path, []byte(schema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	v, err := LoadValidator(path)
	if err != nil {
		t.Fatalf("LoadValidator: %v", err)
	}
	if err := v.Validate(map[string]any{"@context": "https://schema.org"}); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}
	if err := v.Validate(map[string]any{}); err == nil {
		t.Fatalf("expected missing @context to fail")
	}
}

func TestLoadValidatorRejectsBadSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte(`{"type": 12}`), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	if _, err := LoadValidator(path); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
	if _, err := LoadValidator(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid for a missing file, got %v", err)
	}
}
