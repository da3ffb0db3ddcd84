package source

import (
	"errors"
	"testing"
)

func TestParseJSONNumbersRowsFromOne(t *testing.T) {
	rows, err := ParseJSON([]byte(`[{"slug":"a","views":12},{"slug":"b","draft":true}]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(rows) != 2 || rows[0].Line != 1 || rows[1].Line != 2 {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if got := rows[0].String("views"); got != "12" {
		t.Fatalf("expected numeric field to format as 12, got %q", got)
	}
	if v, ok := rows[1].Value("draft"); !ok || v != true {
		t.Fatalf("expected draft=true, got %v", v)
	}
}

func TestParseJSONRejectsNonArrays(t *testing.T) {
	cases := map[string]struct {
		input string
		want  error
		line  int
	}{
		"object":  {input: `{"slug":"a"}`, want: ErrNotArray},
		"scalar":  {input: `[{"slug":"a"}, 3]`, want: ErrNotObject, line: 2},
		"invalid": {input: `[{"slug":`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.input))
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if perr.Line != tc.line {
				t.Fatalf("expected line %d, got %d", tc.line, perr.Line)
			}
		})
	}
}

func TestRowStringPrefersFirstNonEmpty(t *testing.T) {
	row := Row{Fields: map[string]any{"title": "  ", "pageName": " About ", "rank": 2.5}}
	if got := row.String("title", "pageName"); got != "About" {
		t.Fatalf("expected About, got %q", got)
	}
	if got := row.String("rank"); got != "2.5" {
		t.Fatalf("expected 2.5, got %q", got)
	}
	if row.String("missing") != "" {
		t.Fatalf("expected empty string for a missing field")
	}
}
