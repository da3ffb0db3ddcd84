package blocks_test

import (
	"path/filepath"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-cms-bulkload/internal/blocks"
	"github.com/goliatone/go-cms-bulkload/pkg/testsupport"
)

func TestConvertMatchesGolden(t *testing.T) {
	raw, err := testsupport.LoadFixture(filepath.Join("testdata", "legacy_article.txt"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}

	encoded, err := json.Marshal(blocks.Convert(string(raw)))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var want []map[string]any
	if err := testsupport.LoadGolden(filepath.Join("testdata", "legacy_article.golden.json"), &want); err != nil {
		t.Fatalf("load golden: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("converted blocks differ from golden\nwant %v\ngot  %v", want, got)
	}

	again := blocks.Convert(blocks.Render(blocks.Convert(string(raw))))
	if !reflect.DeepEqual(again, blocks.Convert(string(raw))) {
		t.Fatalf("render round trip changed the sequence")
	}
}
