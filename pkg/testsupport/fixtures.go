package testsupport

import (
	"os"

	json "github.com/goccy/go-json"
)

// LoadFixture reads a raw test input.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LoadGolden decodes an expected JSON document into v.
func LoadGolden(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
