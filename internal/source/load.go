package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-cms-bulkload/internal/logging"
	"github.com/goliatone/go-cms-bulkload/pkg/interfaces"
)

// Format names the kind of input a path was loaded as.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Load reads path and returns its rows. The format follows the extension:
// .csv, .json, .md/.markdown, or a directory of markdown files. Any failure
// is a *ParseError.
func Load(path string, logger interfaces.Logger) ([]Row, Format, error) {
	rows, format, err := load(path)
	if err != nil {
		return nil, format, err
	}
	logging.Ensure(logger).Info("bulkload.source.loaded", "source", path, "format", string(format), "rows", len(rows))
	return rows, format, nil
}

func load(path string) ([]Row, Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", &ParseError{Path: path, Err: err}
	}

	if info.IsDir() {
		paths, err := MarkdownFiles(path)
		if err != nil {
			return nil, "", err
		}
		rows, err := ReadMarkdownFiles(paths)
		return rows, FormatMarkdown, err
	}

	var (
		rows   []Row
		format Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		format = FormatCSV
		rows, err = readFile(path, func(data []byte) ([]Row, error) { return ParseCSV(string(data)) })
	case ".json":
		format = FormatJSON
		rows, err = readFile(path, ParseJSON)
	case ".md", ".markdown":
		format = FormatMarkdown
		rows, err = ReadMarkdownFiles([]string{path})
	default:
		return nil, "", &ParseError{Path: path, Err: fmt.Errorf("%w %q", ErrUnsupportedExtension, ext)}
	}
	if err != nil {
		return nil, format, err
	}
	return rows, format, nil
}

func readFile(path string, parse func([]byte) ([]Row, error)) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	rows, err := parse(data)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) && perr.Path == "" {
			perr.Path = path
		}
		return nil, err
	}
	return rows, nil
}
