package source

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goliatone/go-cms-bulkload/internal/markdown"
)

// BodyField receives the markdown body of each document.
const BodyField = "body"

// ReadMarkdownFiles turns each markdown file into one row. Frontmatter keys
// become fields, the body lands in BodyField unless frontmatter already sets
// it. Files are read in the given order and numbered from 1.
func ReadMarkdownFiles(paths []string) ([]Row, error) {
	rows := make([]Row, 0, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		doc, err := markdown.ParseDocument(path, data)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		fields := doc.Meta
		if _, ok := fields[BodyField]; !ok {
			fields[BodyField] = string(doc.Body)
		}
		rows = append(rows, Row{Line: i + 1, Fields: fields})
	}
	return rows, nil
}

// MarkdownFiles lists markdown files below dir in lexical path order.
func MarkdownFiles(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() && isMarkdown(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, &ParseError{Path: dir, Err: err}
	}
	slices.Sort(paths)
	return paths, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
