package source

import (
	"errors"
	"fmt"
)

var (
	ErrUnterminatedQuote    = errors.New("source: unterminated quoted field")
	ErrNotArray             = errors.New("source: json input must be an array of objects")
	ErrNotObject            = errors.New("source: json array element must be an object")
	ErrUnsupportedExtension = errors.New("source: unsupported input extension")
)

// ParseError reports a malformed input file. It is fatal for the run.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	location := e.Path
	if location == "" {
		location = "input"
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse %s:%d: %v", location, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", location, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
