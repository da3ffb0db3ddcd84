package source

import (
	"io"
	"strings"
)

const (
	fieldDelimiter = ','
	quoteChar      = '"'
	byteOrderMark  = "\ufeff"
)

type record struct {
	line  int
	cells []string
}

// ReadCSV reads r fully and parses it with ParseCSV.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return ParseCSV(string(data))
}

// ParseCSV parses comma separated text with a header row. Each returned row
// carries the 1-based line on which its record began. Blank records are
// dropped, short records leave missing fields empty, and cells past the last
// header are ignored. When a header name repeats, the first column keeps it.
func ParseCSV(text string) ([]Row, error) {
	records, err := splitRecords(strings.TrimPrefix(text, byteOrderMark))
	if err != nil {
		return nil, err
	}

	var header []string
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if blank(rec.cells) {
			continue
		}
		if header == nil {
			header = headerNames(rec.cells)
			continue
		}
		fields := make(map[string]any, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if _, seen := fields[name]; seen {
				continue
			}
			value := ""
			if i < len(rec.cells) {
				value = rec.cells[i]
			}
			fields[name] = value
		}
		rows = append(rows, Row{Line: rec.line, Fields: fields})
	}
	return rows, nil
}

// splitRecords is the quoting state machine. \n, \r\n and a bare \r each end
// a record outside quotes and are kept verbatim inside them.
func splitRecords(text string) ([]record, error) {
	var (
		records    []record
		cells      []string
		field      strings.Builder
		quoted     bool
		inQuotes   bool
		line       = 1
		start      = 1
		quoteStart = 0
	)

	endField := func() {
		cells = append(cells, field.String())
		field.Reset()
		quoted = false
	}
	endRecord := func() {
		endField()
		records = append(records, record{line: start, cells: cells})
		cells = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inQuotes {
			switch c {
			case quoteChar:
				if i+1 < len(text) && text[i+1] == quoteChar {
					field.WriteByte(quoteChar)
					i++
					continue
				}
				inQuotes = false
			case '\r':
				field.WriteByte(c)
				if i+1 < len(text) && text[i+1] == '\n' {
					field.WriteByte('\n')
					i++
				}
				line++
			case '\n':
				field.WriteByte(c)
				line++
			default:
				field.WriteByte(c)
			}
			continue
		}

		switch c {
		case quoteChar:
			if field.Len() == 0 && !quoted {
				inQuotes, quoted = true, true
				quoteStart = line
				continue
			}
			field.WriteByte(c)
		case fieldDelimiter:
			endField()
		case '\r', '\n':
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRecord()
			line++
			start = line
		default:
			field.WriteByte(c)
		}
	}

	if inQuotes {
		return nil, &ParseError{Line: quoteStart, Err: ErrUnterminatedQuote}
	}
	if field.Len() > 0 || quoted || len(cells) > 0 {
		endRecord()
	}
	return records, nil
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func headerNames(cells []string) []string {
	names := make([]string, len(cells))
	for i, cell := range cells {
		names[i] = strings.TrimSpace(cell)
	}
	return names
}
