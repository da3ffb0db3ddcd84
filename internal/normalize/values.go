package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseBool reads the yes/no vocabulary case-insensitively. Anything outside
// it, including nil, returns def.
func ParseBool(value any, def bool) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		if v == 1 {
			return true
		}
		if v == 0 {
			return false
		}
		return def
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y":
			return true
		case "false", "0", "no", "n":
			return false
		}
	}
	return def
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate coerces common date spellings to YYYY-MM-DD.
func ParseDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrInvalidDate, value)
}

// ParseID coerces a positive integer id from a JSON number or a string.
func ParseID(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		if v > 0 && v == math.Trunc(v) && v < math.MaxInt64 {
			return int64(v), nil
		}
	case int:
		if v > 0 {
			return int64(v), nil
		}
	case int64:
		if v > 0 {
			return v, nil
		}
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && parsed > 0 {
			return parsed, nil
		}
	}
	return 0, fmt.Errorf("%w %v", ErrInvalidID, value)
}

// SplitList accepts an array or a comma/pipe delimited string and returns the
// trimmed non-empty entries in order.
func SplitList(value any) []string {
	var parts []string
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if item == nil {
				continue
			}
			parts = append(parts, fmt.Sprint(item))
		}
	case []string:
		parts = v
	case string:
		parts = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '|' })
	}

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
