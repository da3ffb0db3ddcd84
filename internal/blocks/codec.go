package blocks

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

const componentKey = "__component"

var (
	ErrUnknownComponent = errors.New("blocks: unknown component")
	ErrMalformedBlock   = errors.New("blocks: malformed block")
)

var itemMarkerPattern = regexp.MustCompile(`^(?:[-*]|\d+\.)\s+`)

func (b SectionHeading) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Component Component `json:"__component"`
		Text      string    `json:"text"`
		Level     string    `json:"level"`
	}{ComponentSectionHeading, b.Text, b.Level})
}

func (b RichText) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Component Component `json:"__component"`
		Body      string    `json:"body"`
	}{ComponentRichText, b.Body})
}

// MarshalJSON joins items into one newline-delimited string, each line
// carrying a "- " prefix regardless of style.
func (b List) MarshalJSON() ([]byte, error) {
	lines := make([]string, len(b.Items))
	for i, item := range b.Items {
		lines[i] = "- " + item
	}
	return json.Marshal(struct {
		Component Component `json:"__component"`
		Style     ListStyle `json:"style"`
		Items     string    `json:"items"`
	}{ComponentList, b.Style, strings.Join(lines, "\n")})
}

func (b Callout) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Component Component `json:"__component"`
		Variant   string    `json:"variant,omitempty"`
		Title     string    `json:"title,omitempty"`
		Body      string    `json:"body"`
	}{ComponentCallout, b.Variant, b.Title, b.Body})
}

func (b CTA) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Component Component `json:"__component"`
		Label     string    `json:"label"`
		URL       string    `json:"url"`
		Style     string    `json:"style,omitempty"`
	}{ComponentCTA, b.Label, b.URL, b.Style})
}

func (b PullQuote) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Component   Component `json:"__component"`
		Quote       string    `json:"quote"`
		Attribution string    `json:"attribution,omitempty"`
	}{ComponentPullQuote, b.Quote, b.Attribution})
}

// UnmarshalJSON decodes an array of component objects.
func (s *Sequence) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBlock, err)
	}
	decoded, err := Decode(raw)
	if err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Decode converts already decoded JSON (an array of objects keyed by
// "__component") into a Sequence. nil decodes to an empty sequence.
func Decode(value any) (Sequence, error) {
	if value == nil {
		return nil, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an array, got %T", ErrMalformedBlock, value)
	}
	out := make(Sequence, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrMalformedBlock, i, item)
		}
		block, err := decodeBlock(fields)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, block)
	}
	return out, nil
}

func decodeBlock(fields map[string]any) (Block, error) {
	component, _ := fields[componentKey].(string)
	switch Component(component) {
	case ComponentSectionHeading:
		level := text(fields, "level")
		if level == "" {
			level = "h2"
		}
		return SectionHeading{Text: text(fields, "text"), Level: level}, nil
	case ComponentRichText:
		return RichText{Body: text(fields, "body")}, nil
	case ComponentList:
		style := ListStyle(text(fields, "style"))
		if style != ListOrdered {
			style = ListUnordered
		}
		return List{Style: style, Items: splitItems(fields["items"])}, nil
	case ComponentCallout:
		return Callout{Variant: text(fields, "variant"), Title: text(fields, "title"), Body: text(fields, "body")}, nil
	case ComponentCTA:
		return CTA{Label: text(fields, "label"), URL: text(fields, "url"), Style: text(fields, "style")}, nil
	case ComponentPullQuote:
		return PullQuote{Quote: text(fields, "quote"), Attribution: text(fields, "attribution")}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownComponent, component)
	}
}

func text(fields map[string]any, key string) string {
	value, _ := fields[key].(string)
	return strings.TrimSpace(value)
}

func splitItems(value any) []string {
	var lines []string
	switch v := value.(type) {
	case string:
		lines = strings.Split(v, "\n")
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				lines = append(lines, s)
			}
		}
	}
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		line = itemMarkerPattern.ReplaceAllString(strings.TrimSpace(line), "")
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}
