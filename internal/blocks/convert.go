package blocks

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	blankLinePattern = regexp.MustCompile(`\n{2,}`)
	headingPattern   = regexp.MustCompile(`^(#{1,4})\s+(.+)$`)
	bulletPattern    = regexp.MustCompile(`^[-*]\s+(.*)$`)
	numberedPattern  = regexp.MustCompile(`^\d+\.\s+(.*)$`)
)

// Convert splits text on blank lines and classifies each chunk as a heading,
// a list or a rich-text paragraph. The result depends only on text.
func Convert(text string) Sequence {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var out Sequence
	for _, chunk := range blankLinePattern.Split(text, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if block := classify(chunk); block != nil {
			out = append(out, block)
		}
	}
	return out
}

func classify(chunk string) Block {
	if m := headingPattern.FindStringSubmatch(chunk); m != nil {
		return SectionHeading{
			Text:  strings.TrimSpace(m[2]),
			Level: headingLevel(len(m[1])),
		}
	}
	if items, ok := listItems(chunk, bulletPattern); ok {
		if len(items) == 0 {
			return nil
		}
		return List{Style: ListUnordered, Items: items}
	}
	if items, ok := listItems(chunk, numberedPattern); ok {
		if len(items) == 0 {
			return nil
		}
		return List{Style: ListOrdered, Items: items}
	}
	return RichText{Body: chunk}
}

func headingLevel(markers int) string {
	switch {
	case markers <= 1:
		return "h1"
	case markers == 2:
		return "h2"
	case markers == 3:
		return "h3"
	default:
		return "h4"
	}
}

// listItems reports whether every non-empty line matches pattern and
// returns the stripped item texts.
func listItems(chunk string, pattern *regexp.Regexp) ([]string, bool) {
	var items []string
	for _, line := range strings.Split(chunk, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := pattern.FindStringSubmatch(line)
		if m == nil {
			return nil, false
		}
		if item := strings.TrimSpace(m[1]); item != "" {
			items = append(items, item)
		}
	}
	return items, true
}

// Render flattens blocks back into text that Convert maps to the same
// sequence. Blocks without a text form contribute their main text as a
// paragraph.
func Render(seq Sequence) string {
	parts := make([]string, 0, len(seq))
	for _, block := range seq {
		var part string
		switch b := block.(type) {
		case SectionHeading:
			part = strings.Repeat("#", headingMarkers(b.Level)) + " " + b.Text
		case RichText:
			part = b.Body
		case List:
			lines := make([]string, len(b.Items))
			for i, item := range b.Items {
				if b.Style == ListOrdered {
					lines[i] = strconv.Itoa(i+1) + ". " + item
				} else {
					lines[i] = "- " + item
				}
			}
			part = strings.Join(lines, "\n")
		case Callout:
			part = b.Body
		case CTA:
			part = b.Label
		case PullQuote:
			part = b.Quote
		}
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

func headingMarkers(level string) int {
	switch level {
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	default:
		return 1
	}
}

