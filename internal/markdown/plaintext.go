package markdown

import (
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	blockTagPattern   = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|ul|ol|blockquote|section|article)>|<br\s*/?>`)
	anyTagPattern     = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

var engine = goldmark.New(goldmark.WithExtensions(extension.GFM))

// StripHTML removes HTML tags, turning block-level closing tags into paragraph
// breaks, and unescapes entities.
func StripHTML(source string) string {
	if !strings.Contains(source, "<") {
		return html.UnescapeString(source)
	}
	out := blockTagPattern.ReplaceAllString(source, "\n\n")
	out = anyTagPattern.ReplaceAllString(out, "")
	return html.UnescapeString(out)
}

// Paragraphs returns the plain text of every paragraph-like block of a
// markdown (or HTML) document in source order. Code blocks and raw HTML
// blocks are dropped and inline markup is reduced to its text.
func Paragraphs(source string) []string {
	src := []byte(StripHTML(source))
	doc := engine.Parser().Parse(text.NewReader(src))

	var out []string
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindThematicBreak:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading:
			var b strings.Builder
			inlineText(node, src, &b)
			if paragraph := collapse(b.String()); paragraph != "" {
				out = append(out, paragraph)
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return out
}

// FirstParagraph returns the first non-heading paragraph, falling back to the
// first heading when the document has nothing else.
func FirstParagraph(source string) string {
	src := []byte(StripHTML(source))
	doc := engine.Parser().Parse(text.NewReader(src))

	var first, heading string
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if first != "" {
			return ast.WalkStop, nil
		}
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, ast.KindThematicBreak:
			return ast.WalkSkipChildren, nil
		case ast.KindParagraph, ast.KindTextBlock, ast.KindHeading:
			var b strings.Builder
			inlineText(node, src, &b)
			value := collapse(b.String())
			if node.Kind() == ast.KindHeading {
				if heading == "" {
					heading = value
				}
			} else {
				first = value
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if first != "" {
		return first
	}
	return heading
}

func inlineText(node ast.Node, source []byte, b *strings.Builder) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch v := child.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.RawHTML:
		default:
			inlineText(child, source, b)
		}
	}
}

func collapse(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}
