// Package normalize maps raw input rows to canonical payloads for pages,
// articles and redirects.
package normalize

import (
	"context"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	json "github.com/goccy/go-json"

	"github.com/goliatone/go-cms-bulkload/internal/blocks"
	"github.com/goliatone/go-cms-bulkload/internal/source"
	cmsvalidation "github.com/goliatone/go-cms-bulkload/internal/validation"
)

// Tag is a tag reference to resolve.
type Tag struct {
	Name string
	Slug string
}

// TagResolver maps a tag to its remote id, creating it when missing. ok is
// false when the tag could not be attached, as happens for unknown tags in a
// dry run.
type TagResolver interface {
	ResolveTag(ctx context.Context, tag Tag) (id int64, ok bool, err error)
}

// Options configures a Normalizer.
type Options struct {
	// DefaultAuthorID fills the article author reference when a row has none.
	DefaultAuthorID int64
	// ConvertBlocks derives blocks from the legacy text when a row carries
	// no explicit blocks.
	ConvertBlocks bool
	Validator     *cmsvalidation.Validator
	Tags          TagResolver
	Now           func() time.Time
}

// Normalizer turns rows into payloads.
type Normalizer struct {
	opts Options
}

// New returns a Normalizer. A nil Validator uses the default structured
// data schema.
func New(opts Options) (*Normalizer, error) {
	if opts.Validator == nil {
		validator, err := cmsvalidation.NewValidator(nil)
		if err != nil {
			return nil, err
		}
		opts.Validator = validator
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Normalizer{opts: opts}, nil
}

// Normalize maps row to a payload of the given kind and resolves its tags.
// Row level problems are returned as *ValidationError; tag resolution
// failures are returned as is.
func (n *Normalizer) Normalize(ctx context.Context, kind Kind, row source.Row) (Payload, error) {
	payload, err := n.Prepare(kind, row)
	if err != nil {
		return nil, err
	}
	if err := n.ResolveTags(ctx, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Prepare maps row to a payload without touching the remote store. Tag
// references are kept on the payload until ResolveTags runs.
func (n *Normalizer) Prepare(kind Kind, row source.Row) (Payload, error) {
	switch kind {
	case KindPages:
		return n.page(row)
	case KindArticles:
		return n.article(row)
	case KindRedirects:
		return n.redirect(row)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// ResolveTags turns the pending tag references of payload into remote ids.
// Tags may be created here, so callers run it only for rows that will be
// reconciled.
func (n *Normalizer) ResolveTags(ctx context.Context, payload Payload) error {
	tagged, ok := payload.(taggedPayload)
	if !ok || n.opts.Tags == nil {
		return nil
	}
	var ids []int64
	seen := map[int64]bool{}
	for _, tag := range tagged.tagRefs() {
		id, ok, err := n.opts.Tags.ResolveTag(ctx, tag)
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", tag.Name, err)
		}
		if ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	tagged.setTags(ids)
	return nil
}

func (n *Normalizer) page(row source.Row) (*PagePayload, error) {
	p := &PagePayload{
		PageName: row.String("pageName", "title", "name"),
		Content:  row.String("content", "body"),
	}
	if path := row.String("routePath", "path"); path != "" {
		p.RoutePath = PathKey(path)
	}
	if err := required(row.Line, "routePath", p.RoutePath); err != nil {
		return nil, err
	}
	if err := required(row.Line, "pageName", p.PageName); err != nil {
		return nil, err
	}

	var err error
	if p.StructuredData, err = n.structuredData(row); err != nil {
		return nil, err
	}
	if p.Blocks, err = n.blocks(row, p.Content); err != nil {
		return nil, err
	}
	p.SEO = &SEO{
		MetaTitle:       MetaTitle(row.String("metaTitle", "seoTitle"), p.PageName),
		MetaDescription: Description(row.String("metaDescription", "seoDescription"), PlainText(textOf(p.Content, p.Blocks))),
	}
	p.pendingTags = tagRefs(row)
	p.PublishedAt = n.publishFlag(row)
	return p, nil
}

func (n *Normalizer) article(row source.Row) (*ArticlePayload, error) {
	p := &ArticlePayload{
		Title: row.String("title", "name"),
		Body:  row.String("body", "content"),
	}
	if err := required(row.Line, "title", p.Title); err != nil {
		return nil, err
	}
	p.Slug = Slugify(row.String("slug"))
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if err := required(row.Line, "slug", p.Slug); err != nil {
		return nil, err
	}

	if date := row.String("publishedDate", "date"); date != "" {
		parsed, err := ParseDate(date)
		if err != nil {
			return nil, invalid(row.Line, "publishedDate", err)
		}
		p.PublishedDate = parsed
	}

	if value, ok := row.Value("author", "authorId"); ok && row.String("author", "authorId") != "" {
		id, err := ParseID(value)
		if err != nil {
			return nil, invalid(row.Line, "author", err)
		}
		p.Author = id
	} else {
		p.Author = n.opts.DefaultAuthorID
	}
	if err := required(row.Line, "author", p.Author); err != nil {
		return nil, err
	}

	if value, ok := row.Value("category", "categoryId"); ok && row.String("category", "categoryId") != "" {
		id, err := ParseID(value)
		if err != nil {
			return nil, invalid(row.Line, "category", err)
		}
		p.Category = &id
	}

	var err error
	if p.StructuredData, err = n.structuredData(row); err != nil {
		return nil, err
	}
	if p.Blocks, err = n.blocks(row, p.Body); err != nil {
		return nil, err
	}
	text := textOf(p.Body, p.Blocks)
	p.Summary = Summary(row.String("summary", "excerpt"), text)
	p.SEO = &SEO{
		MetaTitle:       MetaTitle(row.String("metaTitle", "seoTitle"), p.Title),
		MetaDescription: Description(row.String("metaDescription", "seoDescription"), p.Summary, PlainText(text)),
	}
	p.pendingTags = tagRefs(row)
	p.PublishedAt = n.publishFlag(row)
	return p, nil
}

var redirectStatusCodes = []any{301, 302, 307, 308}

func (n *Normalizer) redirect(row source.Row) (*RedirectPayload, error) {
	p := &RedirectPayload{StatusCode: 301}
	if from := row.String("from", "source", "fromPath"); from != "" {
		p.From = PathKey(from)
	}
	if err := required(row.Line, "from", p.From); err != nil {
		return nil, err
	}
	p.To = redirectTarget(row.String("to", "destination", "toPath"))
	if err := required(row.Line, "to", p.To); err != nil {
		return nil, err
	}

	if value, ok := row.Value("statusCode", "status"); ok && row.String("statusCode", "status") != "" {
		code, err := ParseID(value)
		if err != nil {
			return nil, invalid(row.Line, "statusCode", err)
		}
		p.StatusCode = int(code)
	}
	if err := validation.Validate(p.StatusCode, validation.In(redirectStatusCodes...)); err != nil {
		return nil, invalid(row.Line, "statusCode", fmt.Errorf("%w: %v", ErrInvalidValue, err))
	}
	p.PublishedAt = n.publishFlag(row)
	return p, nil
}

func redirectTarget(value string) string {
	if value == "" {
		return ""
	}
	lower := strings.ToLower(value)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return value
	}
	return PathKey(value)
}

func required(line int, field string, value any) error {
	if err := validation.Validate(value, validation.Required); err != nil {
		return invalid(line, field, fmt.Errorf("%w: %v", ErrRequired, err))
	}
	return nil
}

func (n *Normalizer) structuredData(row source.Row) (any, error) {
	value, ok := row.Value("structuredData")
	if !ok {
		return nil, nil
	}
	if text, isText := value.(string); isText {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(text), &decoded); err != nil {
			return nil, invalid(row.Line, "structuredData", fmt.Errorf("%w: %v", ErrInvalidJSON, err))
		}
		value = decoded
	}
	if err := n.opts.Validator.Validate(value); err != nil {
		return nil, invalid(row.Line, "structuredData", err)
	}
	return value, nil
}

func (n *Normalizer) blocks(row source.Row, legacy string) (blocks.Sequence, error) {
	if value, ok := row.Value(BlocksField); ok {
		if text, isText := value.(string); isText {
			var decoded any
			if text = strings.TrimSpace(text); text != "" {
				if err := json.Unmarshal([]byte(text), &decoded); err != nil {
					return nil, invalid(row.Line, BlocksField, fmt.Errorf("%w: %v", ErrInvalidJSON, err))
				}
			}
			value = decoded
		}
		if value != nil {
			seq, err := blocks.Decode(value)
			if err != nil {
				return nil, invalid(row.Line, BlocksField, err)
			}
			return seq, nil
		}
	}
	if !n.opts.ConvertBlocks || legacy == "" {
		return nil, nil
	}
	return blocks.Convert(legacy), nil
}

// textOf is the text SEO fields derive from: the legacy text, or the
// rendered blocks when a row only carries blocks.
func textOf(legacy string, seq blocks.Sequence) string {
	if strings.TrimSpace(legacy) != "" || len(seq) == 0 {
		return legacy
	}
	return blocks.Render(seq)
}

func tagRefs(row source.Row) []Tag {
	value, ok := row.Value("tags")
	if !ok {
		return nil
	}
	var refs []Tag
	for _, name := range SplitList(value) {
		if tag := (Tag{Name: name, Slug: TagSlug(name)}); tag.Slug != "" {
			refs = append(refs, tag)
		}
	}
	return refs
}

func (n *Normalizer) publishFlag(row source.Row) *PublishMarker {
	value, ok := row.Value("published", "publish")
	if ok && ParseBool(value, false) {
		return PublishAt(n.opts.Now())
	}
	return nil
}
