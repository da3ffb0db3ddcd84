package normalize

import (
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/goliatone/go-cms-bulkload/internal/blocks"
)

// Kind names a target collection schema.
type Kind string

const (
	KindPages     Kind = "pages"
	KindArticles  Kind = "articles"
	KindRedirects Kind = "redirects"
)

// BlocksField holds structured blocks on pages and articles.
const BlocksField = "blocks"

// ParseKind validates a schema name.
func ParseKind(value string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(value))); kind {
	case KindPages, KindArticles, KindRedirects:
		return kind, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, value)
	}
}

// KeyField is the remote field holding the natural key.
func (k Kind) KeyField() string {
	switch k {
	case KindPages:
		return "routePath"
	case KindArticles:
		return "slug"
	case KindRedirects:
		return "from"
	}
	return ""
}

// LegacyField is the freeform text field converted into blocks. Redirects
// have none.
func (k Kind) LegacyField() string {
	switch k {
	case KindPages:
		return "content"
	case KindArticles:
		return "body"
	}
	return ""
}

// PublishMarker is the publishedAt value of a write. A nil *PublishMarker
// leaves the field out, a zero marker sends null, anything else sends the
// timestamp.
type PublishMarker struct {
	at time.Time
}

// PublishAt marks a payload as published at t.
func PublishAt(t time.Time) *PublishMarker {
	return &PublishMarker{at: t.UTC()}
}

// Unpublish clears the publish marker.
func Unpublish() *PublishMarker {
	return &PublishMarker{}
}

func (m PublishMarker) IsZero() bool {
	return m.at.IsZero()
}

func (m PublishMarker) Time() time.Time {
	return m.at
}

func (m PublishMarker) MarshalJSON() ([]byte, error) {
	if m.at.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(m.at.Format(time.RFC3339))
}

// Payload is a canonical record ready to be written.
type Payload interface {
	Kind() Kind
	NaturalKey() string
	PublishMarker() *PublishMarker
	SetPublishMarker(*PublishMarker)
}

// taggedPayload is a payload carrying tag references to resolve.
type taggedPayload interface {
	tagRefs() []Tag
	setTags(ids []int64)
}

// PagePayload is the canonical page record.
type PagePayload struct {
	RoutePath      string          `json:"routePath"`
	PageName       string          `json:"pageName"`
	Content        string          `json:"content,omitempty"`
	Blocks         blocks.Sequence `json:"blocks,omitempty"`
	SEO            *SEO            `json:"seo,omitempty"`
	StructuredData any             `json:"structuredData,omitempty"`
	Tags           []int64         `json:"tags,omitempty"`
	PublishedAt    *PublishMarker  `json:"publishedAt,omitempty"`

	pendingTags []Tag
}

func (p *PagePayload) Kind() Kind                        { return KindPages }
func (p *PagePayload) NaturalKey() string                { return p.RoutePath }
func (p *PagePayload) PublishMarker() *PublishMarker     { return p.PublishedAt }
func (p *PagePayload) SetPublishMarker(m *PublishMarker) { p.PublishedAt = m }
func (p *PagePayload) tagRefs() []Tag                    { return p.pendingTags }
func (p *PagePayload) setTags(ids []int64)               { p.Tags = ids }

// ArticlePayload is the canonical article record.
type ArticlePayload struct {
	Slug           string          `json:"slug"`
	Title          string          `json:"title"`
	Summary        string          `json:"summary,omitempty"`
	Body           string          `json:"body,omitempty"`
	Blocks         blocks.Sequence `json:"blocks,omitempty"`
	PublishedDate  string          `json:"publishedDate,omitempty"`
	Author         int64           `json:"author"`
	Category       *int64          `json:"category,omitempty"`
	Tags           []int64         `json:"tags,omitempty"`
	SEO            *SEO            `json:"seo,omitempty"`
	StructuredData any             `json:"structuredData,omitempty"`
	PublishedAt    *PublishMarker  `json:"publishedAt,omitempty"`

	pendingTags []Tag
}

func (p *ArticlePayload) Kind() Kind                        { return KindArticles }
func (p *ArticlePayload) NaturalKey() string                { return p.Slug }
func (p *ArticlePayload) PublishMarker() *PublishMarker     { return p.PublishedAt }
func (p *ArticlePayload) SetPublishMarker(m *PublishMarker) { p.PublishedAt = m }
func (p *ArticlePayload) tagRefs() []Tag                    { return p.pendingTags }
func (p *ArticlePayload) setTags(ids []int64)               { p.Tags = ids }

// RedirectPayload is the canonical redirect record.
type RedirectPayload struct {
	From        string         `json:"from"`
	To          string         `json:"to"`
	StatusCode  int            `json:"statusCode"`
	PublishedAt *PublishMarker `json:"publishedAt,omitempty"`
}

func (p *RedirectPayload) Kind() Kind                        { return KindRedirects }
func (p *RedirectPayload) NaturalKey() string                { return p.From }
func (p *RedirectPayload) PublishMarker() *PublishMarker     { return p.PublishedAt }
func (p *RedirectPayload) SetPublishMarker(m *PublishMarker) { p.PublishedAt = m }
