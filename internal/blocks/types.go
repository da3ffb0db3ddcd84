// Package blocks models structured content blocks and converts freeform text
// into them.
package blocks

// Component is the discriminator stored in the "__component" JSON key.
type Component string

const (
	ComponentSectionHeading Component = "blocks.section-heading"
	ComponentRichText       Component = "blocks.rich-text"
	ComponentList           Component = "blocks.list"
	ComponentCallout        Component = "blocks.callout"
	ComponentCTA            Component = "blocks.cta"
	ComponentPullQuote      Component = "blocks.pull-quote"
)

// ListStyle selects bullet or numbered rendering.
type ListStyle string

const (
	ListUnordered ListStyle = "unordered"
	ListOrdered   ListStyle = "ordered"
)

// Block is one typed unit of structured content.
type Block interface {
	Component() Component
}

// SectionHeading is a heading of level h1 to h4.
type SectionHeading struct {
	Text  string
	Level string
}

func (SectionHeading) Component() Component { return ComponentSectionHeading }

// RichText carries one paragraph of raw text.
type RichText struct {
	Body string
}

func (RichText) Component() Component { return ComponentRichText }

// List holds item texts without their markers.
type List struct {
	Style ListStyle
	Items []string
}

func (List) Component() Component { return ComponentList }

// Callout is a highlighted note.
type Callout struct {
	Variant string
	Title   string
	Body    string
}

func (Callout) Component() Component { return ComponentCallout }

// CTA links to a follow-up action.
type CTA struct {
	Label string
	URL   string
	Style string
}

func (CTA) Component() Component { return ComponentCTA }

// PullQuote highlights a quotation.
type PullQuote struct {
	Quote       string
	Attribution string
}

func (PullQuote) Component() Component { return ComponentPullQuote }

// Sequence is an ordered list of blocks that encodes to the store's JSON
// array form.
type Sequence []Block
