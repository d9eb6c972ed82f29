// Package markdown lexes CommonMark/GFM Markdown into a format-agnostic token
// tree. The token types here are the shared intermediate representation for
// the storage-format and ADF renderers; neither renderer sees the underlying
// parser's AST.
package markdown

// Block represents a block-level token.
type Block interface {
	// BlockKind returns the kind identifier (e.g., "heading", "paragraph").
	BlockKind() string
}

// Inline represents an inline-level token.
type Inline interface {
	// InlineKind returns the kind identifier (e.g., "text", "strong").
	InlineKind() string
}

// Heading is an h1-h6 heading with inline content.
type Heading struct {
	Level  int // 1-6
	Inline []Inline
}

// BlockKind implements Block.
func (*Heading) BlockKind() string { return "heading" }

// Paragraph is a regular paragraph of inline content.
type Paragraph struct {
	Inline []Inline
}

// BlockKind implements Block.
func (*Paragraph) BlockKind() string { return "paragraph" }

// TextBlock is the inline-only content of a tight list item. Unlike a
// Paragraph it renders without a wrapping block element in the storage format,
// and with exactly one synthetic paragraph in ADF.
type TextBlock struct {
	Inline []Inline
}

// BlockKind implements Block.
func (*TextBlock) BlockKind() string { return "text_block" }

// CodeBlock is a fenced or indented code block. Text is the raw code,
// preserved verbatim including the trailing newline.
type CodeBlock struct {
	Language string // empty for indented or untagged fenced blocks
	Text     string
}

// BlockKind implements Block.
func (*CodeBlock) BlockKind() string { return "code_block" }

// List is an ordered or unordered list.
type List struct {
	Ordered bool
	Start   int // first item index of an ordered list; 0 when unset
	Items   []*ListItem
}

// BlockKind implements Block.
func (*List) BlockKind() string { return "list" }

// ListItem holds the block children of one list item. A tight item carries a
// single TextBlock; a loose item carries Paragraphs and other blocks. Nested
// lists appear as additional List children.
type ListItem struct {
	Children []Block
}

// Blockquote holds recursively nested block content.
type Blockquote struct {
	Children []Block
}

// BlockKind implements Block.
func (*Blockquote) BlockKind() string { return "blockquote" }

// Table is a GFM table. The header row is always present; Rows may be empty.
type Table struct {
	Header []*TableCell
	Rows   [][]*TableCell
}

// BlockKind implements Block.
func (*Table) BlockKind() string { return "table" }

// TableCell holds one cell's inline content.
type TableCell struct {
	Inline []Inline
}

// Rule is a thematic break.
type Rule struct{}

// BlockKind implements Block.
func (*Rule) BlockKind() string { return "rule" }

// HTMLBlock is a raw block-level HTML fragment, passed through untouched.
type HTMLBlock struct {
	Raw string
}

// BlockKind implements Block.
func (*HTMLBlock) BlockKind() string { return "html" }

// Text is a plain text run.
type Text struct {
	Value string
}

// InlineKind implements Inline.
func (*Text) InlineKind() string { return "text" }

// Strong is bold inline content.
type Strong struct {
	Children []Inline
}

// InlineKind implements Inline.
func (*Strong) InlineKind() string { return "strong" }

// Emphasis is italic inline content.
type Emphasis struct {
	Children []Inline
}

// InlineKind implements Inline.
func (*Emphasis) InlineKind() string { return "emphasis" }

// Strikethrough is struck-through inline content (GFM).
type Strikethrough struct {
	Children []Inline
}

// InlineKind implements Inline.
func (*Strikethrough) InlineKind() string { return "strikethrough" }

// CodeSpan is an inline code span. Value is the literal span text.
type CodeSpan struct {
	Value string
}

// InlineKind implements Inline.
func (*CodeSpan) InlineKind() string { return "code_span" }

// Link is an inline link wrapping inline content.
type Link struct {
	Href     string
	Title    string // optional
	Children []Inline
}

// InlineKind implements Inline.
func (*Link) InlineKind() string { return "link" }

// Image is an inline image reference.
type Image struct {
	Href  string
	Title string // optional
	Alt   string
}

// InlineKind implements Inline.
func (*Image) InlineKind() string { return "image" }

// LineBreak is a hard line break.
type LineBreak struct{}

// InlineKind implements Inline.
func (*LineBreak) InlineKind() string { return "line_break" }

// PlainText flattens inline content to its unformatted text. Images contribute
// their alt text, code spans their literal value.
func PlainText(inline []Inline) string {
	var out string
	for _, in := range inline {
		switch n := in.(type) {
		case *Text:
			out += n.Value
		case *CodeSpan:
			out += n.Value
		case *Strong:
			out += PlainText(n.Children)
		case *Emphasis:
			out += PlainText(n.Children)
		case *Strikethrough:
			out += PlainText(n.Children)
		case *Link:
			out += PlainText(n.Children)
		case *Image:
			out += n.Alt
		case *LineBreak:
			out += "\n"
		}
	}
	return out
}
