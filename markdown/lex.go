package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// gm is the shared parser. GFM enables tables, strikethrough and autolinks.
// Parsing is stateless per call, so one instance serves all goroutines.
var gm = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Lex parses Markdown into an ordered tree of block tokens. It never fails:
// malformed constructs degrade to the parser's best-effort reading (an
// unterminated fence consumes to end of input, a malformed table stays plain
// text). Identical input always yields an identical tree.
func Lex(source string) []Block {
	src := []byte(source)
	doc := gm.Parser().Parse(text.NewReader(src))
	return lexChildren(doc, src)
}

func lexChildren(node ast.Node, src []byte) []Block {
	var blocks []Block
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if b := lexBlock(child, src); b != nil {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func lexBlock(node ast.Node, src []byte) Block {
	switch n := node.(type) {
	case *ast.Heading:
		return &Heading{Level: n.Level, Inline: lexInlines(n, src)}
	case *ast.Paragraph:
		return &Paragraph{Inline: lexInlines(n, src)}
	case *ast.TextBlock:
		return &TextBlock{Inline: lexInlines(n, src)}
	case *ast.FencedCodeBlock:
		return &CodeBlock{
			Language: string(n.Language(src)),
			Text:     rawLines(n, src),
		}
	case *ast.CodeBlock:
		return &CodeBlock{Text: rawLines(n, src)}
	case *ast.List:
		return lexList(n, src)
	case *ast.Blockquote:
		return &Blockquote{Children: lexChildren(n, src)}
	case *extast.Table:
		return lexTable(n, src)
	case *ast.ThematicBreak:
		return &Rule{}
	case *ast.HTMLBlock:
		raw := rawLines(n, src)
		if n.HasClosure() {
			raw += string(n.ClosureLine.Value(src))
		}
		return &HTMLBlock{Raw: raw}
	default:
		return nil
	}
}

func lexList(n *ast.List, src []byte) *List {
	list := &List{Ordered: n.IsOrdered()}
	if list.Ordered {
		list.Start = n.Start
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if item, ok := child.(*ast.ListItem); ok {
			list.Items = append(list.Items, &ListItem{Children: lexChildren(item, src)})
		}
	}
	return list
}

func lexTable(n *extast.Table, src []byte) *Table {
	table := &Table{}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch row := child.(type) {
		case *extast.TableHeader:
			table.Header = lexTableCells(row, src)
		case *extast.TableRow:
			table.Rows = append(table.Rows, lexTableCells(row, src))
		}
	}
	return table
}

func lexTableCells(row ast.Node, src []byte) []*TableCell {
	var cells []*TableCell
	for child := row.FirstChild(); child != nil; child = child.NextSibling() {
		if cell, ok := child.(*extast.TableCell); ok {
			cells = append(cells, &TableCell{Inline: lexInlines(cell, src)})
		}
	}
	return cells
}

// lexInlines converts a node's inline children, coalescing adjacent plain-text
// runs. The parser splits text at arbitrary points (notably before the last
// word of a line), but consumers expect one token per uninterrupted run.
func lexInlines(parent ast.Node, src []byte) []Inline {
	var inlines []Inline
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		for _, in := range lexInline(child, src) {
			if t, ok := in.(*Text); ok && len(inlines) > 0 {
				if prev, ok := inlines[len(inlines)-1].(*Text); ok {
					prev.Value += t.Value
					continue
				}
			}
			inlines = append(inlines, in)
		}
	}
	return inlines
}

func lexInline(node ast.Node, src []byte) []Inline {
	switch n := node.(type) {
	case *ast.Text:
		value := string(n.Segment.Value(src))
		if n.SoftLineBreak() {
			// A soft break folds into a single space within the run.
			value += " "
		}
		var out []Inline
		if value != "" {
			out = append(out, &Text{Value: value})
		}
		if n.HardLineBreak() {
			out = append(out, &LineBreak{})
		}
		return out
	case *ast.String:
		if len(n.Value) == 0 {
			return nil
		}
		return []Inline{&Text{Value: string(n.Value)}}
	case *ast.Emphasis:
		children := lexInlines(n, src)
		if n.Level >= 2 {
			return []Inline{&Strong{Children: children}}
		}
		return []Inline{&Emphasis{Children: children}}
	case *extast.Strikethrough:
		return []Inline{&Strikethrough{Children: lexInlines(n, src)}}
	case *ast.CodeSpan:
		return []Inline{&CodeSpan{Value: codeSpanText(n, src)}}
	case *ast.Link:
		return []Inline{&Link{
			Href:     string(n.Destination),
			Title:    string(n.Title),
			Children: lexInlines(n, src),
		}}
	case *ast.AutoLink:
		url := string(n.URL(src))
		return []Inline{&Link{
			Href:     url,
			Children: []Inline{&Text{Value: string(n.Label(src))}},
		}}
	case *ast.Image:
		return []Inline{&Image{
			Href:  string(n.Destination),
			Title: string(n.Title),
			Alt:   plainTextOf(n, src),
		}}
	case *ast.RawHTML:
		raw := segmentsText(n.Segments, src)
		if raw == "" {
			return nil
		}
		return []Inline{&Text{Value: raw}}
	default:
		return nil
	}
}

// codeSpanText concatenates the literal text of a code span's segments.
func codeSpanText(n *ast.CodeSpan, src []byte) string {
	var b strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if t, ok := child.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
	}
	return b.String()
}

// plainTextOf extracts the unformatted text of a node's inline children,
// used for image alt text.
func plainTextOf(parent ast.Node, src []byte) string {
	return PlainText(lexInlines(parent, src))
}

func rawLines(node ast.Node, src []byte) string {
	var b strings.Builder
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(src))
	}
	return b.String()
}

func segmentsText(segments *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < segments.Len(); i++ {
		seg := segments.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}
