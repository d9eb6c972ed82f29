package adf

import (
	"strings"

	"github.com/agentplexus/mcp-confluence-md/markdown"
)

// Render converts Markdown to an ADF document. It is a pure function: no
// input fails, malformed Markdown degrades to the lexer's best-effort reading,
// and an empty document still carries one empty paragraph.
func Render(source string) *Doc {
	content := renderBlocks(markdown.Lex(source))
	if len(content) == 0 {
		content = []*Node{{Type: "paragraph"}}
	}
	return &Doc{Type: "doc", Version: 1, Content: content}
}

func renderBlocks(blocks []markdown.Block) []*Node {
	var nodes []*Node
	for _, block := range blocks {
		nodes = append(nodes, renderBlock(block)...)
	}
	return nodes
}

// renderBlock returns a slice because two block kinds expand: an image-only
// paragraph becomes one mediaSingle per image, and a mermaid code block is
// followed by its extension node.
func renderBlock(block markdown.Block) []*Node {
	switch b := block.(type) {
	case *markdown.Heading:
		return []*Node{{
			Type:    "heading",
			Attrs:   map[string]any{"level": b.Level},
			Content: renderInlines(b.Inline, nil),
		}}
	case *markdown.Paragraph:
		if images, ok := imagesOnly(b.Inline); ok {
			return mediaNodes(images)
		}
		return []*Node{{Type: "paragraph", Content: renderInlines(b.Inline, nil)}}
	case *markdown.TextBlock:
		return []*Node{{Type: "paragraph", Content: renderInlines(b.Inline, nil)}}
	case *markdown.CodeBlock:
		return renderCodeBlock(b)
	case *markdown.List:
		return []*Node{renderList(b)}
	case *markdown.Blockquote:
		children := renderBlocks(b.Children)
		if len(children) == 0 {
			children = []*Node{{Type: "paragraph"}}
		}
		return []*Node{{Type: "blockquote", Content: children}}
	case *markdown.Table:
		return []*Node{renderTable(b)}
	case *markdown.Rule:
		return []*Node{{Type: "rule"}}
	case *markdown.HTMLBlock:
		raw := strings.TrimRight(b.Raw, "\n")
		if raw == "" || strings.HasPrefix(strings.TrimSpace(raw), "<!--") {
			return nil
		}
		// ADF has no raw-HTML node; degrade to plain text.
		return []*Node{{Type: "paragraph", Content: []*Node{{Type: "text", Text: raw}}}}
	default:
		return nil
	}
}

func renderCodeBlock(b *markdown.CodeBlock) []*Node {
	node := &Node{Type: "codeBlock"}
	if b.Language != "" {
		node.Attrs = map[string]any{"language": b.Language}
	}
	// Code text is carried verbatim as a structured text node; the target
	// format needs no escaping here.
	if text := strings.TrimSuffix(b.Text, "\n"); text != "" {
		node.Content = []*Node{{Type: "text", Text: text}}
	}
	nodes := []*Node{node}
	if markdown.IsMermaid(b.Language) {
		nodes = append(nodes, extensionNode(markdown.NewLocalID()))
	}
	return nodes
}

// extensionNode builds the diagram-extension sibling for one mermaid block.
// The localId is duplicated in attrs and parameters, as the platform expects.
func extensionNode(localID string) *Node {
	return &Node{
		Type: "extension",
		Attrs: map[string]any{
			"extensionType": markdown.MermaidExtensionType,
			"extensionKey":  markdown.MermaidExtensionKey,
			"parameters":    map[string]any{"localId": localID},
			"localId":       localID,
		},
	}
}

func renderList(b *markdown.List) *Node {
	node := &Node{Type: "bulletList"}
	if b.Ordered {
		node.Type = "orderedList"
		if b.Start > 0 && b.Start != 1 {
			node.Attrs = map[string]any{"order": b.Start}
		}
	}
	for _, item := range b.Items {
		node.Content = append(node.Content, renderListItem(item))
	}
	return node
}

func renderListItem(item *markdown.ListItem) *Node {
	var children []*Node
	for _, child := range item.Children {
		children = append(children, renderBlock(child)...)
	}
	// ADF forbids empty containers.
	if len(children) == 0 {
		children = []*Node{{Type: "paragraph"}}
	}
	return &Node{Type: "listItem", Content: children}
}

func renderTable(b *markdown.Table) *Node {
	table := &Node{
		Type: "table",
		Attrs: map[string]any{
			"isNumberColumnEnabled": false,
			"layout":                "default",
		},
	}
	if len(b.Header) > 0 {
		table.Content = append(table.Content, renderTableRow(b.Header, "tableHeader"))
	}
	for _, row := range b.Rows {
		table.Content = append(table.Content, renderTableRow(row, "tableCell"))
	}
	return table
}

func renderTableRow(cells []*markdown.TableCell, cellType string) *Node {
	row := &Node{Type: "tableRow"}
	for _, cell := range cells {
		row.Content = append(row.Content, &Node{
			Type: cellType,
			Content: []*Node{{
				Type:    "paragraph",
				Content: renderInlines(cell.Inline, nil),
			}},
		})
	}
	return row
}

// renderInlines converts inline tokens to leaf nodes, threading the active
// mark list through nested formatting so that bold-inside-italic-inside-link
// yields one text node carrying all three marks in encounter order.
func renderInlines(inlines []markdown.Inline, marks []Mark) []*Node {
	var nodes []*Node
	for _, in := range inlines {
		switch n := in.(type) {
		case *markdown.Text:
			nodes = appendText(nodes, n.Value, marks)
		case *markdown.Strong:
			nodes = append(nodes, renderInlines(n.Children, pushMark(marks, Mark{Type: "strong"}))...)
		case *markdown.Emphasis:
			nodes = append(nodes, renderInlines(n.Children, pushMark(marks, Mark{Type: "em"}))...)
		case *markdown.Strikethrough:
			nodes = append(nodes, renderInlines(n.Children, pushMark(marks, Mark{Type: "strike"}))...)
		case *markdown.CodeSpan:
			nodes = appendText(nodes, n.Value, pushMark(marks, Mark{Type: "code"}))
		case *markdown.Link:
			nodes = append(nodes, renderInlines(n.Children, pushMark(marks, linkMark(n.Href, n.Title)))...)
		case *markdown.Image:
			// Inline images (mixed with text) become linked text; they never
			// turn into inline media nodes.
			label := n.Alt
			if label == "" {
				label = n.Href
			}
			nodes = appendText(nodes, label, pushMark(marks, linkMark(n.Href, "")))
		case *markdown.LineBreak:
			nodes = append(nodes, &Node{Type: "hardBreak"})
		default:
			nodes = appendText(nodes, markdown.PlainText([]markdown.Inline{in}), marks)
		}
	}
	return nodes
}

func appendText(nodes []*Node, text string, marks []Mark) []*Node {
	if text == "" {
		return nodes
	}
	return append(nodes, &Node{Type: "text", Text: text, Marks: marks})
}

// pushMark copies the active mark list and appends m, skipping marks whose
// type is already active (nested identical formatting collapses to one mark).
func pushMark(marks []Mark, m Mark) []Mark {
	for _, existing := range marks {
		if existing.Type == m.Type {
			return marks
		}
	}
	out := make([]Mark, len(marks), len(marks)+1)
	copy(out, marks)
	return append(out, m)
}

func linkMark(href, title string) Mark {
	attrs := map[string]any{"href": href}
	if title != "" {
		attrs["title"] = title
	}
	return Mark{Type: "link", Attrs: attrs}
}

// imagesOnly reports whether inline content consists of images and
// whitespace-only text runs, with at least one image.
func imagesOnly(inlines []markdown.Inline) ([]*markdown.Image, bool) {
	var images []*markdown.Image
	for _, in := range inlines {
		switch n := in.(type) {
		case *markdown.Image:
			images = append(images, n)
		case *markdown.Text:
			if strings.TrimSpace(n.Value) != "" {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return images, len(images) > 0
}

// mediaNodes renders an image-only paragraph: one centered mediaSingle per
// image, each wrapping one external media node.
func mediaNodes(images []*markdown.Image) []*Node {
	nodes := make([]*Node, 0, len(images))
	for _, img := range images {
		attrs := map[string]any{
			"type": "external",
			"url":  img.Href,
		}
		if img.Alt != "" {
			attrs["alt"] = img.Alt
		}
		nodes = append(nodes, &Node{
			Type:    "mediaSingle",
			Attrs:   map[string]any{"layout": "center"},
			Content: []*Node{{Type: "media", Attrs: attrs}},
		})
	}
	return nodes
}
