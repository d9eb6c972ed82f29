// Package storage renders Markdown to Confluence Storage Format (XHTML) and
// provides validation and best-effort conversion back to Markdown. Rendering
// is a pure function of the input; all state lives on the stack of one call.
package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/agentplexus/mcp-confluence-md/markdown"
)

// docExtensions are the document-source suffixes that turn a relative link
// into a page reference instead of a plain anchor.
var docExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
}

// Render converts Markdown to Storage XHTML. It never fails: malformed input
// degrades to the lexer's best-effort token tree, and an empty document
// renders as the empty string.
func Render(source string) string {
	var buf strings.Builder
	renderBlocks(&buf, markdown.Lex(source))
	return buf.String()
}

func renderBlocks(buf *strings.Builder, blocks []markdown.Block) {
	for _, block := range blocks {
		renderBlock(buf, block)
	}
}

func renderBlock(buf *strings.Builder, block markdown.Block) {
	switch b := block.(type) {
	case *markdown.Heading:
		fmt.Fprintf(buf, "<h%d>", b.Level)
		renderInlines(buf, b.Inline)
		fmt.Fprintf(buf, "</h%d>", b.Level)
	case *markdown.Paragraph:
		buf.WriteString("<p>")
		renderInlines(buf, b.Inline)
		buf.WriteString("</p>")
	case *markdown.TextBlock:
		// Tight list-item content renders bare inside its <li>.
		renderInlines(buf, b.Inline)
	case *markdown.CodeBlock:
		renderCodeMacro(buf, b)
	case *markdown.List:
		renderList(buf, b)
	case *markdown.Blockquote:
		buf.WriteString("<blockquote>")
		renderBlocks(buf, b.Children)
		buf.WriteString("</blockquote>")
	case *markdown.Table:
		renderTable(buf, b)
	case *markdown.Rule:
		// Self-closing form; the HTML5 void element is not valid XHTML.
		buf.WriteString("<hr />")
	case *markdown.HTMLBlock:
		raw := strings.TrimRight(b.Raw, "\n")
		if !strings.HasPrefix(strings.TrimSpace(raw), "<!--") {
			buf.WriteString(raw)
		}
	}
}

// renderCodeMacro emits the code structured-macro with a CDATA-wrapped body.
// A mermaid-tagged block is followed by the diagram macro carrying a fresh
// localId for this occurrence.
func renderCodeMacro(buf *strings.Builder, b *markdown.CodeBlock) {
	buf.WriteString(`<ac:structured-macro ac:name="code">`)
	if b.Language != "" {
		buf.WriteString(`<ac:parameter ac:name="language">`)
		buf.WriteString(EscapeAttr(b.Language))
		buf.WriteString(`</ac:parameter>`)
	}
	buf.WriteString(`<ac:plain-text-body><![CDATA[`)
	buf.WriteString(escapeCDATA(strings.TrimSuffix(b.Text, "\n")))
	buf.WriteString(`]]></ac:plain-text-body>`)
	buf.WriteString(`</ac:structured-macro>`)

	if markdown.IsMermaid(b.Language) {
		fmt.Fprintf(buf,
			`<ac:structured-macro ac:name=%q><ac:parameter ac:name="localId">%s</ac:parameter></ac:structured-macro>`,
			markdown.MermaidMacroName, markdown.NewLocalID())
	}
}

func renderList(buf *strings.Builder, b *markdown.List) {
	tag := "ul"
	if b.Ordered {
		tag = "ol"
	}
	buf.WriteString("<" + tag)
	if b.Ordered && b.Start > 0 && b.Start != 1 {
		fmt.Fprintf(buf, ` start="%d"`, b.Start)
	}
	buf.WriteString(">")
	for _, item := range b.Items {
		buf.WriteString("<li>")
		renderBlocks(buf, item.Children)
		buf.WriteString("</li>")
	}
	buf.WriteString("</" + tag + ">")
}

func renderTable(buf *strings.Builder, b *markdown.Table) {
	buf.WriteString("<table><tbody>")
	if len(b.Header) > 0 {
		buf.WriteString("<tr>")
		for _, cell := range b.Header {
			buf.WriteString("<th>")
			renderInlines(buf, cell.Inline)
			buf.WriteString("</th>")
		}
		buf.WriteString("</tr>")
	}
	for _, row := range b.Rows {
		buf.WriteString("<tr>")
		for _, cell := range row {
			buf.WriteString("<td>")
			renderInlines(buf, cell.Inline)
			buf.WriteString("</td>")
		}
		buf.WriteString("</tr>")
	}
	buf.WriteString("</tbody></table>")
}

func renderInlines(buf *strings.Builder, inlines []markdown.Inline) {
	for _, in := range inlines {
		renderInline(buf, in)
	}
}

func renderInline(buf *strings.Builder, in markdown.Inline) {
	switch n := in.(type) {
	case *markdown.Text:
		buf.WriteString(EscapeText(n.Value))
	case *markdown.Strong:
		buf.WriteString("<strong>")
		renderInlines(buf, n.Children)
		buf.WriteString("</strong>")
	case *markdown.Emphasis:
		buf.WriteString("<em>")
		renderInlines(buf, n.Children)
		buf.WriteString("</em>")
	case *markdown.Strikethrough:
		buf.WriteString("<del>")
		renderInlines(buf, n.Children)
		buf.WriteString("</del>")
	case *markdown.CodeSpan:
		buf.WriteString("<code>")
		buf.WriteString(EscapeText(n.Value))
		buf.WriteString("</code>")
	case *markdown.Link:
		renderLink(buf, n)
	case *markdown.Image:
		renderImageMacro(buf, n)
	case *markdown.LineBreak:
		buf.WriteString("<br />")
	}
}

// renderLink emits a plain anchor, except for relative links to Markdown
// documents, which become page references so cross-document links survive
// publishing to Confluence.
func renderLink(buf *strings.Builder, n *markdown.Link) {
	if title, ok := pageTitleFromHref(n.Href); ok {
		buf.WriteString("<ac:link")
		if n.Title != "" {
			fmt.Fprintf(buf, ` ac:tooltip="%s"`, EscapeAttr(n.Title))
		}
		buf.WriteString(">")
		fmt.Fprintf(buf, `<ri:page ri:content-title="%s" />`, EscapeAttr(title))
		buf.WriteString("<ac:link-body>")
		renderInlines(buf, n.Children)
		buf.WriteString("</ac:link-body>")
		buf.WriteString("</ac:link>")
		return
	}

	fmt.Fprintf(buf, `<a href="%s"`, EscapeAttr(n.Href))
	if n.Title != "" {
		fmt.Fprintf(buf, ` title="%s"`, EscapeAttr(n.Title))
	}
	buf.WriteString(">")
	renderInlines(buf, n.Children)
	buf.WriteString("</a>")
}

// renderImageMacro emits the ac:image macro with an external URL resource
// locator; the storage format has no native <img> element.
func renderImageMacro(buf *strings.Builder, n *markdown.Image) {
	buf.WriteString("<ac:image")
	if n.Alt != "" {
		fmt.Fprintf(buf, ` ac:alt="%s"`, EscapeAttr(n.Alt))
	}
	if n.Title != "" {
		fmt.Fprintf(buf, ` ac:title="%s"`, EscapeAttr(n.Title))
	}
	buf.WriteString(">")
	fmt.Fprintf(buf, `<ri:url ri:value="%s" />`, EscapeAttr(n.Href))
	buf.WriteString("</ac:image>")
}

// pageTitleFromHref derives a page title from a relative Markdown link target.
// The title is the file name with fragment, directories and extension
// stripped: "docs/setup.md#install" refers to the page "setup".
func pageTitleFromHref(href string) (string, bool) {
	if href == "" || strings.HasPrefix(href, "/") || strings.HasPrefix(href, "#") {
		return "", false
	}
	// Anything with a scheme (https:, mailto:, ...) is an absolute URL.
	if i := strings.IndexByte(href, ':'); i >= 0 && !strings.Contains(href[:i], "/") {
		return "", false
	}
	target := href
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	ext := strings.ToLower(path.Ext(target))
	if !docExtensions[ext] {
		return "", false
	}
	title := strings.TrimSuffix(path.Base(target), path.Ext(target))
	if title == "" || title == "." {
		return "", false
	}
	return title, true
}
