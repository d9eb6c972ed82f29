package storage

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/agentplexus/mcp-confluence-md/markdown"
)

// ToMarkdown converts Storage XHTML to Markdown, best-effort. It is the read
// path's inverse of Render: headings, paragraphs, inline formatting, lists
// (including nesting), tables, rules, code macros, page links and image
// macros come back as their Markdown forms; unknown elements are flattened to
// their text content rather than failing. Content that only exists in
// Confluence (macro chrome, layout) is dropped.
func ToMarkdown(xhtml string) (string, error) {
	if strings.TrimSpace(xhtml) == "" {
		return "", nil
	}

	decoder := newDecoder(xhtml)
	var blocks []string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse storage: %w", err)
		}

		switch t := tok.(type) {
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" {
				blocks = append(blocks, text)
			}
		case xml.StartElement:
			if t.Name.Local == "root" {
				continue
			}
			block, err := blockToMarkdown(decoder, t)
			if err != nil {
				return "", err
			}
			if block != "" {
				blocks = append(blocks, block)
			}
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}

func blockToMarkdown(decoder *xml.Decoder, se xml.StartElement) (string, error) {
	switch name := se.Name.Local; name {
	case "p":
		inline, err := inlineToMarkdown(decoder, "p")
		return strings.TrimSpace(inline), err
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(name[1] - '0')
		inline, err := inlineToMarkdown(decoder, name)
		if err != nil {
			return "", err
		}
		return strings.Repeat("#", level) + " " + strings.TrimSpace(inline), nil
	case "ul", "ol":
		return listToMarkdown(decoder, se, 0)
	case "blockquote":
		return blockquoteToMarkdown(decoder)
	case "table":
		return tableToMarkdown(decoder)
	case "hr":
		err := decoder.Skip()
		return "---", err
	case "structured-macro":
		return macroToMarkdown(decoder, se)
	default:
		inline, err := inlineToMarkdown(decoder, name)
		return strings.TrimSpace(inline), err
	}
}

// inlineToMarkdown consumes tokens up to the closing endTag, converting
// inline children along the way.
func inlineToMarkdown(decoder *xml.Decoder, endTag string) (string, error) {
	var b strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			s, err := inlineElement(decoder, t)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case xml.EndElement:
			if t.Name.Local == endTag {
				return b.String(), nil
			}
		}
	}
}

// inlineElement converts one inline element (already opened as se), consuming
// through its end tag.
func inlineElement(decoder *xml.Decoder, se xml.StartElement) (string, error) {
	name := se.Name.Local
	switch name {
	case "strong", "b":
		inner, err := inlineToMarkdown(decoder, name)
		return "**" + inner + "**", err
	case "em", "i":
		inner, err := inlineToMarkdown(decoder, name)
		return "*" + inner + "*", err
	case "del", "s", "strike":
		inner, err := inlineToMarkdown(decoder, name)
		return "~~" + inner + "~~", err
	case "code":
		inner, err := inlineToMarkdown(decoder, name)
		return "`" + inner + "`", err
	case "br":
		err := decoder.Skip()
		return "  \n", err
	case "a":
		return anchorToMarkdown(decoder, se)
	case "link":
		return linkMacroToMarkdown(decoder)
	case "image":
		return imageMacroToMarkdown(decoder, se)
	case "structured-macro":
		return macroToMarkdown(decoder, se)
	default:
		return inlineToMarkdown(decoder, name)
	}
}

func anchorToMarkdown(decoder *xml.Decoder, se xml.StartElement) (string, error) {
	var href, title string
	for _, attr := range se.Attr {
		switch attr.Name.Local {
		case "href":
			href = attr.Value
		case "title":
			title = attr.Value
		}
	}
	body, err := inlineToMarkdown(decoder, "a")
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if href == "" {
		return body, nil
	}
	if title != "" {
		return fmt.Sprintf("[%s](%s %q)", body, href, title), nil
	}
	return fmt.Sprintf("[%s](%s)", body, href), nil
}

// linkMacroToMarkdown turns an ac:link page reference back into a relative
// Markdown link, the inverse of the page-title rewriting on the write path.
func linkMacroToMarkdown(decoder *xml.Decoder) (string, error) {
	var title, body string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "page":
				for _, attr := range t.Attr {
					if attr.Name.Local == "content-title" {
						title = attr.Value
					}
				}
				if err := decoder.Skip(); err != nil {
					return "", err
				}
			case "link-body":
				body, err = inlineToMarkdown(decoder, "link-body")
				if err != nil {
					return "", err
				}
			case "plain-text-link-body":
				body, err = textContent(decoder, "plain-text-link-body")
				if err != nil {
					return "", err
				}
			default:
				if err := decoder.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "link" {
				body = strings.TrimSpace(body)
				if body == "" {
					body = title
				}
				if title == "" {
					return body, nil
				}
				return fmt.Sprintf("[%s](%s.md)", body, title), nil
			}
		}
	}
	return "", nil
}

func imageMacroToMarkdown(decoder *xml.Decoder, se xml.StartElement) (string, error) {
	var alt string
	for _, attr := range se.Attr {
		if attr.Name.Local == "alt" {
			alt = attr.Value
		}
	}

	var url string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "url":
				for _, attr := range t.Attr {
					if attr.Name.Local == "value" {
						url = attr.Value
					}
				}
			case "attachment":
				for _, attr := range t.Attr {
					if attr.Name.Local == "filename" {
						url = attr.Value
					}
				}
			}
			if err := decoder.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			if t.Name.Local == "image" {
				return fmt.Sprintf("![%s](%s)", alt, url), nil
			}
		}
	}
	return "", nil
}

// macroToMarkdown converts a structured macro. Code macros come back as
// fenced blocks; the mermaid diagram macro is dropped because its source
// already lives in the preceding code fence; anything else degrades to its
// body text.
func macroToMarkdown(decoder *xml.Decoder, se xml.StartElement) (string, error) {
	name := macroNameAttr(se)
	params := map[string]string{}
	var body string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "parameter":
				var paramName string
				for _, attr := range t.Attr {
					if attr.Name.Local == "name" {
						paramName = attr.Value
					}
				}
				value, err := textContent(decoder, "parameter")
				if err != nil {
					return "", err
				}
				if paramName != "" {
					params[paramName] = value
				}
			case "plain-text-body", "rich-text-body":
				body, err = textContent(decoder, t.Name.Local)
				if err != nil {
					return "", err
				}
			default:
				if err := decoder.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "structured-macro" {
				switch name {
				case "code":
					return "```" + params["language"] + "\n" + body + "\n```", nil
				case markdown.MermaidMacroName:
					return "", nil
				default:
					return strings.TrimSpace(body), nil
				}
			}
		}
	}
	return "", nil
}

// textContent collects character data up to the closing endTag, ignoring any
// nested element structure.
func textContent(decoder *xml.Decoder, endTag string) (string, error) {
	var b strings.Builder
	depth := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 && t.Name.Local == endTag {
				return b.String(), nil
			}
			if depth > 0 {
				depth--
			}
		}
	}
}

func listToMarkdown(decoder *xml.Decoder, se xml.StartElement, depth int) (string, error) {
	tag := se.Name.Local
	ordered := tag == "ol"
	num := 1
	for _, attr := range se.Attr {
		if attr.Name.Local == "start" {
			fmt.Sscanf(attr.Value, "%d", &num)
		}
	}

	indent := strings.Repeat("  ", depth)
	var lines []string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "li" {
				if err := decoder.Skip(); err != nil {
					return "", err
				}
				continue
			}
			text, nested, err := listItemToMarkdown(decoder, depth)
			if err != nil {
				return "", err
			}
			marker := "- "
			if ordered {
				marker = fmt.Sprintf("%d. ", num)
				num++
			}
			lines = append(lines, indent+marker+text)
			lines = append(lines, nested...)
		case xml.EndElement:
			if t.Name.Local == tag {
				return strings.Join(lines, "\n"), nil
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// listItemToMarkdown returns the item's own line text and any nested list
// lines (already indented one level deeper).
func listItemToMarkdown(decoder *xml.Decoder, depth int) (string, []string, error) {
	var text strings.Builder
	var nested []string

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}

		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			switch t.Name.Local {
			case "ul", "ol":
				block, err := listToMarkdown(decoder, t, depth+1)
				if err != nil {
					return "", nil, err
				}
				if block != "" {
					nested = append(nested, strings.Split(block, "\n")...)
				}
			case "p":
				para, err := inlineToMarkdown(decoder, "p")
				if err != nil {
					return "", nil, err
				}
				if text.Len() > 0 && strings.TrimSpace(para) != "" {
					text.WriteString(" ")
				}
				text.WriteString(strings.TrimSpace(para))
			default:
				s, err := inlineElement(decoder, t)
				if err != nil {
					return "", nil, err
				}
				text.WriteString(s)
			}
		case xml.EndElement:
			if t.Name.Local == "li" {
				return strings.TrimSpace(text.String()), nested, nil
			}
		}
	}
	return strings.TrimSpace(text.String()), nested, nil
}

func blockquoteToMarkdown(decoder *xml.Decoder) (string, error) {
	var blocks []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			block, err := blockToMarkdown(decoder, t)
			if err != nil {
				return "", err
			}
			if block != "" {
				blocks = append(blocks, block)
			}
		case xml.EndElement:
			if t.Name.Local == "blockquote" {
				lines := strings.Split(strings.Join(blocks, "\n\n"), "\n")
				for i, line := range lines {
					lines[i] = strings.TrimRight("> "+line, " ")
				}
				return strings.Join(lines, "\n"), nil
			}
		}
	}
	return "", nil
}

func tableToMarkdown(decoder *xml.Decoder) (string, error) {
	var rows [][]string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbody":
				// Rows are collected from the surrounding loop.
			case "tr":
				row, err := tableRowToMarkdown(decoder)
				if err != nil {
					return "", err
				}
				rows = append(rows, row)
			default:
				if err := decoder.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "table" {
				return pipeTable(rows), nil
			}
		}
	}
	return pipeTable(rows), nil
}

func tableRowToMarkdown(decoder *xml.Decoder) ([]string, error) {
	var cells []string
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "th", "td":
				cell, err := inlineToMarkdown(decoder, t.Name.Local)
				if err != nil {
					return nil, err
				}
				cell = strings.Join(strings.Fields(cell), " ")
				cells = append(cells, strings.ReplaceAll(cell, "|", `\|`))
			default:
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "tr" {
				return cells, nil
			}
		}
	}
	return cells, nil
}

func pipeTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	var lines []string
	lines = append(lines, "| "+strings.Join(rows[0], " | ")+" |")
	separators := make([]string, len(rows[0]))
	for i := range separators {
		separators[i] = "---"
	}
	lines = append(lines, "| "+strings.Join(separators, " | ")+" |")
	for _, row := range rows[1:] {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}
