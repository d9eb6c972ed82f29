package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
)

// preview renders GFM to plain HTML with syntax-highlighted code blocks. Kept
// separate from gm so the token lexer never pays for the highlighter.
var preview = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
)

// RenderHTML converts Markdown to standalone HTML. It serves the local
// preview tool only; Confluence uploads go through the storage or ADF
// renderers instead.
func RenderHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := preview.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
