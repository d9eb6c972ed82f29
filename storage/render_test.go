package storage

import (
	"strings"
	"testing"
)

func TestRenderHeadings(t *testing.T) {
	got := Render("# One\n\n## Two\n\n### Three\n\n#### Four\n\n##### Five\n\n###### Six\n")

	for _, want := range []string{
		"<h1>One</h1>",
		"<h2>Two</h2>",
		"<h3>Three</h3>",
		"<h4>Four</h4>",
		"<h5>Five</h5>",
		"<h6>Six</h6>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %v, want to contain %v", got, want)
		}
	}
}

func TestRenderParagraphAndInlines(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
	}{
		{
			name:     "plain paragraph",
			source:   "hello world\n",
			contains: []string{"<p>hello world</p>"},
		},
		{
			name:     "bold",
			source:   "**bold**\n",
			contains: []string{"<p><strong>bold</strong></p>"},
		},
		{
			name:     "italic",
			source:   "*italic*\n",
			contains: []string{"<p><em>italic</em></p>"},
		},
		{
			name:     "strikethrough",
			source:   "~~gone~~\n",
			contains: []string{"<p><del>gone</del></p>"},
		},
		{
			name:     "inline code",
			source:   "`x < 1`\n",
			contains: []string{"<code>x &lt; 1</code>"},
		},
		{
			name:     "nested formatting",
			source:   "**bold *italic* tail**\n",
			contains: []string{"<strong>bold <em>italic</em> tail</strong>"},
		},
		{
			name:     "hard break",
			source:   "first\\\nsecond\n",
			contains: []string{"first<br />second"},
		},
		{
			name:     "text escaping",
			source:   "a < b & c > d\n",
			contains: []string{"a &lt; b &amp; c &gt; d"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.source)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %v, want to contain %v", got, want)
				}
			}
		})
	}
}

func TestRenderCodeBlock(t *testing.T) {
	got := Render("```go\nfmt.Println(\"hi\")\n```\n")

	for _, want := range []string{
		`<ac:structured-macro ac:name="code">`,
		`<ac:parameter ac:name="language">go</ac:parameter>`,
		`<ac:plain-text-body><![CDATA[fmt.Println("hi")]]></ac:plain-text-body>`,
		`</ac:structured-macro>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %v, want to contain %v", got, want)
		}
	}
}

func TestRenderCodeBlockNoLanguage(t *testing.T) {
	got := Render("```\nplain\n```\n")

	if strings.Contains(got, `ac:name="language"`) {
		t.Errorf("Render() = %v, untagged block must not carry a language parameter", got)
	}
	if !strings.Contains(got, "<![CDATA[plain]]>") {
		t.Errorf("Render() = %v, want CDATA body", got)
	}
}

func TestRenderCodeBlockCDATATerminator(t *testing.T) {
	got := Render("```\nfoo ]]> bar\n```\n")

	// The terminator inside the body must be split across two CDATA sections.
	for _, want := range []string{
		"]]]]><![CDATA[>",
		"foo ",
		" bar",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %v, want to contain %v", got, want)
		}
	}
	if strings.Contains(got, "foo ]]> bar") {
		t.Errorf("Render() = %v, raw CDATA terminator leaked through", got)
	}
}

func TestRenderMermaidMacro(t *testing.T) {
	got := Render("```mermaid\ngraph TD;\nA-->B;\n```\n")

	for _, want := range []string{
		`<ac:parameter ac:name="language">mermaid</ac:parameter>`,
		`<ac:structured-macro ac:name="mermaid-cloud">`,
		`<ac:parameter ac:name="localId">`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %v, want to contain %v", got, want)
		}
	}
}

func TestRenderMermaidUniqueLocalIDs(t *testing.T) {
	got := Render("```mermaid\ngraph TD;\n```\n\n```mermaid\ngraph LR;\n```\n")

	if n := strings.Count(got, `ac:name="mermaid-cloud"`); n != 2 {
		t.Fatalf("got %d mermaid macros, want 2", n)
	}

	ids := localIDParams(got)
	if len(ids) != 2 {
		t.Fatalf("got %d localId parameters, want 2", len(ids))
	}
	if ids[0] == ids[1] {
		t.Errorf("localIds are equal (%q), want distinct per occurrence", ids[0])
	}
}

func localIDParams(xhtml string) []string {
	const open = `<ac:parameter ac:name="localId">`
	var ids []string
	for {
		i := strings.Index(xhtml, open)
		if i < 0 {
			return ids
		}
		xhtml = xhtml[i+len(open):]
		j := strings.Index(xhtml, "</ac:parameter>")
		if j < 0 {
			return ids
		}
		ids = append(ids, xhtml[:j])
		xhtml = xhtml[j:]
	}
}

func TestRenderLists(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:     "unordered list",
			source:   "- one\n- two\n",
			contains: []string{"<ul><li>one</li><li>two</li></ul>"},
		},
		{
			name:     "ordered list",
			source:   "1. one\n2. two\n",
			contains: []string{"<ol><li>one</li><li>two</li></ol>"},
			excludes: []string{"start="},
		},
		{
			name:     "ordered list with offset start",
			source:   "3. three\n4. four\n",
			contains: []string{`<ol start="3">`},
		},
		{
			name:     "nested list",
			source:   "- outer\n  - inner\n",
			contains: []string{"<ul><li>outer<ul><li>inner</li></ul></li></ul>"},
		},
		{
			name:     "loose list wraps items in paragraphs",
			source:   "- one\n\n- two\n",
			contains: []string{"<li><p>one</p></li>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.source)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %v, want to contain %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("Render() = %v, must not contain %v", got, bad)
				}
			}
		})
	}
}

func TestRenderBlockquote(t *testing.T) {
	got := Render("> quoted\n")
	if !strings.Contains(got, "<blockquote><p>quoted</p></blockquote>") {
		t.Errorf("Render() = %v", got)
	}
}

func TestRenderTable(t *testing.T) {
	got := Render("| A | B |\n|---|---|\n| 1 | 2 |\n")

	for _, want := range []string{
		"<table><tbody>",
		"<tr><th>A</th><th>B</th></tr>",
		"<tr><td>1</td><td>2</td></tr>",
		"</tbody></table>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %v, want to contain %v", got, want)
		}
	}
}

func TestRenderRule(t *testing.T) {
	got := Render("---\n")
	if !strings.Contains(got, "<hr />") {
		t.Errorf("Render() = %v, want self-closing <hr />", got)
	}
}

func TestRenderLinks(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		contains []string
		excludes []string
	}{
		{
			name:   "absolute URL stays an anchor",
			source: "[docs](https://example.com/docs)\n",
			contains: []string{
				`<a href="https://example.com/docs">docs</a>`,
			},
			excludes: []string{"<ac:link"},
		},
		{
			name:   "relative markdown link becomes page reference",
			source: "[setup guide](setup.md)\n",
			contains: []string{
				"<ac:link>",
				`<ri:page ri:content-title="setup" />`,
				"<ac:link-body>setup guide</ac:link-body>",
				"</ac:link>",
			},
			excludes: []string{"<a href"},
		},
		{
			name:   "directory and fragment are stripped from page title",
			source: "[install](docs/guides/setup.md#install)\n",
			contains: []string{
				`<ri:page ri:content-title="setup" />`,
			},
		},
		{
			name:   "markdown extension variant",
			source: "[notes](notes.markdown)\n",
			contains: []string{
				`<ri:page ri:content-title="notes" />`,
			},
		},
		{
			name:   "link title becomes tooltip",
			source: `[setup](setup.md "Setup Guide")` + "\n",
			contains: []string{
				`<ac:link ac:tooltip="Setup Guide">`,
			},
		},
		{
			name:   "anchor title attribute",
			source: `[docs](https://example.com "Docs")` + "\n",
			contains: []string{
				`<a href="https://example.com" title="Docs">docs</a>`,
			},
		},
		{
			name:     "fragment-only link stays an anchor",
			source:   "[top](#top)\n",
			contains: []string{`<a href="#top">top</a>`},
			excludes: []string{"<ac:link"},
		},
		{
			name:     "rooted path stays an anchor",
			source:   "[page](/wiki/page.md)\n",
			contains: []string{`<a href="/wiki/page.md">page</a>`},
			excludes: []string{"<ac:link"},
		},
		{
			name:     "non-markdown relative link stays an anchor",
			source:   "[data](report.pdf)\n",
			contains: []string{`<a href="report.pdf">data</a>`},
			excludes: []string{"<ac:link"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.source)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %v, want to contain %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("Render() = %v, must not contain %v", got, bad)
				}
			}
		})
	}
}

func TestRenderImage(t *testing.T) {
	got := Render(`![diagram](https://example.com/d.png "The Diagram")` + "\n")

	for _, want := range []string{
		`<ac:image ac:alt="diagram" ac:title="The Diagram">`,
		`<ri:url ri:value="https://example.com/d.png" />`,
		"</ac:image>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() = %v, want to contain %v", got, want)
		}
	}
}

func TestRenderAttrEscaping(t *testing.T) {
	got := Render(`[x](https://example.com?a=1&b="2")` + "\n")

	if !strings.Contains(got, `href="https://example.com?a=1&amp;b=&quot;2&quot;"`) {
		t.Errorf("Render() = %v, attribute not escaped", got)
	}
}

func TestRenderHTMLBlock(t *testing.T) {
	passthrough := Render("<details>\n<summary>More</summary>\n</details>\n")
	if !strings.Contains(passthrough, "<details>") {
		t.Errorf("Render() = %v, want raw HTML passed through", passthrough)
	}

	comment := Render("<!-- internal note -->\n")
	if strings.Contains(comment, "internal note") {
		t.Errorf("Render() = %v, want comment dropped", comment)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(""); got != "" {
		t.Errorf("Render(\"\") = %q, want empty string", got)
	}
}

func TestRenderOutputValidates(t *testing.T) {
	source := "# Title\n\nSome **bold** text with [a link](other.md).\n\n" +
		"| A | B |\n|---|---|\n| 1 | 2 |\n\n" +
		"```mermaid\ngraph TD;\n```\n\n" +
		"- item one\n- item two\n\n---\n"

	got := Render(source)
	if err := Validate(got); err != nil {
		t.Errorf("Validate(Render(...)) = %v, rendered output must validate", err)
	}
}
