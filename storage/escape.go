package storage

import "strings"

// attrEscaper handles the five reserved XML characters. Replacement happens in
// a single pass, so the ampersand rewrite cannot double-escape the others.
var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeAttr escapes a string for use in an XML attribute position.
func EscapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// EscapeText escapes a string for use in XML element text.
func EscapeText(s string) string {
	return textEscaper.Replace(s)
}

// escapeCDATA splits every occurrence of the CDATA terminator so raw code can
// never end the section early. "]]>" becomes "]]" + close + reopen + ">",
// which the XML parser reassembles byte-for-byte.
func escapeCDATA(s string) string {
	return strings.ReplaceAll(s, "]]>", "]]]]><![CDATA[>")
}
