package storage

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ValidationError reports a Storage XHTML validation failure.
type ValidationError struct {
	Message string
	Tag     string
}

func (e *ValidationError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("validation error: %s (tag: %s)", e.Message, e.Tag)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ForbiddenTags are HTML tags Confluence rejects in Storage Format bodies.
var ForbiddenTags = map[string]bool{
	"thead":    true,
	"tfoot":    true,
	"colgroup": true,
	"col":      true,
	"div":      true,
	"span":     true,
	"script":   true,
	"style":    true,
	"iframe":   true,
	"form":     true,
	"input":    true,
	"button":   true,
}

// ValidatorOptions configures validation behavior.
type ValidatorOptions struct {
	// RequireTableTbody requires tables to have <tbody> elements.
	RequireTableTbody bool
	// AllowedMacros limits which macros are permitted. Empty means all allowed.
	AllowedMacros map[string]bool
	// ForbiddenTags specifies tags that are not allowed.
	ForbiddenTags map[string]bool
}

// DefaultValidatorOptions returns the options applied before every upload.
func DefaultValidatorOptions() ValidatorOptions {
	return ValidatorOptions{
		RequireTableTbody: true,
		ForbiddenTags:     ForbiddenTags,
	}
}

// Validate checks that the given string is valid Confluence Storage XHTML.
func Validate(xhtml string) error {
	return ValidateWithOptions(xhtml, DefaultValidatorOptions())
}

// ValidateWithOptions checks Storage XHTML with explicit options.
func ValidateWithOptions(xhtml string, opts ValidatorOptions) error {
	if xhtml == "" {
		return nil
	}

	decoder := newDecoder(xhtml)

	// One entry per open table, tracking whether its own <tbody> was seen;
	// nested tables must not disturb the outer table's state.
	var tbodySeen []bool

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &ValidationError{Message: fmt.Sprintf("invalid XML: %v", err)}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local

			if opts.ForbiddenTags[name] {
				return &ValidationError{Message: "forbidden tag", Tag: name}
			}

			if name == "structured-macro" && len(opts.AllowedMacros) > 0 {
				macroName := macroNameAttr(t)
				if macroName != "" && !opts.AllowedMacros[macroName] {
					return &ValidationError{Message: "disallowed macro", Tag: macroName}
				}
			}

			if name == "table" {
				tbodySeen = append(tbodySeen, false)
			}
			if name == "tbody" && len(tbodySeen) > 0 {
				tbodySeen[len(tbodySeen)-1] = true
			}
			if name == "tr" && len(tbodySeen) > 0 && !tbodySeen[len(tbodySeen)-1] && opts.RequireTableTbody {
				return &ValidationError{Message: "<tr> must be inside <tbody>", Tag: "tr"}
			}

		case xml.EndElement:
			if t.Name.Local == "table" && len(tbodySeen) > 0 {
				if !tbodySeen[len(tbodySeen)-1] && opts.RequireTableTbody {
					return &ValidationError{Message: "<table> must contain <tbody>", Tag: "table"}
				}
				tbodySeen = tbodySeen[:len(tbodySeen)-1]
			}
		}
	}

	return nil
}

// IsValidXML reports whether the string is well-formed XML when wrapped.
func IsValidXML(xhtml string) bool {
	decoder := newDecoder(xhtml)
	for {
		_, err := decoder.Token()
		if err == io.EOF {
			return true
		}
		if err != nil {
			return false
		}
	}
}

// newDecoder wraps a storage fragment in a namespaced root so the ac:/ri:
// prefixes and common HTML entities parse cleanly.
func newDecoder(xhtml string) *xml.Decoder {
	wrapped := `<root xmlns:ac="http://atlassian.com/confluence" xmlns:ri="http://atlassian.com/confluence">` +
		xhtml + `</root>`
	decoder := xml.NewDecoder(strings.NewReader(wrapped))
	decoder.Entity = htmlEntities
	return decoder
}

// macroNameAttr extracts the macro name from an ac:structured-macro element.
func macroNameAttr(el xml.StartElement) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == "name" {
			return attr.Value
		}
	}
	return ""
}
