// Package adf renders Markdown to the Atlassian Document Format, the typed
// JSON document tree accepted by the Confluence v2 editor
// (representation "atlas_doc_format").
package adf

import "encoding/json"

// Doc is the root of an ADF document.
type Doc struct {
	Type    string  `json:"type"`    // always "doc"
	Version int     `json:"version"` // always 1
	Content []*Node `json:"content"`
}

// Node is one node of the document tree. Text is set only on leaf text nodes,
// Marks only on text-bearing leaves, Content only on containers.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []*Node        `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark is an inline formatting descriptor attached to a text node.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Marshal serializes the document to the JSON string Confluence expects as
// the atlas_doc_format body value.
func (d *Doc) Marshal() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
