package mcpserver

import (
	"context"
	"fmt"
	"strings"
)

// ResourceTemplate describes a parameterized resource the server can read.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ResourceContent is one entry of a resources/read result.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

const pageURIPrefix = "confluence://"

// ResourceTemplates lists the resource templates the server exposes.
func (s *Server) ResourceTemplates() []ResourceTemplate {
	return []ResourceTemplate{
		{
			URITemplate: pageURIPrefix + "{page_id}",
			Name:        "Confluence page",
			Description: "A Confluence page rendered as Markdown",
			MimeType:    "text/markdown",
		},
	}
}

// ReadResource resolves a confluence://{page_id} URI to page content.
func (s *Server) ReadResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	pageID, ok := strings.CutPrefix(uri, pageURIPrefix)
	if !ok || pageID == "" || strings.Contains(pageID, "/") {
		return nil, fmt.Errorf("unknown resource URI: %s", uri)
	}

	md, _, err := s.client.GetPageMarkdown(ctx, pageID)
	if err != nil {
		return nil, err
	}

	return []ResourceContent{
		{
			URI:      uri,
			MimeType: "text/markdown",
			Text:     md,
		},
	}, nil
}
