package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentplexus/mcp-confluence-md/adf"
	"github.com/agentplexus/mcp-confluence-md/markdown"
	"github.com/agentplexus/mcp-confluence-md/storage"
)

func (s *Server) handleConvert(_ context.Context, input map[string]any) (any, error) {
	source, ok := input["markdown"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("markdown is required")
	}

	format, _ := input["format"].(string)
	if format == "" {
		format = "both"
	}

	result := map[string]any{}

	if format == "storage" || format == "both" {
		xhtml := storage.Render(source)
		if err := storage.Validate(xhtml); err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		result["storage"] = xhtml
	}

	if format == "adf" || format == "both" {
		doc := adf.Render(source)
		raw, err := doc.Marshal()
		if err != nil {
			return nil, err
		}
		// Round-trip through json.RawMessage so the document embeds as an
		// object rather than an escaped string.
		result["adf"] = json.RawMessage(raw)
	}

	if len(result) == 0 {
		return nil, fmt.Errorf("unknown format %q (want storage, adf, or both)", format)
	}

	return result, nil
}

func (s *Server) handlePreview(_ context.Context, input map[string]any) (any, error) {
	source, ok := input["markdown"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("markdown is required")
	}

	html, err := markdown.RenderHTML(source)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"html": html,
	}, nil
}
