// Package mcpserver provides an MCP (Model Context Protocol) server for
// Confluence. Tools accept page content as Markdown and render it to
// Confluence Storage Format or ADF on the way out, so callers never hand-write
// XHTML or document JSON.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agentplexus/mcp-confluence-md/confluence"
)

// Tool categories used for operation filtering.
const (
	CategoryRead    = "read"
	CategoryWrite   = "write"
	CategoryConvert = "convert"
)

// Config controls which tools the server exposes.
type Config struct {
	// ReadOnly removes every write-category tool from listing and dispatch.
	ReadOnly bool
	// DisabledTools removes individual tools by name.
	DisabledTools map[string]bool
}

// Server is the MCP server for Confluence.
type Server struct {
	client *confluence.Client
	cfg    Config
}

// New creates a new MCP server with the given Confluence client.
func New(client *confluence.Client, cfg Config) *Server {
	return &Server{client: client, cfg: cfg}
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    string         `json:"-"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ToolResult represents the result of a tool execution.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock represents a content block in an MCP response.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Tools returns the tools enabled under the current configuration.
func (s *Server) Tools() []Tool {
	var tools []Tool
	for _, tool := range allTools() {
		if s.enabled(tool) {
			tools = append(tools, tool)
		}
	}
	return tools
}

func (s *Server) enabled(tool Tool) bool {
	if s.cfg.DisabledTools[tool.Name] {
		return false
	}
	if s.cfg.ReadOnly && tool.Category == CategoryWrite {
		return false
	}
	return true
}

func (s *Server) toolEnabled(name string) bool {
	for _, tool := range allTools() {
		if tool.Name == name {
			return s.enabled(tool)
		}
	}
	return false
}

// HandleTool dispatches a tool call to the appropriate handler.
func (s *Server) HandleTool(ctx context.Context, name string, input map[string]any) (*ToolResult, error) {
	if !s.toolEnabled(name) {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	var result any
	var err error

	switch name {
	case "confluence_read_page":
		result, err = s.handleReadPage(ctx, input)
	case "confluence_read_page_storage":
		result, err = s.handleReadPageStorage(ctx, input)
	case "confluence_create_page":
		result, err = s.handleCreatePage(ctx, input)
	case "confluence_update_page":
		result, err = s.handleUpdatePage(ctx, input)
	case "confluence_delete_page":
		result, err = s.handleDeletePage(ctx, input)
	case "confluence_search_pages":
		result, err = s.handleSearchPages(ctx, input)
	case "confluence_get_space":
		result, err = s.handleGetSpace(ctx, input)
	case "markdown_convert":
		result, err = s.handleConvert(ctx, input)
	case "markdown_preview":
		result, err = s.handlePreview(ctx, input)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}

	if err != nil {
		return &ToolResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}

	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: string(text)}},
	}, nil
}
