package mcpserver

// allTools returns every tool definition; Server.Tools filters by config.
func allTools() []Tool {
	return []Tool{
		{
			Name:        "confluence_read_page",
			Description: "Read a Confluence page as Markdown. The page's Storage Format body is converted back to Markdown, so the result can be edited and resubmitted via confluence_update_page.",
			Category:    CategoryRead,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_id": map[string]any{
						"type":        "string",
						"description": "The Confluence page ID",
					},
				},
				"required": []string{"page_id"},
			},
		},
		{
			Name:        "confluence_read_page_storage",
			Description: "Read a Confluence page as raw Storage Format XHTML. Use this for debugging or when the Markdown conversion drops content you need to see.",
			Category:    CategoryRead,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_id": map[string]any{
						"type":        "string",
						"description": "The Confluence page ID",
					},
				},
				"required": []string{"page_id"},
			},
		},
		{
			Name:        "confluence_create_page",
			Description: "Create a Confluence page from Markdown. The content is rendered to Storage Format (default) or ADF; mermaid code blocks get a diagram macro injected automatically.",
			Category:    CategoryWrite,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"space_key": map[string]any{
						"type":        "string",
						"description": "The space key where the page will be created",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "The page title",
					},
					"markdown": map[string]any{
						"type":        "string",
						"description": "The page content as Markdown (CommonMark + GFM tables/strikethrough)",
					},
					"parent_id": map[string]any{
						"type":        "string",
						"description": "Optional parent page ID",
					},
					"format": map[string]any{
						"type":        "string",
						"description": "Body representation: 'storage' (default) or 'adf'",
						"enum":        []string{"storage", "adf"},
					},
				},
				"required": []string{"space_key", "title", "markdown"},
			},
		},
		{
			Name:        "confluence_update_page",
			Description: "Update a Confluence page from Markdown. Fetches the current version automatically and submits the rendered content as the next version.",
			Category:    CategoryWrite,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_id": map[string]any{
						"type":        "string",
						"description": "The Confluence page ID",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "The page title",
					},
					"markdown": map[string]any{
						"type":        "string",
						"description": "The new page content as Markdown",
					},
					"format": map[string]any{
						"type":        "string",
						"description": "Body representation: 'storage' (default) or 'adf'",
						"enum":        []string{"storage", "adf"},
					},
				},
				"required": []string{"page_id", "title", "markdown"},
			},
		},
		{
			Name:        "confluence_delete_page",
			Description: "Delete a Confluence page by ID.",
			Category:    CategoryWrite,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_id": map[string]any{
						"type":        "string",
						"description": "The Confluence page ID to delete",
					},
				},
				"required": []string{"page_id"},
			},
		},
		{
			Name:        "confluence_search_pages",
			Description: "Search for Confluence pages using CQL (Confluence Query Language).",
			Category:    CategoryRead,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"cql": map[string]any{
						"type":        "string",
						"description": "CQL query string (e.g., 'space=TEST and type=page')",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default 25)",
					},
				},
				"required": []string{"cql"},
			},
		},
		{
			Name:        "confluence_get_space",
			Description: "Get metadata about a Confluence space by key.",
			Category:    CategoryRead,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"space_key": map[string]any{
						"type":        "string",
						"description": "The space key",
					},
				},
				"required": []string{"space_key"},
			},
		},
		{
			Name:        "markdown_convert",
			Description: "Convert Markdown to Confluence representations without touching the API. Returns Storage Format XHTML and/or the ADF document for inspection before publishing.",
			Category:    CategoryConvert,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"markdown": map[string]any{
						"type":        "string",
						"description": "The Markdown content to convert",
					},
					"format": map[string]any{
						"type":        "string",
						"description": "Target format: 'storage', 'adf', or 'both' (default)",
						"enum":        []string{"storage", "adf", "both"},
					},
				},
				"required": []string{"markdown"},
			},
		},
		{
			Name:        "markdown_preview",
			Description: "Render Markdown to plain HTML with syntax-highlighted code blocks for a quick local preview. The output is not Storage Format and cannot be uploaded.",
			Category:    CategoryConvert,
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"markdown": map[string]any{
						"type":        "string",
						"description": "The Markdown content to preview",
					},
				},
				"required": []string{"markdown"},
			},
		},
	}
}
