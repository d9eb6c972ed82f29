package mcpserver

import (
	"context"
	"fmt"

	"github.com/agentplexus/mcp-confluence-md/confluence"
)

func (s *Server) handleReadPage(ctx context.Context, input map[string]any) (any, error) {
	pageID, ok := input["page_id"].(string)
	if !ok || pageID == "" {
		return nil, fmt.Errorf("page_id is required")
	}

	md, info, err := s.client.GetPageMarkdown(ctx, pageID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"page_id":   info.ID,
		"title":     info.Title,
		"version":   info.Version,
		"space_key": info.SpaceKey,
		"markdown":  md,
	}, nil
}

func (s *Server) handleReadPageStorage(ctx context.Context, input map[string]any) (any, error) {
	pageID, ok := input["page_id"].(string)
	if !ok || pageID == "" {
		return nil, fmt.Errorf("page_id is required")
	}

	xhtml, info, err := s.client.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"page_id":   info.ID,
		"title":     info.Title,
		"version":   info.Version,
		"space_key": info.SpaceKey,
		"storage":   xhtml,
	}, nil
}

func (s *Server) handleCreatePage(ctx context.Context, input map[string]any) (any, error) {
	spaceKey, _ := input["space_key"].(string)
	title, _ := input["title"].(string)
	source, _ := input["markdown"].(string)
	parentID, _ := input["parent_id"].(string)
	format, _ := input["format"].(string)

	if spaceKey == "" {
		return nil, fmt.Errorf("space_key is required")
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if source == "" {
		return nil, fmt.Errorf("markdown is required")
	}

	rep, err := confluence.ParseRepresentation(format)
	if err != nil {
		return nil, err
	}

	pageID, err := s.client.CreatePage(ctx, spaceKey, title, source, parentID, rep)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"status":    "created",
		"page_id":   pageID,
		"title":     title,
		"space_key": spaceKey,
	}, nil
}

func (s *Server) handleUpdatePage(ctx context.Context, input map[string]any) (any, error) {
	pageID, _ := input["page_id"].(string)
	title, _ := input["title"].(string)
	source, _ := input["markdown"].(string)
	format, _ := input["format"].(string)

	if pageID == "" {
		return nil, fmt.Errorf("page_id is required")
	}
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if source == "" {
		return nil, fmt.Errorf("markdown is required")
	}

	rep, err := confluence.ParseRepresentation(format)
	if err != nil {
		return nil, err
	}

	// Get current version
	_, info, err := s.client.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current version: %w", err)
	}

	if err := s.client.UpdatePage(ctx, pageID, title, source, info.Version, rep); err != nil {
		return nil, err
	}

	return map[string]any{
		"status":  "updated",
		"page_id": pageID,
		"title":   title,
		"version": info.Version + 1,
	}, nil
}

func (s *Server) handleDeletePage(ctx context.Context, input map[string]any) (any, error) {
	pageID, ok := input["page_id"].(string)
	if !ok || pageID == "" {
		return nil, fmt.Errorf("page_id is required")
	}

	if err := s.client.DeletePage(ctx, pageID); err != nil {
		return nil, err
	}

	return map[string]any{
		"status":  "deleted",
		"page_id": pageID,
	}, nil
}

func (s *Server) handleSearchPages(ctx context.Context, input map[string]any) (any, error) {
	cql, ok := input["cql"].(string)
	if !ok || cql == "" {
		return nil, fmt.Errorf("cql is required")
	}

	limit := 25
	if l, ok := input["limit"].(float64); ok {
		limit = int(l)
	}

	pages, err := s.client.SearchPages(ctx, cql, limit)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, len(pages))
	for i, p := range pages {
		results[i] = map[string]any{
			"page_id": p.ID,
			"title":   p.Title,
			"type":    p.Type,
			"status":  p.Status,
		}
	}

	return map[string]any{
		"count":   len(results),
		"results": results,
	}, nil
}

func (s *Server) handleGetSpace(ctx context.Context, input map[string]any) (any, error) {
	spaceKey, ok := input["space_key"].(string)
	if !ok || spaceKey == "" {
		return nil, fmt.Errorf("space_key is required")
	}

	space, err := s.client.GetSpace(ctx, spaceKey)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"id":          space.ID,
		"key":         space.Key,
		"name":        space.Name,
		"type":        space.Type,
		"description": space.Description,
	}, nil
}
