// Package confluence provides a client for the Confluence REST API. Page
// content is written in Markdown; the client renders it to Storage Format or
// to the Atlassian Document Format before submission, and converts storage
// bodies back to Markdown on the read path.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/agentplexus/mcp-confluence-md/adf"
	"github.com/agentplexus/mcp-confluence-md/storage"
)

// Representation selects the body format submitted to the API.
type Representation string

const (
	// RepresentationStorage submits Storage Format XHTML.
	RepresentationStorage Representation = "storage"
	// RepresentationADF submits a serialized ADF document.
	RepresentationADF Representation = "atlas_doc_format"
)

// ParseRepresentation maps a user-supplied format name to a Representation.
// The empty string defaults to storage.
func ParseRepresentation(s string) (Representation, error) {
	switch s {
	case "", "storage":
		return RepresentationStorage, nil
	case "adf", "atlas_doc_format":
		return RepresentationADF, nil
	default:
		return "", fmt.Errorf("unknown representation %q (want storage or adf)", s)
	}
}

// Client is a Confluence REST API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       AuthMethod
}

// AuthMethod represents an authentication method.
type AuthMethod interface {
	Apply(req *http.Request)
}

// BasicAuth implements basic authentication using API tokens.
type BasicAuth struct {
	Username string
	Token    string // API token (not password)
}

// Apply implements AuthMethod.
func (b BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(b.Username, b.Token)
}

// BearerAuth implements bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply implements AuthMethod.
func (b BearerAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+b.Token)
}

// NewClient creates a new Confluence client.
func NewClient(baseURL string, auth AuthMethod, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		auth:       auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// APIError represents an error returned by the Confluence API.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("confluence API error %d: %s", e.StatusCode, e.Message)
}

// PageInfo contains metadata about a Confluence page.
type PageInfo struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Title    string `json:"title"`
	Version  int    `json:"version"`
	SpaceKey string `json:"spaceKey,omitempty"`
}

// SpaceInfo contains metadata about a Confluence space.
type SpaceInfo struct {
	ID          int    `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// renderBody converts Markdown to the requested representation's body value.
// Storage output is validated before it leaves the process.
func renderBody(source string, rep Representation) (string, error) {
	switch rep {
	case RepresentationADF:
		return adf.Render(source).Marshal()
	default:
		xhtml := storage.Render(source)
		if err := storage.Validate(xhtml); err != nil {
			return "", fmt.Errorf("validation error: %w", err)
		}
		return xhtml, nil
	}
}

// do issues one JSON request and returns the response body, converting any
// unexpected status to an APIError.
func (c *Client) do(ctx context.Context, method, u string, payload any, failMsg string, want ...int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.auth.Apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if len(want) == 0 {
		want = []int{http.StatusOK}
	}
	for _, status := range want {
		if resp.StatusCode == status {
			return body, nil
		}
	}
	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Message:    failMsg,
		Body:       string(body),
	}
}

// GetPage retrieves a page's raw Storage XHTML and metadata.
func (c *Client) GetPage(ctx context.Context, pageID string) (string, *PageInfo, error) {
	u := fmt.Sprintf("%s/rest/api/content/%s?expand=body.storage,version,space", c.baseURL, pageID)

	body, err := c.do(ctx, http.MethodGet, u, nil, "failed to get page")
	if err != nil {
		return "", nil, err
	}

	var result struct {
		ID     string `json:"id"`
		Type   string `json:"type"`
		Status string `json:"status"`
		Title  string `json:"title"`
		Body   struct {
			Storage struct {
				Value string `json:"value"`
			} `json:"storage"`
		} `json:"body"`
		Version struct {
			Number int `json:"number"`
		} `json:"version"`
		Space struct {
			Key string `json:"key"`
		} `json:"space"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", nil, fmt.Errorf("json decode error: %w", err)
	}

	info := &PageInfo{
		ID:       result.ID,
		Type:     result.Type,
		Status:   result.Status,
		Title:    result.Title,
		Version:  result.Version.Number,
		SpaceKey: result.Space.Key,
	}
	return result.Body.Storage.Value, info, nil
}

// GetPageMarkdown retrieves a page and converts its storage body to Markdown.
func (c *Client) GetPageMarkdown(ctx context.Context, pageID string) (string, *PageInfo, error) {
	xhtml, info, err := c.GetPage(ctx, pageID)
	if err != nil {
		return "", nil, err
	}

	md, err := storage.ToMarkdown(xhtml)
	if err != nil {
		return "", info, fmt.Errorf("convert storage to markdown: %w", err)
	}
	return md, info, nil
}

// CreatePage creates a page from Markdown content.
func (c *Client) CreatePage(ctx context.Context, spaceKey, title, source, parentID string, rep Representation) (string, error) {
	value, err := renderBody(source, rep)
	if err != nil {
		return "", err
	}
	return c.createPage(ctx, spaceKey, title, value, parentID, rep)
}

// CreatePageRaw creates a page from raw Storage XHTML.
func (c *Client) CreatePageRaw(ctx context.Context, spaceKey, title, xhtml, parentID string) (string, error) {
	if err := storage.Validate(xhtml); err != nil {
		return "", fmt.Errorf("validation error: %w", err)
	}
	return c.createPage(ctx, spaceKey, title, xhtml, parentID, RepresentationStorage)
}

func (c *Client) createPage(ctx context.Context, spaceKey, title, value, parentID string, rep Representation) (string, error) {
	u := fmt.Sprintf("%s/rest/api/content", c.baseURL)

	payload := map[string]any{
		"type":  "page",
		"title": title,
		"space": map[string]string{"key": spaceKey},
		"body":  bodyField(value, rep),
	}
	if parentID != "" {
		payload["ancestors"] = []map[string]string{{"id": parentID}}
	}

	body, err := c.do(ctx, http.MethodPost, u, payload, "failed to create page",
		http.StatusOK, http.StatusCreated)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("json decode error: %w", err)
	}
	return result.ID, nil
}

// UpdatePage updates a page with Markdown content. version is the page's
// current version; the API receives version+1.
func (c *Client) UpdatePage(ctx context.Context, pageID, title, source string, version int, rep Representation) error {
	value, err := renderBody(source, rep)
	if err != nil {
		return err
	}
	return c.updatePage(ctx, pageID, title, value, version, rep)
}

// UpdatePageRaw updates a page with raw Storage XHTML.
func (c *Client) UpdatePageRaw(ctx context.Context, pageID, title, xhtml string, version int) error {
	if err := storage.Validate(xhtml); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return c.updatePage(ctx, pageID, title, xhtml, version, RepresentationStorage)
}

func (c *Client) updatePage(ctx context.Context, pageID, title, value string, version int, rep Representation) error {
	u := fmt.Sprintf("%s/rest/api/content/%s", c.baseURL, pageID)

	payload := map[string]any{
		"type":    "page",
		"title":   title,
		"body":    bodyField(value, rep),
		"version": map[string]int{"number": version + 1},
	}

	_, err := c.do(ctx, http.MethodPut, u, payload, "failed to update page")
	return err
}

// bodyField builds the representation-keyed body object the content API
// expects: {"storage": {...}} or {"atlas_doc_format": {...}}.
func bodyField(value string, rep Representation) map[string]any {
	if rep == "" {
		rep = RepresentationStorage
	}
	return map[string]any{
		string(rep): map[string]string{
			"value":          value,
			"representation": string(rep),
		},
	}
}

// DeletePage deletes a page by ID.
func (c *Client) DeletePage(ctx context.Context, pageID string) error {
	u := fmt.Sprintf("%s/rest/api/content/%s", c.baseURL, pageID)
	_, err := c.do(ctx, http.MethodDelete, u, nil, "failed to delete page",
		http.StatusNoContent, http.StatusOK)
	return err
}

// GetSpace retrieves information about a space.
func (c *Client) GetSpace(ctx context.Context, spaceKey string) (*SpaceInfo, error) {
	u := fmt.Sprintf("%s/rest/api/space/%s", c.baseURL, spaceKey)

	body, err := c.do(ctx, http.MethodGet, u, nil, "failed to get space")
	if err != nil {
		return nil, err
	}

	var result SpaceInfo
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("json decode error: %w", err)
	}
	return &result, nil
}

// SearchPages searches for pages matching the given CQL query.
func (c *Client) SearchPages(ctx context.Context, cql string, limit int) ([]PageInfo, error) {
	u := fmt.Sprintf("%s/rest/api/content/search?cql=%s&limit=%d",
		c.baseURL, url.QueryEscape(cql), limit)

	body, err := c.do(ctx, http.MethodGet, u, nil, "failed to search pages")
	if err != nil {
		return nil, err
	}

	var result struct {
		Results []struct {
			ID     string `json:"id"`
			Type   string `json:"type"`
			Status string `json:"status"`
			Title  string `json:"title"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("json decode error: %w", err)
	}

	pages := make([]PageInfo, len(result.Results))
	for i, r := range result.Results {
		pages[i] = PageInfo{
			ID:     r.ID,
			Type:   r.Type,
			Status: r.Status,
			Title:  r.Title,
		}
	}
	return pages, nil
}
