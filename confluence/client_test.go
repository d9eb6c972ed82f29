package confluence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseRepresentation(t *testing.T) {
	tests := []struct {
		input   string
		want    Representation
		wantErr bool
	}{
		{"", RepresentationStorage, false},
		{"storage", RepresentationStorage, false},
		{"adf", RepresentationADF, false},
		{"atlas_doc_format", RepresentationADF, false},
		{"xhtml", "", true},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			got, err := ParseRepresentation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepresentation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRepresentation(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/rest/api/content/12345") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if !strings.Contains(r.URL.RawQuery, "expand=body.storage") {
			t.Errorf("query = %s, want body.storage expansion", r.URL.RawQuery)
		}
		if user, _, ok := r.BasicAuth(); !ok || user != "user@example.com" {
			t.Errorf("basic auth user = %q", user)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "12345",
			"type":   "page",
			"status": "current",
			"title":  "Test Page",
			"body": map[string]any{
				"storage": map[string]any{"value": "<p>hello</p>"},
			},
			"version": map[string]any{"number": 7},
			"space":   map[string]any{"key": "TEST"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "user@example.com", Token: "token"})

	xhtml, info, err := client.GetPage(context.Background(), "12345")
	if err != nil {
		t.Fatalf("GetPage() error = %v", err)
	}
	if xhtml != "<p>hello</p>" {
		t.Errorf("xhtml = %q", xhtml)
	}
	if info.Title != "Test Page" {
		t.Errorf("Title = %q", info.Title)
	}
	if info.Version != 7 {
		t.Errorf("Version = %d, want 7", info.Version)
	}
	if info.SpaceKey != "TEST" {
		t.Errorf("SpaceKey = %q, want TEST", info.SpaceKey)
	}
}

func TestGetPageMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "12345",
			"title": "Test Page",
			"body": map[string]any{
				"storage": map[string]any{"value": "<h1>Title</h1><p><strong>bold</strong></p>"},
			},
			"version": map[string]any{"number": 1},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	md, _, err := client.GetPageMarkdown(context.Background(), "12345")
	if err != nil {
		t.Fatalf("GetPageMarkdown() error = %v", err)
	}
	if !strings.Contains(md, "# Title") {
		t.Errorf("markdown = %q, want heading", md)
	}
	if !strings.Contains(md, "**bold**") {
		t.Errorf("markdown = %q, want bold", md)
	}
}

func TestCreatePage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "99999"})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	pageID, err := client.CreatePage(context.Background(), "TEST", "New Page", "# Hello\n", "777", RepresentationStorage)
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if pageID != "99999" {
		t.Errorf("pageID = %q, want 99999", pageID)
	}

	if captured["title"] != "New Page" {
		t.Errorf("title = %v", captured["title"])
	}
	space, _ := captured["space"].(map[string]any)
	if space["key"] != "TEST" {
		t.Errorf("space = %v", captured["space"])
	}

	body, _ := captured["body"].(map[string]any)
	storageBody, _ := body["storage"].(map[string]any)
	if storageBody["representation"] != "storage" {
		t.Errorf("representation = %v", storageBody["representation"])
	}
	value, _ := storageBody["value"].(string)
	if !strings.Contains(value, "<h1>Hello</h1>") {
		t.Errorf("body value = %q, want rendered heading", value)
	}

	ancestors, _ := captured["ancestors"].([]any)
	if len(ancestors) != 1 {
		t.Fatalf("ancestors = %v, want one entry", captured["ancestors"])
	}
	parent, _ := ancestors[0].(map[string]any)
	if parent["id"] != "777" {
		t.Errorf("parent id = %v, want 777", parent["id"])
	}
}

func TestCreatePageADF(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	if _, err := client.CreatePage(context.Background(), "TEST", "ADF Page", "# Hello\n", "", RepresentationADF); err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}

	body, _ := captured["body"].(map[string]any)
	adfBody, _ := body["atlas_doc_format"].(map[string]any)
	if adfBody == nil {
		t.Fatalf("body = %v, want atlas_doc_format field", captured["body"])
	}
	if adfBody["representation"] != "atlas_doc_format" {
		t.Errorf("representation = %v", adfBody["representation"])
	}

	var doc map[string]any
	value, _ := adfBody["value"].(string)
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		t.Fatalf("value is not JSON: %v", err)
	}
	if doc["type"] != "doc" {
		t.Errorf("doc type = %v, want doc", doc["type"])
	}
	if _, ok := captured["ancestors"]; ok {
		t.Error("ancestors present without parent_id")
	}
}

func TestUpdatePage(t *testing.T) {
	var captured map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "12345"})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	if err := client.UpdatePage(context.Background(), "12345", "Updated", "new text\n", 7, RepresentationStorage); err != nil {
		t.Fatalf("UpdatePage() error = %v", err)
	}

	version, _ := captured["version"].(map[string]any)
	if version["number"] != float64(8) {
		t.Errorf("version = %v, want 8", version["number"])
	}
}

func TestUpdatePageRawRejectsInvalid(t *testing.T) {
	client := NewClient("http://unused", BasicAuth{Username: "u", Token: "t"})

	err := client.UpdatePageRaw(context.Background(), "1", "T", "<div>bad</div>", 1)
	if err == nil {
		t.Fatal("UpdatePageRaw() = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "validation") {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestDeletePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	if err := client.DeletePage(context.Background(), "12345"); err != nil {
		t.Fatalf("DeletePage() error = %v", err)
	}
}

func TestGetSpace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/rest/api/space/TEST") {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":   42,
			"key":  "TEST",
			"name": "Test Space",
			"type": "global",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	space, err := client.GetSpace(context.Background(), "TEST")
	if err != nil {
		t.Fatalf("GetSpace() error = %v", err)
	}
	if space.Key != "TEST" || space.Name != "Test Space" {
		t.Errorf("space = %+v", space)
	}
}

func TestSearchPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("cql"); got != "space=TEST" {
			t.Errorf("cql = %q, want space=TEST", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("limit = %q, want 10", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"id": "1", "type": "page", "status": "current", "title": "First"},
				{"id": "2", "type": "page", "status": "current", "title": "Second"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	pages, err := client.SearchPages(context.Background(), "space=TEST", 10)
	if err != nil {
		t.Fatalf("SearchPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if pages[1].Title != "Second" {
		t.Errorf("Title = %q", pages[1].Title)
	}
}

func TestAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"no such page"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, BasicAuth{Username: "u", Token: "t"})

	_, _, err := client.GetPage(context.Background(), "missing")
	if err == nil {
		t.Fatal("GetPage() = nil, want error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error is %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "no such page") {
		t.Errorf("Body = %q", apiErr.Body)
	}
}

func TestBearerAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, BearerAuth{Token: "secret"})

	if _, err := client.SearchPages(context.Background(), "space=X", 1); err != nil {
		t.Fatalf("SearchPages() error = %v", err)
	}
}
