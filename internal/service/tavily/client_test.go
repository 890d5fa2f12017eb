package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header %q", got)
		}

		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "AAPL stock news" {
			t.Fatalf("unexpected query %q", req.Query)
		}
		if req.Topic != "news" {
			t.Fatalf("unexpected topic %q", req.Topic)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"query": req.Query,
			"results": []map[string]interface{}{
				{"title": "Apple beats earnings", "url": "https://example.com/1", "content": "...", "score": 0.92},
			},
		})
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	results, err := c.Search(context.Background(), "AAPL stock news", "news", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Apple beats earnings" {
		t.Fatalf("unexpected title %q", results[0].Title)
	}
}

func TestSearchWithoutKey(t *testing.T) {
	c := NewClient("", "")
	if _, err := c.Search(context.Background(), "anything", "", 0); err == nil {
		t.Fatalf("expected error without api key")
	}
}
