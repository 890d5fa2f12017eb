// Package tavily implements web search for the news and social analysts.
package tavily

import (
	"context"
	"fmt"
	"time"

	"StockSage/internal/domain/models"
	xhttp "StockSage/pkg/http"
)

const defaultBaseURL = "https://api.tavily.com/search"

// Client calls the Tavily search API.
type Client struct {
	apiKey  string
	baseURL string
	http    *xhttp.Client
}

// NewClient creates a Tavily client. An empty baseURL uses the public API.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    xhttp.NewClient(xhttp.WithTimeout(20 * time.Second)),
	}
}

type searchRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	Topic       string `json:"topic,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
	Days        int    `json:"days,omitempty"`
}

type searchResponse struct {
	Query   string `json:"query"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search runs one query. Topic is "news" or "general"; maxResults caps the
// returned hits (default 5).
func (c *Client) Search(ctx context.Context, query, topic string, maxResults int) ([]models.SearchResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("tavily: api key not configured")
	}
	if topic == "" {
		topic = "general"
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	req := searchRequest{
		Query:       query,
		SearchDepth: "basic",
		Topic:       topic,
		MaxResults:  maxResults,
	}

	var resp searchResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: "POST",
		URL:    c.baseURL,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.apiKey,
			"Content-Type":  "application/json",
		},
		Body: req,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("tavily search: %w", err)
	}

	results := make([]models.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, models.SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Score:         r.Score,
			PublishedDate: r.PublishedDate,
		})
	}

	return results, nil
}
