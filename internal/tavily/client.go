package tavily

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/amityadav/searchproxy/internal/fetch"
	"github.com/amityadav/searchproxy/internal/search"
	"go.uber.org/zap"
)

const (
	ProviderName      = "tavily"
	DefaultURL        = "https://api.tavily.com/search"
	defaultMaxResults = 5
)

// Client is a Tavily Search API client
type Client struct {
	apiKey     string
	endpoint   string
	maxResults int
	fetcher    fetch.Doer
	logger     *zap.Logger
}

// NewClient creates a new Tavily API client
func NewClient(apiKey, endpoint string, fetcher fetch.Doer, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   endpoint,
		maxResults: defaultMaxResults,
		fetcher:    fetcher,
		logger:     logger.Named(ProviderName),
	}
}

// SearchRequest represents the Tavily search request payload
type SearchRequest struct {
	Query         string `json:"query"`
	APIKey        string `json:"api_key"`
	SearchDepth   string `json:"search_depth,omitempty"` // "basic" or "advanced"
	IncludeAnswer bool   `json:"include_answer,omitempty"`
	MaxResults    int    `json:"max_results,omitempty"`
}

// SearchResult represents a single search result from Tavily
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"` // Snippet
	Score   float64 `json:"score"`
}

// SearchResponse represents the Tavily search response
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return ProviderName
}

// Search performs a search using the Tavily API
func (c *Client) Search(ctx context.Context, query string) (*SearchResponse, error) {
	c.logger.Debug("searching", zap.String("query", query), zap.Int("max_results", c.maxResults))

	resp, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    c.endpoint,
		JSON: SearchRequest{
			Query:         query,
			APIKey:        c.apiKey,
			SearchDepth:   "basic",
			IncludeAnswer: true,
			MaxResults:    c.maxResults,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tavily search failed: %w", err)
	}

	var searchResp SearchResponse
	if err := json.Unmarshal(resp.Body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &searchResp, nil
}

// Fetch implements search.Provider. The generated answer, when present, comes first.
func (c *Client) Fetch(ctx context.Context, query string) search.Result {
	resp, err := c.Search(ctx, query)
	if err != nil {
		c.logger.Error("Tavily error", zap.Error(err))
		return search.Failed(ProviderName, "", err)
	}

	var snippets []string
	if resp.Answer != "" {
		snippets = append(snippets, "Answer: "+resp.Answer)
	}
	for _, r := range resp.Results {
		if r.Title == "" {
			continue
		}
		if r.Content == "" {
			snippets = append(snippets, r.Title)
			continue
		}
		snippets = append(snippets, fmt.Sprintf("%s: %s", r.Title, r.Content))
	}

	c.logger.Info("Tavily search finished", zap.Int("count", len(snippets)))
	return search.Found(ProviderName, snippets)
}
