package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amityadav/searchproxy/internal/fetch"
	"github.com/amityadav/searchproxy/internal/search"
	"go.uber.org/zap"
)

const (
	ProviderName = "wikipedia"
	DefaultURL   = "https://en.wikipedia.org/w/api.php"

	MsgNoResults = "No relevant information found"

	maxHits = 3
)

var snippetCleaner = strings.NewReplacer(
	`<span class="searchmatch">`, "",
	"</span>", "",
	"&#039;", "'",
)

type hit struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Query *struct {
		Search *[]hit `json:"search"`
	} `json:"query"`
}

// Client searches Wikipedia pages through the MediaWiki API
type Client struct {
	endpoint string
	fetcher  fetch.Doer
	logger   *zap.Logger
}

// NewClient creates a new Wikipedia search client
func NewClient(endpoint string, fetcher fetch.Doer, logger *zap.Logger) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		fetcher:  fetcher,
		logger:   logger.Named(ProviderName),
	}
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return ProviderName
}

// Fetch returns "Title: snippet" for the top three search hits
func (c *Client) Fetch(ctx context.Context, query string) search.Result {
	resp, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    c.endpoint,
		Query: url.Values{
			"action":   {"query"},
			"format":   {"json"},
			"list":     {"search"},
			"srsearch": {query},
			"utf8":     {"1"},
		},
	})
	if err != nil {
		var statusErr *fetch.StatusError
		if errors.As(err, &statusErr) {
			c.logger.Warn("Wikipedia search returned error status", zap.Int("status", statusErr.StatusCode))
			return search.Failed(ProviderName, fmt.Sprintf("Search failed with status: %d", statusErr.StatusCode), err)
		}
		c.logger.Error("Wikipedia error", zap.Error(err))
		return search.Failed(ProviderName, fmt.Sprintf("Search failed: %v", err), err)
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body, &sr); err != nil {
		c.logger.Error("Wikipedia error", zap.Error(err))
		return search.Failed(ProviderName, fmt.Sprintf("Search failed: %v", err), err)
	}
	if sr.Query == nil || sr.Query.Search == nil {
		c.logger.Info("Wikipedia response has no search results field")
		return search.NotFound(ProviderName, MsgNoResults)
	}

	hits := *sr.Query.Search
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}

	results := make([]string, 0, len(hits))
	for _, h := range hits {
		results = append(results, fmt.Sprintf("%s: %s", h.Title, CleanSnippet(h.Snippet)))
	}

	c.logger.Info("Wikipedia search found results", zap.Int("count", len(results)))
	return search.Found(ProviderName, results)
}

// CleanSnippet strips search highlight markup and decodes the apostrophe entity
func CleanSnippet(s string) string {
	return snippetCleaner.Replace(s)
}
