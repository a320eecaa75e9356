package serpapi

import (
	"context"
	"fmt"
	"strconv"

	"github.com/amityadav/searchproxy/internal/search"
	g "github.com/serpapi/google-search-results-golang"
	"go.uber.org/zap"
)

const (
	ProviderName      = "serpapi"
	defaultMaxResults = 5
)

// searchFunc runs one Google search and returns the raw JSON document
type searchFunc func(parameter map[string]string, apiKey string) (map[string]interface{}, error)

// Client is a wrapper around the SerpApi search service
type Client struct {
	apiKey     string
	maxResults int
	search     searchFunc
	logger     *zap.Logger
}

// NewClient creates a new SerpApi client
func NewClient(apiKey string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		maxResults: defaultMaxResults,
		search:     googleSearch,
		logger:     logger.Named(ProviderName),
	}
}

func googleSearch(parameter map[string]string, apiKey string) (map[string]interface{}, error) {
	s := g.NewGoogleSearch(parameter, apiKey)
	return s.GetJSON()
}

// Name returns the provider identifier
func (c *Client) Name() string {
	return ProviderName
}

// Fetch performs a Google search via SerpApi and returns "title: snippet" lines.
// The SDK has no context support, so a cancelled request abandons the call.
func (c *Client) Fetch(ctx context.Context, query string) search.Result {
	if c.apiKey == "" {
		return search.Failed(ProviderName, "", fmt.Errorf("SerpApi API key is not set"))
	}

	parameter := map[string]string{
		"engine": "google",
		"q":      query,
		"gl":     "us",
		"hl":     "en",
		"num":    strconv.Itoa(c.maxResults),
	}

	type outcome struct {
		doc map[string]interface{}
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		doc, err := c.search(parameter, c.apiKey)
		done <- outcome{doc: doc, err: err}
	}()

	var out outcome
	select {
	case <-ctx.Done():
		c.logger.Warn("SerpApi search abandoned", zap.Error(ctx.Err()))
		return search.Failed(ProviderName, "", ctx.Err())
	case out = <-done:
	}

	if out.err != nil {
		c.logger.Error("SerpApi search failed", zap.Error(out.err))
		return search.Failed(ProviderName, "", fmt.Errorf("serpapi search failed: %w", out.err))
	}

	snippets := ParseOrganicResults(out.doc, c.maxResults)
	c.logger.Info("SerpApi search finished", zap.Int("count", len(snippets)))
	return search.Found(ProviderName, snippets)
}

// ParseOrganicResults converts the organic_results node into snippets, keeping at most limit entries
func ParseOrganicResults(doc map[string]interface{}, limit int) []string {
	organicResults, ok := doc["organic_results"].([]interface{})
	if !ok {
		return nil
	}

	var snippets []string
	for _, item := range organicResults {
		if len(snippets) >= limit {
			break
		}
		res, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		title, _ := res["title"].(string)
		snippet, _ := res["snippet"].(string)
		if title == "" {
			continue
		}
		if snippet == "" {
			snippets = append(snippets, title)
			continue
		}
		snippets = append(snippets, fmt.Sprintf("%s: %s", title, snippet))
	}
	return snippets
}
