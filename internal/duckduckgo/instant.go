package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/amityadav/searchproxy/internal/fetch"
	"github.com/amityadav/searchproxy/internal/search"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	InstantProviderName = "duckduckgo_instant"
	DefaultInstantURL   = "https://api.duckduckgo.com/"

	maxRelatedTopics = 3
)

// InstantClient queries the DuckDuckGo Instant Answer API
type InstantClient struct {
	endpoint  string
	userAgent string
	fetcher   fetch.Doer
	logger    *zap.Logger
}

// NewInstantClient creates a new instant-answer client
func NewInstantClient(endpoint, userAgent string, fetcher fetch.Doer, logger *zap.Logger) *InstantClient {
	if endpoint == "" {
		endpoint = DefaultInstantURL
	}
	if userAgent == "" {
		userAgent = DefaultBrowserUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstantClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		fetcher:   fetcher,
		logger:    logger.Named(InstantProviderName),
	}
}

// Name returns the provider identifier
func (c *InstantClient) Name() string {
	return InstantProviderName
}

// Fetch returns the abstract, definition and related topics for query, in that order
func (c *InstantClient) Fetch(ctx context.Context, query string) search.Result {
	resp, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodGet,
		URL:    c.endpoint,
		Query: url.Values{
			"q":             {query},
			"format":        {"json"},
			"no_html":       {"1"},
			"skip_disambig": {"1"},
		},
		Header: http.Header{"User-Agent": {c.userAgent}},
	})
	if err != nil {
		c.logger.Error("DuckDuckGo Instant Answer error", zap.Error(err))
		return search.Failed(InstantProviderName, "", err)
	}

	results, err := ParseInstantAnswer(resp.Body)
	if err != nil {
		c.logger.Error("DuckDuckGo Instant Answer error", zap.Error(err))
		return search.Failed(InstantProviderName, "", err)
	}

	if len(results) == 0 {
		c.logger.Info("DuckDuckGo Instant Answer returned nothing")
		return search.Empty(InstantProviderName)
	}

	c.logger.Info("DuckDuckGo Instant Answer found results", zap.Int("count", len(results)))
	return search.Found(InstantProviderName, results)
}

// ParseInstantAnswer extracts the summary, definition and up to three related topics.
// Only the first three RelatedTopics entries are considered, and only objects with a Text field count.
func ParseInstantAnswer(body []byte) ([]string, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid instant answer payload")
	}
	doc := gjson.ParseBytes(body)

	var results []string
	if abstract := doc.Get("AbstractText").String(); abstract != "" {
		results = append(results, "Summary: "+abstract)
	}
	if definition := doc.Get("Definition").String(); definition != "" {
		results = append(results, "Definition: "+definition)
	}

	var topics []gjson.Result
	if related := doc.Get("RelatedTopics"); related.IsArray() {
		topics = related.Array()
	}
	if len(topics) > maxRelatedTopics {
		topics = topics[:maxRelatedTopics]
	}
	for _, topic := range topics {
		if !topic.IsObject() {
			continue
		}
		if text := topic.Get("Text").String(); text != "" {
			results = append(results, "Related: "+text)
		}
	}

	return results, nil
}
