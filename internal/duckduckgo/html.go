package duckduckgo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/amityadav/searchproxy/internal/fetch"
	"github.com/amityadav/searchproxy/internal/search"
	"go.uber.org/zap"
)

const (
	HTMLProviderName = "duckduckgo_html"
	DefaultHTMLURL   = "https://html.duckduckgo.com/html/"

	// DefaultBrowserUserAgent is sent to the HTML endpoint, which blocks default client identifiers
	DefaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxResultBlocks bounds the raw result blocks scanned, not the snippets produced
	maxResultBlocks = 5
)

// HTMLClient scrapes the DuckDuckGo HTML results page
type HTMLClient struct {
	endpoint  string
	userAgent string
	fetcher   fetch.Doer
	logger    *zap.Logger
}

// NewHTMLClient creates a new HTML search client
func NewHTMLClient(endpoint, userAgent string, fetcher fetch.Doer, logger *zap.Logger) *HTMLClient {
	if endpoint == "" {
		endpoint = DefaultHTMLURL
	}
	if userAgent == "" {
		userAgent = DefaultBrowserUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLClient{
		endpoint:  endpoint,
		userAgent: userAgent,
		fetcher:   fetcher,
		logger:    logger.Named(HTMLProviderName),
	}
}

// Name returns the provider identifier
func (c *HTMLClient) Name() string {
	return HTMLProviderName
}

// Fetch posts the query to the HTML endpoint and extracts "title: snippet" lines
func (c *HTMLClient) Fetch(ctx context.Context, query string) search.Result {
	resp, err := c.fetcher.Do(ctx, fetch.Request{
		Method: http.MethodPost,
		URL:    c.endpoint,
		Form:   url.Values{"q": {query}},
		Header: http.Header{
			"User-Agent":      {c.userAgent},
			"Accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
			"Accept-Language": {"en-US,en;q=0.9"},
		},
	})
	if err != nil {
		c.logger.Error("DuckDuckGo HTML search error", zap.Error(err))
		return search.Failed(HTMLProviderName, "", err)
	}

	results, err := ParseHTMLResults(bytes.NewReader(resp.Body))
	if err != nil {
		c.logger.Error("failed to parse DuckDuckGo HTML", zap.Error(err))
		return search.Failed(HTMLProviderName, "", err)
	}

	if len(results) == 0 {
		c.logger.Info("DuckDuckGo HTML search returned no results")
		return search.Empty(HTMLProviderName)
	}

	c.logger.Info("DuckDuckGo HTML search found results", zap.Int("count", len(results)))
	return search.Found(HTMLProviderName, results)
}

// ParseHTMLResults extracts up to the first five result blocks of a results page.
// Blocks without a title are skipped but still count toward the limit.
func ParseHTMLResults(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var results []string
	doc.Find("div.result").EachWithBreak(func(i int, block *goquery.Selection) bool {
		if i >= maxResultBlocks {
			return false
		}

		title := cleanText(block.Find("a.result__a").First().Text())
		if title == "" {
			return true
		}

		snippetSel := block.Find("a.result__snippet").First()
		if snippetSel.Length() > 0 {
			results = append(results, fmt.Sprintf("%s: %s", title, cleanText(snippetSel.Text())))
		} else {
			results = append(results, title)
		}
		return true
	})

	return results, nil
}

// cleanText collapses runs of whitespace left over from markup
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
