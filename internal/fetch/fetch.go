package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amityadav/searchproxy/internal/retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a provider response is read into memory
const maxBodyBytes = 5 << 20

// StatusError is returned for a non-200 response that is not worth retrying
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, e.Body)
}

// Request describes one outbound call. Exactly one of Form or JSON may be set.
type Request struct {
	Method string
	URL    string
	Query  url.Values
	Form   url.Values
	JSON   any
	Header http.Header
}

// Response is a fully read provider response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Doer is implemented by Client; providers depend on it so tests can substitute it
type Doer interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// Options configures a Client
type Options struct {
	Timeout    time.Duration
	UserAgent  string
	RatePerSec float64
	Retry      retry.Policy
}

// Client is the shared outbound HTTP client for all providers.
// Transport errors and HTTP 429 are retried according to the retry policy.
type Client struct {
	http      *http.Client
	userAgent string
	retry     retry.Policy
	logger    *zap.Logger

	ratePerSec float64
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
}

// NewClient creates a new outbound client
func NewClient(opts Options, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		http:       &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		retry:      opts.Retry,
		logger:     logger.Named("fetch"),
		ratePerSec: opts.RatePerSec,
		limiters:   map[string]*rate.Limiter{},
	}
	observe := opts.Retry.OnRetry
	c.retry.OnRetry = func(next int, delay time.Duration, err error) {
		c.logger.Warn("transient failure, retrying",
			zap.Int("next_attempt", next),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if observe != nil {
			observe(next, delay, err)
		}
	}
	return c
}

// Do performs req, retrying transient failures. A nil error means status 200.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	target, err := buildURL(req.URL, req.Query)
	if err != nil {
		return nil, err
	}

	var resp *Response
	err = c.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		r, err := c.attempt(ctx, req, target)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, req Request, target *url.URL) (*Response, error) {
	if err := c.wait(ctx, target.Host); err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, req, target)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("sending request", zap.String("method", httpReq.Method), zap.String("url", target.String()))

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Retryable(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, retry.Retryable(fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug("response received", zap.String("host", target.Host), zap.Int("status", httpResp.StatusCode))

	switch {
	case httpResp.StatusCode == http.StatusOK:
		return &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: body}, nil
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, retry.Retryable(&StatusError{StatusCode: httpResp.StatusCode})
	default:
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: truncate(string(body), 200)}
	}
}

func (c *Client) newRequest(ctx context.Context, req Request, target *url.URL) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	return httpReq, nil
}

// wait blocks on the per-host limiter when outbound throttling is enabled
func (c *Client) wait(ctx context.Context, host string) error {
	if c.ratePerSec <= 0 {
		return nil
	}
	c.mu.Lock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.ratePerSec), 1)
		c.limiters[host] = l
	}
	c.mu.Unlock()
	return l.Wait(ctx)
}

func buildURL(raw string, query url.Values) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
