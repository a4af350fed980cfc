// Package throxy provides a client for the Throxy web-scraping tools API.
package throxy

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/uni-enrich/internal/resilience"
)

const defaultBaseURL = "https://app.throxy.ai/api/tools/web-scraping"

// Endpoint names.
const (
	endpointScrape    = "website-markdown-scrape"
	endpointSearch    = "tavily-search"
	endpointBuiltWith = "built-with"
)

// Client defines the Throxy scraping operations.
type Client interface {
	// WebsiteMarkdownScrape returns the page at targetURL rendered as markdown.
	WebsiteMarkdownScrape(ctx context.Context, targetURL string) (string, error)
	// Search runs a web search.
	Search(ctx context.Context, query string) (*SearchResponse, error)
	// BuiltWith lists the technologies detected on targetURL.
	BuiltWith(ctx context.Context, targetURL string) ([]string, error)
}

// SearchResponse is the data of a tavily-search call.
type SearchResponse struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score,omitempty"`
}

// envelope wraps every Throxy response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// APIError is a failed Throxy call with a caller-facing message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Option configures the Throxy client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second. Zero or negative disables the cap.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) {
		c.retry = p
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.Policy
}

// NewClient creates a new Throxy client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
		retry: resilience.DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.RetryLogger("throxy", "request")
	}
	return c
}

func (c *httpClient) WebsiteMarkdownScrape(ctx context.Context, targetURL string) (string, error) {
	data, err := c.request(ctx, http.MethodGet, endpointScrape, map[string]string{"url": targetURL})
	if err != nil {
		return "", err
	}
	var md string
	if err := json.Unmarshal(data, &md); err != nil {
		return "", eris.Wrap(err, "throxy: decode scrape data")
	}
	return md, nil
}

func (c *httpClient) Search(ctx context.Context, query string) (*SearchResponse, error) {
	data, err := c.request(ctx, http.MethodPost, endpointSearch, map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, eris.Wrap(err, "throxy: decode search data")
	}
	return &resp, nil
}

func (c *httpClient) BuiltWith(ctx context.Context, targetURL string) ([]string, error) {
	data, err := c.request(ctx, http.MethodGet, endpointBuiltWith, map[string]string{"url": targetURL})
	if err != nil {
		return nil, err
	}
	var techs []string
	if len(data) == 0 || string(data) == "null" {
		return techs, nil
	}
	if err := json.Unmarshal(data, &techs); err != nil {
		return nil, eris.Wrap(err, "throxy: decode built-with data")
	}
	return techs, nil
}

// request calls one endpoint with retries on transient failures and returns
// the envelope's data.
func (c *httpClient) request(ctx context.Context, method, endpoint string, params map[string]string) (json.RawMessage, error) {
	zap.L().Debug("throxy: request", zap.String("method", method), zap.String("endpoint", endpoint), zap.Any("params", params))

	data, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (json.RawMessage, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "throxy: rate limit wait")
			}
		}
		return c.do(ctx, method, endpoint, params)
	})
	if err != nil {
		zap.L().Error("throxy: request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, eris.Wrapf(err, "throxy: %s", endpoint)
	}
	return data, nil
}

func (c *httpClient) do(ctx context.Context, method, endpoint string, params map[string]string) (json.RawMessage, error) {
	u := c.baseURL + "/" + endpoint
	var body io.Reader
	if method == http.MethodGet {
		q := url.Values{}
		for k, v := range params {
			q.Set(k, v)
		}
		u += "?" + q.Encode()
	} else {
		b, err := json.Marshal(params)
		if err != nil {
			return nil, eris.Wrap(err, "marshal body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "http request")
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resilience.FromResponse(statusError(resp.StatusCode, raw), resp)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, eris.Wrap(err, "decode envelope")
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "Unknown error occurred"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return env.Data, nil
}

// statusError maps an HTTP failure to a caller-facing message.
func statusError(status int, body []byte) *APIError {
	switch {
	case status == http.StatusUnauthorized:
		return &APIError{StatusCode: status, Message: "Invalid Throxy API key"}
	case status == http.StatusTooManyRequests:
		return &APIError{StatusCode: status, Message: "Rate limit exceeded"}
	case status >= 500:
		return &APIError{StatusCode: status, Message: "Throxy API server error"}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &APIError{StatusCode: status, Message: env.Error}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: "Throxy API error: " + msg}
}
