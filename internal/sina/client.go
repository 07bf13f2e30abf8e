package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/camuig/sina-stock-bot/internal/logger"
)

const (
	DefaultQuoteURL   = "https://hq.sinajs.cn"
	DefaultSuggestURL = "https://suggest3.sinajs.cn"
	DefaultReferer    = "https://finance.sina.com.cn"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=sina -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Sina quote and suggest endpoints.
type Client struct {
	httpClient HTTPClient
	quoteURL   string
	suggestURL string
	referer    string
	logger     *logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the timeout on a copy of the current *http.Client. Zero
// means no timeout. Other HTTPClient implementations are left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc, ok := c.httpClient.(*http.Client)
		if !ok {
			return
		}
		timed := *hc
		timed.Timeout = d
		c.httpClient = &timed
	}
}

// WithQuoteURL sets the base URL of the batched quote endpoint.
func WithQuoteURL(u string) Option {
	return func(c *Client) {
		c.quoteURL = u
	}
}

// WithSuggestURL sets the base URL of the autocomplete endpoint.
func WithSuggestURL(u string) Option {
	return func(c *Client) {
		c.suggestURL = u
	}
}

// WithReferer sets the Referer header. The quote endpoint refuses
// requests without one.
func WithReferer(referer string) Option {
	return func(c *Client) {
		c.referer = referer
	}
}

func NewClient(log *logger.Logger, options ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		quoteURL:   DefaultQuoteURL,
		suggestURL: DefaultSuggestURL,
		referer:    DefaultReferer,
		logger:     log,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// get performs a GET and returns the body decoded from GB18030.
func (c *Client) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if c.referer != "" {
		req.Header.Set("Referer", c.referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sina returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	utf8Body, err := simplifiedchinese.GB18030.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return string(utf8Body), nil
}

// assignments fetches url and parses its assignment statements. Malformed
// lines are logged and dropped.
func (c *Client) assignments(ctx context.Context, url string) ([]Assignment, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	assigns, err := ParseAssignments(body)
	if err != nil {
		c.logger.Warn("malformed sina response lines", "url", url, "error", err)
	}
	return assigns, nil
}
