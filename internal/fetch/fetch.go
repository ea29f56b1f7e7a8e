package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"mt4-analyzer/internal/interfaces"
	"mt4-analyzer/internal/logger"
)

// Client downloads statement markup from a URL. Brokers publish
// statements as plain HTML pages, so a single GET with a browser user
// agent is enough.
type Client struct {
	timeout time.Duration
}

var _ interfaces.Fetcher = (*Client)(nil)

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{timeout: timeout}
}

// Fetch retrieves the raw response body of statementURL.
func (c *Client) Fetch(ctx context.Context, statementURL string) ([]byte, error) {
	parsed, err := url.Parse(statementURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid statement url %q", statementURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}

	logger.Info(ctx, "Fetching statement", "url", statementURL)

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Host),
		colly.MaxDepth(1),
	)
	collector.SetRequestTimeout(c.timeout)

	// Some brokers reject requests without a browser user agent.
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	})

	var body []byte
	collector.OnResponse(func(r *colly.Response) {
		body = make([]byte, len(r.Body))
		copy(body, r.Body)
	})

	var fetchErr error
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		logger.ErrorWithErr(ctx, "Statement fetch failed", err, "url", statementURL)
	})

	if err := collector.Visit(statementURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", statementURL, err)
	}
	collector.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response from %s", statementURL)
	}

	logger.Debug(ctx, "Statement fetched", "url", statementURL, "bytes", len(body))
	return body, nil
}
