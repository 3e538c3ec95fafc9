package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultUserAgent   = "NaviReader/0.1"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxBodySize = 10 << 20
)

var ErrBodyTooLarge = errors.New("response body too large")

type ClientOptions struct {
	UserAgent      string
	Timeout        time.Duration // Total time allowed for one feed download
	MaxBodySize    int64
	HostDelay      time.Duration // Minimum spacing between requests to one host, 0 disables
	ExtractContent bool
	Filters        []Filter
}

// Client downloads feeds and turns them into normalized articles.
type Client struct {
	httpClient *http.Client
	parser     *Parser
	filterer   *Filterer
	extractor  *ContentExtractor
	limiter    *HostRateLimiter
	opts       ClientOptions
	now        func() time.Time
}

func NewClient(httpClient *http.Client, opts ClientOptions) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}

	c := &Client{
		httpClient: httpClient,
		parser:     NewParser(),
		filterer:   NewFilterer(opts.Filters),
		opts:       opts,
		now:        time.Now,
	}
	if opts.ExtractContent {
		c.extractor = NewContentExtractor()
	}
	if opts.HostDelay > 0 {
		c.limiter = NewHostRateLimiter(opts.HostDelay)
	}

	return c
}

// Fetch downloads and parses one feed. It makes a single attempt.
func (c *Client) Fetch(ctx context.Context, feedURL string) (*Feed, error) {
	data, err := c.get(ctx, feedURL, "")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := c.parser.Run(feedURL, data)
	if err != nil {
		return nil, err
	}
	feed.FetchedAt = c.now().UTC()

	feed.Items, feed.Filtered = c.filterer.Run(feed.Items)

	if c.extractor != nil {
		c.extractContent(ctx, feed)
	}

	return feed, nil
}

func (c *Client) extractContent(ctx context.Context, feed *Feed) {
	for i := range feed.Items {
		item := &feed.Items[i]
		if strings.TrimSpace(item.Content) != "" && item.Content != item.Description {
			continue
		}
		if item.Link == "" || item.Link == feed.URL {
			continue
		}
		if ctx.Err() != nil {
			return
		}

		content, err := c.extractArticle(ctx, item.Link)
		if err != nil {
			slog.Warn("Failed to extract content", "feed", feed.URL, "url", item.Link, "error", err)
			continue
		}
		item.Content = content
	}
}

func (c *Client) extractArticle(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid article URL: %w", err)
	}

	data, err := c.get(ctx, link, "text/html")
	if err != nil {
		return "", err
	}

	return c.extractor.Run(data, pageURL)
}

func (c *Client) get(ctx context.Context, rawURL, wantType string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("failed to wait for host: %w", err)
		}
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	if wantType != "" {
		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), wantType) {
			return nil, fmt.Errorf("unexpected content type: %s", contentType)
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > c.opts.MaxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, c.opts.MaxBodySize)
	}

	return data, nil
}
