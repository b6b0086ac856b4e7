// Package fetch implements a renderer that downloads the page HTML with a
// plain HTTP GET. It doesn't execute javascript and never takes screenshots.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "scraper/1.0 (+https://github.com/slok/scraper)"
	defaultMaxBodyBytes = 10 << 20
)

// RendererConfig is the configuration for the HTTP fetch renderer.
type RendererConfig struct {
	Client       *http.Client
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	Logger       log.Logger
}

func (c *RendererConfig) defaults() error {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Client == nil {
		c.Client = &http.Client{Timeout: c.Timeout}
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max body bytes can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "render.Fetch"})
	return nil
}

// Renderer fetches pages over HTTP.
type Renderer struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
	logger       log.Logger
}

// NewRenderer returns a new HTTP fetch renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Renderer{
		client:       cfg.Client,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       cfg.Logger,
	}, nil
}

// Snapshot retrieves the HTML of the URL.
func (r *Renderer) Snapshot(ctx context.Context, url string, opts model.SnapshotOptions) (*model.Snapshot, error) {
	if opts.CaptureScreenshot {
		r.logger.Debugf("Screenshots are not supported by the fetch renderer, ignoring")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w: %w", err, render.ErrRenderer)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w: %w", url, err, render.ErrRenderer)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s: %w", resp.StatusCode, url, render.ErrRenderer)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w: %w", err, render.ErrRenderer)
	}
	r.logger.Debugf("Fetched %d bytes from %s", len(body), url)

	return &model.Snapshot{HTML: string(body)}, nil
}
