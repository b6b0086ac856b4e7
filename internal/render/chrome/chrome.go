// Package chrome implements a renderer backed by a headless Chrome or Chromium
// driven over the DevTools protocol. Every snapshot is a single navigation, the
// DOM and the screenshot come from the same loaded page. The number of browsers
// running at the same time is bounded.
package chrome

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/oklog/ulid/v2"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
)

// Page is the outcome of loading a URL in the browser once.
type Page struct {
	HTML string
	// Screenshot is the full page PNG, nil when not requested or failed.
	Screenshot []byte
	// ScreenshotErr is set when the screenshot was requested and could not be taken.
	ScreenshotErr error
}

// Browser loads a URL and returns its rendered DOM and, optionally, a full
// page screenshot of that same page.
type Browser interface {
	Load(ctx context.Context, url string, screenshot bool) (*Page, error)
}

// RendererConfig is the configuration for the chrome renderer.
type RendererConfig struct {
	// BrowserBin is the browser binary name or path, autodetected when empty.
	BrowserBin string
	// ScreenshotDir is where temporary screenshots are written.
	ScreenshotDir string
	WindowWidth   int
	WindowHeight  int
	UserAgent     string
	// Timeout bounds each page load.
	Timeout       time.Duration
	MaxConcurrent int
	// Browser overrides the DevTools browser, used for testing.
	Browser Browser
	Logger  log.Logger
}

func (c *RendererConfig) defaults() error {
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = filepath.Join(os.TempDir(), "scraper-screenshots")
	}
	if c.WindowWidth == 0 {
		c.WindowWidth = 1280
	}
	if c.WindowHeight == 0 {
		c.WindowHeight = 1024
	}
	if c.WindowWidth < 0 || c.WindowHeight < 0 {
		return fmt.Errorf("window size can't be negative")
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = 2
	}
	if c.MaxConcurrent < 0 {
		return fmt.Errorf("max concurrent can't be negative")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "render.Chrome"})
	if c.Browser == nil {
		c.Browser = devtoolsBrowser{
			execPath:  c.BrowserBin,
			width:     c.WindowWidth,
			height:    c.WindowHeight,
			userAgent: c.UserAgent,
		}
	}
	return nil
}

// Renderer renders pages with a headless browser.
type Renderer struct {
	cfg    RendererConfig
	sem    chan struct{}
	logger log.Logger
}

// NewRenderer returns a new chrome renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Renderer{
		cfg:    cfg,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
		logger: cfg.Logger,
	}, nil
}

// Snapshot renders the URL and returns the resulting DOM. When a screenshot is
// requested and it can't be taken the snapshot is still returned, without
// screenshot.
func (r *Renderer) Snapshot(ctx context.Context, url string, opts model.SnapshotOptions) (*model.Snapshot, error) {
	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for a free browser: %w: %w", ctx.Err(), render.ErrRenderer)
	}
	defer func() { <-r.sem }()

	loadCtx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	r.logger.Debugf("Loading %s in browser", url)
	page, err := r.cfg.Browser.Load(loadCtx, url, opts.CaptureScreenshot)
	if err != nil {
		return nil, fmt.Errorf("failed to get page content for URL %q: %w: %w", url, err, render.ErrRenderer)
	}
	snap := &model.Snapshot{HTML: page.HTML}

	if !opts.CaptureScreenshot {
		return snap, nil
	}

	path, err := r.saveScreenshot(page)
	if err != nil {
		r.logger.Errorf("Screenshot failed for %s, continuing without it: %s", url, err)
		return snap, nil
	}
	snap.ScreenshotRef = path
	snap.Temporary = true

	return snap, nil
}

func (r *Renderer) saveScreenshot(page *Page) (string, error) {
	if page.ScreenshotErr != nil {
		return "", page.ScreenshotErr
	}
	if len(page.Screenshot) == 0 {
		return "", fmt.Errorf("empty screenshot")
	}

	if err := os.MkdirAll(r.cfg.ScreenshotDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create screenshot directory: %w", err)
	}

	path := filepath.Join(r.cfg.ScreenshotDir, fmt.Sprintf("snapshot_%s.png", strings.ToLower(ulid.Make().String())))
	if err := os.WriteFile(path, page.Screenshot, 0o644); err != nil {
		return "", fmt.Errorf("could not write screenshot: %w", err)
	}
	r.logger.Debugf("Screenshot saved to %s", path)

	return path, nil
}

// devtoolsBrowser starts a browser per load and drives one tab with chromedp.
type devtoolsBrowser struct {
	execPath  string
	width     int
	height    int
	userAgent string
}

func (b devtoolsBrowser) Load(ctx context.Context, url string, screenshot bool) (*Page, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(b.width, b.height),
		chromedp.Flag("hide-scrollbars", true),
	)
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	if b.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(b.userAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	page := &Page{}
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &page.HTML, chromedp.ByQuery),
	)
	if err != nil {
		return nil, err
	}

	if screenshot {
		// Same tab, no new navigation.
		if err := chromedp.Run(tabCtx, chromedp.FullScreenshot(&page.Screenshot, 100)); err != nil {
			page.Screenshot = nil
			page.ScreenshotErr = err
		}
	}

	return page, nil
}
