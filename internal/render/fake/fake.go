// Package fake implements a renderer that doesn't reach the network, used for
// local runs and tests.
package fake

import (
	"context"
	"fmt"
	"html"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
)

const defaultHTMLTpl = `<html>
<head><title>Fake page for %[1]s</title></head>
<body>
<main>
<h1>Fake page</h1>
<p>Rendered %[1]s without network. Contact Jane Doe at jane@example.com.</p>
<a href="%[1]s">Self</a>
</main>
</body>
</html>`

// RendererConfig is the configuration for the fake renderer.
type RendererConfig struct {
	// HTML is returned for every URL, by default a small page that mentions the URL.
	HTML string
	// ScreenshotDir is where screenshots are created, by default the OS temp dir.
	ScreenshotDir string
	Logger        log.Logger
}

func (c *RendererConfig) defaults() error {
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = filepath.Join(os.TempDir(), "scraper-screenshots")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "render.Fake"})
	return nil
}

// Renderer returns static pages.
type Renderer struct {
	cfg    RendererConfig
	logger log.Logger
}

// NewRenderer returns a new fake renderer.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Renderer{cfg: cfg, logger: cfg.Logger}, nil
}

// Snapshot returns the configured page. Screenshots are blank PNG images.
func (r *Renderer) Snapshot(ctx context.Context, url string, opts model.SnapshotOptions) (*model.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", err, render.ErrRenderer)
	}

	content := r.cfg.HTML
	if content == "" {
		content = fmt.Sprintf(defaultHTMLTpl, html.EscapeString(url))
	}
	snap := &model.Snapshot{HTML: content}

	if opts.CaptureScreenshot {
		path, err := r.writeScreenshot()
		if err != nil {
			return nil, fmt.Errorf("could not write screenshot: %w: %w", err, render.ErrRenderer)
		}
		snap.ScreenshotRef = path
		snap.Temporary = true
	}

	return snap, nil
}

func (r *Renderer) writeScreenshot() (string, error) {
	if err := os.MkdirAll(r.cfg.ScreenshotDir, 0o755); err != nil {
		return "", err
	}

	img := image.NewRGBA(image.Rect(0, 0, 64, 32))
	for x := range 64 {
		for y := range 32 {
			img.Set(x, y, color.White)
		}
	}

	path := filepath.Join(r.cfg.ScreenshotDir, fmt.Sprintf("fake_%s.png", strings.ToLower(ulid.Make().String())))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", err
	}
	r.logger.Debugf("Fake screenshot written to %s", path)

	return path, nil
}
