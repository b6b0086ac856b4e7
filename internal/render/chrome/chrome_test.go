package chrome_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
	"github.com/slok/scraper/internal/render/chrome"
)

type browserFunc func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error)

func (f browserFunc) Load(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
	return f(ctx, url, screenshot)
}

func TestRendererSnapshot(t *testing.T) {
	tests := map[string]struct {
		opts          model.SnapshotOptions
		load          browserFunc
		expHTML       string
		expScreenshot bool
		expErr        bool
	}{
		"Rendering without screenshot should only return the DOM.": {
			load: func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
				if screenshot {
					return nil, fmt.Errorf("unexpected screenshot")
				}
				return &chrome.Page{HTML: "<html></html>"}, nil
			},
			expHTML: "<html></html>",
		},

		"Rendering with screenshot should return a temporary screenshot.": {
			opts: model.SnapshotOptions{CaptureScreenshot: true},
			load: func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
				return &chrome.Page{HTML: "<html></html>", Screenshot: []byte("png")}, nil
			},
			expHTML:       "<html></html>",
			expScreenshot: true,
		},

		"A failed screenshot should not fail the render.": {
			opts: model.SnapshotOptions{CaptureScreenshot: true},
			load: func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
				return &chrome.Page{HTML: "<html></html>", ScreenshotErr: fmt.Errorf("something")}, nil
			},
			expHTML: "<html></html>",
		},

		"An empty screenshot should be ignored.": {
			opts: model.SnapshotOptions{CaptureScreenshot: true},
			load: func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
				return &chrome.Page{HTML: "<html></html>"}, nil
			},
			expHTML: "<html></html>",
		},

		"A browser failure should fail the render.": {
			load: func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
				return nil, fmt.Errorf("exec: \"chromium\": executable file not found in $PATH")
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			r, err := chrome.NewRenderer(chrome.RendererConfig{
				ScreenshotDir: t.TempDir(),
				Browser:       test.load,
			})
			require.NoError(err)

			snap, err := r.Snapshot(context.Background(), "http://example.com", test.opts)
			if test.expErr {
				assert.True(errors.Is(err, render.ErrRenderer))
				return
			}
			require.NoError(err)
			assert.Equal(test.expHTML, snap.HTML)
			if test.expScreenshot {
				assert.FileExists(snap.ScreenshotRef)
				assert.True(snap.Temporary)
			} else {
				assert.Empty(snap.ScreenshotRef)
				assert.False(snap.Temporary)
			}
		})
	}
}

func TestRendererLoadsPageOnce(t *testing.T) {
	var loads atomic.Int32
	load := browserFunc(func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
		loads.Add(1)
		assert.Equal(t, "http://example.com", url)
		assert.True(t, screenshot)
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return &chrome.Page{HTML: "<html></html>", Screenshot: []byte("png")}, nil
	})

	r, err := chrome.NewRenderer(chrome.RendererConfig{ScreenshotDir: t.TempDir(), Browser: load})
	require.NoError(t, err)

	_, err = r.Snapshot(context.Background(), "http://example.com", model.SnapshotOptions{CaptureScreenshot: true})
	require.NoError(t, err)
	assert.Equal(t, int32(1), loads.Load())
}

func TestRendererBoundsConcurrentBrowsers(t *testing.T) {
	var running, maxRunning atomic.Int32
	load := browserFunc(func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return &chrome.Page{HTML: "<html></html>"}, nil
	})

	r, err := chrome.NewRenderer(chrome.RendererConfig{MaxConcurrent: 2, Browser: load})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Snapshot(context.Background(), "http://example.com", model.SnapshotOptions{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, maxRunning.Load(), int32(2))
}

func TestRendererCancelledWhileWaiting(t *testing.T) {
	block := make(chan struct{})
	load := browserFunc(func(ctx context.Context, url string, screenshot bool) (*chrome.Page, error) {
		select {
		case <-block:
			return &chrome.Page{HTML: "<html></html>"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})

	r, err := chrome.NewRenderer(chrome.RendererConfig{MaxConcurrent: 1, Browser: load})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Snapshot(context.Background(), "http://example.com", model.SnapshotOptions{})
	}()

	// Wait until the first snapshot holds the only slot.
	time.Sleep(20 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Snapshot(ctx, "http://example.com", model.SnapshotOptions{})
	assert.True(t, errors.Is(err, render.ErrRenderer))
	assert.True(t, errors.Is(err, context.Canceled))

	close(block)
	<-done
}
