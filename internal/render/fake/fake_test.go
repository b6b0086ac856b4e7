package fake_test

import (
	"context"
	"errors"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
	"github.com/slok/scraper/internal/render/fake"
)

func TestRendererSnapshot(t *testing.T) {
	tests := map[string]struct {
		cfg           fake.RendererConfig
		opts          model.SnapshotOptions
		expContains   string
		expScreenshot bool
	}{
		"The default page should mention the URL.": {
			expContains: "Fake page for http://example.com",
		},

		"A configured page should be returned as is.": {
			cfg:         fake.RendererConfig{HTML: "<p>custom</p>"},
			expContains: "<p>custom</p>",
		},

		"Requesting a screenshot should write a PNG image.": {
			opts:          model.SnapshotOptions{CaptureScreenshot: true},
			expContains:   "Fake page",
			expScreenshot: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			test.cfg.ScreenshotDir = t.TempDir()
			r, err := fake.NewRenderer(test.cfg)
			require.NoError(err)

			snap, err := r.Snapshot(context.Background(), "http://example.com", test.opts)
			require.NoError(err)
			assert.Contains(snap.HTML, test.expContains)

			if !test.expScreenshot {
				assert.Empty(snap.ScreenshotRef)
				return
			}
			assert.True(snap.Temporary)
			f, err := os.Open(snap.ScreenshotRef)
			require.NoError(err)
			defer f.Close()
			_, err = png.DecodeConfig(f)
			assert.NoError(err)
		})
	}
}

func TestRendererCancelled(t *testing.T) {
	r, err := fake.NewRenderer(fake.RendererConfig{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Snapshot(ctx, "http://example.com", model.SnapshotOptions{})
	assert.True(t, errors.Is(err, render.ErrRenderer))
}
