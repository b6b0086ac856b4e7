package fetch_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/model"
	"github.com/slok/scraper/internal/render"
	"github.com/slok/scraper/internal/render/fetch"
)

func TestRendererSnapshot(t *testing.T) {
	tests := map[string]struct {
		handler http.HandlerFunc
		opts    model.SnapshotOptions
		expHTML string
		expErr  bool
	}{
		"A successful response should return the page HTML without screenshot.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html><title>Hi</title></html>"))
			},
			opts:    model.SnapshotOptions{CaptureScreenshot: true},
			expHTML: "<html><title>Hi</title></html>",
		},

		"The request should carry the user agent.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != "test-agent" {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				_, _ = w.Write([]byte("ok"))
			},
			expHTML: "ok",
		},

		"A non 2xx response should fail.": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			srv := httptest.NewServer(test.handler)
			defer srv.Close()

			r, err := fetch.NewRenderer(fetch.RendererConfig{UserAgent: "test-agent"})
			require.NoError(err)

			snap, err := r.Snapshot(context.Background(), srv.URL, test.opts)
			if test.expErr {
				assert.True(errors.Is(err, render.ErrRenderer))
				return
			}
			require.NoError(err)
			assert.Equal(test.expHTML, snap.HTML)
			assert.Empty(snap.ScreenshotRef)
		})
	}
}

func TestRendererSnapshotUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, err := fetch.NewRenderer(fetch.RendererConfig{})
	require.NoError(t, err)

	_, err = r.Snapshot(context.Background(), url, model.SnapshotOptions{})
	assert.True(t, errors.Is(err, render.ErrRenderer))
}
