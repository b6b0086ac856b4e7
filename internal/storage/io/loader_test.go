package io_test

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/scraper/internal/config"
	storageio "github.com/slok/scraper/internal/storage/io"
)

func TestConfigYAMLRepositoryGetConfig(t *testing.T) {
	base := config.Defaults("/data")

	tests := map[string]struct {
		fs     fstest.MapFS
		path   string
		expCfg func() config.Config
		expErr bool
	}{
		"A missing file should return the base config.": {
			fs:     fstest.MapFS{},
			path:   "config.yaml",
			expCfg: func() config.Config { return base },
		},

		"An empty file should return the base config.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("---\n")},
			},
			path:   "config.yaml",
			expCfg: func() config.Config { return base },
		},

		"A partial file should only override its values.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte(`
render:
  kind: chrome
  screenshots: false
  timeout: 45s
  chrome:
    bin: google-chrome
vision:
  kind: tesseract
  lang: spa
stages:
  vision_timeout: 10s
tracing:
  exporter: stdout
  sample_ratio: 0.5
`)},
			},
			path: "config.yaml",
			expCfg: func() config.Config {
				c := base
				c.Render.Kind = config.RendererChrome
				c.Render.Screenshots = false
				c.Render.Timeout = 45 * time.Second
				c.Render.Chrome.Bin = "google-chrome"
				c.Vision.Kind = config.VisionTesseract
				c.Vision.Lang = "spa"
				c.Stages.VisionTimeout = 10 * time.Second
				c.Tracing.Exporter = "stdout"
				c.Tracing.SampleRatio = 0.5
				return c
			},
		},

		"A minio store should be loaded.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte(`
artifacts:
  kind: minio
  minio:
    endpoint: localhost:9000
    access_key: minio
    secret_key: minio123
    secure: true
`)},
			},
			path: "config.yaml",
			expCfg: func() config.Config {
				c := base
				c.Artifacts.Kind = config.ArtifactsMinio
				c.Artifacts.Minio.Endpoint = "localhost:9000"
				c.Artifacts.Minio.AccessKey = "minio"
				c.Artifacts.Minio.SecretKey = "minio123"
				c.Artifacts.Minio.Secure = true
				return c
			},
		},

		"An invalid value should fail validation.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("render:\n  kind: selenium\n")},
			},
			path:   "config.yaml",
			expErr: true,
		},

		"An invalid YAML should fail.": {
			fs: fstest.MapFS{
				"config.yaml": &fstest.MapFile{Data: []byte("render: [kind\n")},
			},
			path:   "config.yaml",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := storageio.NewConfigYAMLRepository(test.fs)
			cfg, err := repo.GetConfig(context.Background(), test.path, base)

			if test.expErr {
				assert.Error(err)
			} else {
				require.NoError(err)
				assert.Equal(test.expCfg(), cfg)
			}
		})
	}
}
