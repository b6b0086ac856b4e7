// Package config has the application configuration, it's loaded once by the
// commands and handed to each component constructor.
package config

import (
	"fmt"
	"time"

	"github.com/slok/scraper/internal/conventions"
	"github.com/slok/scraper/internal/model"
)

// Renderer kinds.
const (
	RendererFetch  = "fetch"
	RendererChrome = "chrome"
	RendererFake   = "fake"
)

// Vision kinds.
const (
	VisionNone      = "none"
	VisionTesseract = "tesseract"
	VisionFake      = "fake"
)

// Extractor kinds.
const (
	ExtractorNone = "none"
	ExtractorHTML = "html"
)

// Artifact store kinds.
const (
	ArtifactsNone  = "none"
	ArtifactsLocal = "local"
	ArtifactsMinio = "minio"
)

// Config is the application configuration.
type Config struct {
	DataDir   string
	Database  Database
	Render    Render
	Vision    Vision
	Extractor Extractor
	Artifacts Artifacts
	Stages    Stages
	HTTP      HTTP
	Tracing   Tracing
}

// Database is the persistence configuration.
type Database struct {
	Path string
	// Memory uses a non persistent in-memory repository.
	Memory bool
}

// Render is the renderer configuration.
type Render struct {
	Kind        string
	Screenshots bool
	Timeout     time.Duration
	UserAgent   string
	Chrome      Chrome
}

// Chrome is the headless browser configuration.
type Chrome struct {
	// Bin is the browser binary, autodetected when empty.
	Bin           string
	WindowWidth   int
	WindowHeight  int
	MaxConcurrent int
}

// Vision is the OCR configuration.
type Vision struct {
	Kind string
	Bin  string
	Lang string
	// FakeText is returned by the fake vision.
	FakeText string
}

// Extractor is the content extraction configuration.
type Extractor struct {
	Kind string
	// NLP enables entity extraction and title cleaning.
	NLP              bool
	EntityLabels     []string
	MaxMainTextChars int
}

// Artifacts is the screenshot store configuration.
type Artifacts struct {
	Kind  string
	Dir   string
	Minio Minio
}

// Minio is the S3 compatible store configuration.
type Minio struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
}

// Stages has the per stage timeouts, zero means no timeout.
type Stages struct {
	RenderTimeout     time.Duration
	VisionTimeout     time.Duration
	ExtractionTimeout time.Duration
}

// HTTP is the API server configuration.
type HTTP struct {
	ListenAddress string
}

// Tracing is the OpenTelemetry configuration.
type Tracing struct {
	Exporter    string
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Defaults returns the default configuration rooted at a data directory.
func Defaults(dataDir string) Config {
	return Config{
		DataDir:  dataDir,
		Database: Database{Path: conventions.DBPath(dataDir)},
		Render: Render{
			Kind:        RendererFetch,
			Screenshots: true,
			Timeout:     30 * time.Second,
			Chrome: Chrome{
				WindowWidth:   1280,
				WindowHeight:  1024,
				MaxConcurrent: 2,
			},
		},
		Vision: Vision{
			Kind: VisionNone,
			Bin:  "tesseract",
			Lang: "eng",
		},
		Extractor: Extractor{
			Kind:             ExtractorHTML,
			NLP:              true,
			MaxMainTextChars: 10000,
		},
		Artifacts: Artifacts{
			Kind: ArtifactsLocal,
			Dir:  conventions.ScreenshotsPath(dataDir),
			Minio: Minio{
				Bucket: "scraper-artifacts",
			},
		},
		HTTP: HTTP{ListenAddress: ":8080"},
		Tracing: Tracing{
			Exporter:    "none",
			Endpoint:    "http://localhost:4318",
			SampleRatio: 1,
		},
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Database.Memory && c.Database.Path == "" {
		return fmt.Errorf("database path is required: %w", model.ErrNotValid)
	}

	switch c.Render.Kind {
	case RendererFetch, RendererChrome, RendererFake:
	default:
		return fmt.Errorf("unknown renderer %q: %w", c.Render.Kind, model.ErrNotValid)
	}
	if c.Render.Timeout < 0 {
		return fmt.Errorf("render timeout can't be negative: %w", model.ErrNotValid)
	}
	if c.Render.Chrome.WindowWidth < 0 || c.Render.Chrome.WindowHeight < 0 || c.Render.Chrome.MaxConcurrent < 0 {
		return fmt.Errorf("chrome window and concurrency can't be negative: %w", model.ErrNotValid)
	}

	switch c.Vision.Kind {
	case VisionNone, VisionTesseract, VisionFake:
	default:
		return fmt.Errorf("unknown vision %q: %w", c.Vision.Kind, model.ErrNotValid)
	}

	switch c.Extractor.Kind {
	case ExtractorNone, ExtractorHTML:
	default:
		return fmt.Errorf("unknown extractor %q: %w", c.Extractor.Kind, model.ErrNotValid)
	}
	if c.Extractor.MaxMainTextChars < 0 {
		return fmt.Errorf("extractor max main text chars can't be negative: %w", model.ErrNotValid)
	}

	switch c.Artifacts.Kind {
	case ArtifactsNone:
	case ArtifactsLocal:
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("local artifacts dir is required: %w", model.ErrNotValid)
		}
	case ArtifactsMinio:
		if c.Artifacts.Minio.Endpoint == "" {
			return fmt.Errorf("minio endpoint is required: %w", model.ErrNotValid)
		}
	default:
		return fmt.Errorf("unknown artifacts store %q: %w", c.Artifacts.Kind, model.ErrNotValid)
	}

	if c.Stages.RenderTimeout < 0 || c.Stages.VisionTimeout < 0 || c.Stages.ExtractionTimeout < 0 {
		return fmt.Errorf("stage timeouts can't be negative: %w", model.ErrNotValid)
	}

	switch c.Tracing.Exporter {
	case "none", "stdout", "otlphttp":
	default:
		return fmt.Errorf("unknown tracing exporter %q: %w", c.Tracing.Exporter, model.ErrNotValid)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio must be between 0 and 1: %w", model.ErrNotValid)
	}

	return nil
}
