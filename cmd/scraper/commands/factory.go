package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/slok/scraper/internal/app/scrape"
	"github.com/slok/scraper/internal/artifact"
	"github.com/slok/scraper/internal/artifact/local"
	"github.com/slok/scraper/internal/artifact/minio"
	"github.com/slok/scraper/internal/config"
	"github.com/slok/scraper/internal/conventions"
	"github.com/slok/scraper/internal/extract"
	"github.com/slok/scraper/internal/extract/html"
	"github.com/slok/scraper/internal/extract/nlp"
	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/render"
	"github.com/slok/scraper/internal/render/chrome"
	"github.com/slok/scraper/internal/render/fake"
	"github.com/slok/scraper/internal/render/fetch"
	"github.com/slok/scraper/internal/storage"
	"github.com/slok/scraper/internal/storage/memory"
	"github.com/slok/scraper/internal/storage/sqlite"
	"github.com/slok/scraper/internal/tracing"
	"github.com/slok/scraper/internal/vision"
	visionfake "github.com/slok/scraper/internal/vision/fake"
	"github.com/slok/scraper/internal/vision/tesseract"
)

func newRepository(ctx context.Context, cfg config.Config, logger log.Logger) (storage.Repository, func() error, error) {
	if cfg.Database.Memory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: logger})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() error { return nil }, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.Database.Path,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

func newRenderer(cfg config.Config, logger log.Logger) (render.Renderer, error) {
	tmpDir := conventions.TmpScreenshotsPath(cfg.DataDir)

	switch cfg.Render.Kind {
	case config.RendererFetch:
		return fetch.NewRenderer(fetch.RendererConfig{
			Timeout:   cfg.Render.Timeout,
			UserAgent: cfg.Render.UserAgent,
			Logger:    logger,
		})
	case config.RendererChrome:
		return chrome.NewRenderer(chrome.RendererConfig{
			BrowserBin:    cfg.Render.Chrome.Bin,
			ScreenshotDir: tmpDir,
			WindowWidth:   cfg.Render.Chrome.WindowWidth,
			WindowHeight:  cfg.Render.Chrome.WindowHeight,
			UserAgent:     cfg.Render.UserAgent,
			Timeout:       cfg.Render.Timeout,
			MaxConcurrent: cfg.Render.Chrome.MaxConcurrent,
			Logger:        logger,
		})
	case config.RendererFake:
		return fake.NewRenderer(fake.RendererConfig{
			ScreenshotDir: tmpDir,
			Logger:        logger,
		})
	}

	return nil, fmt.Errorf("unknown renderer %q", cfg.Render.Kind)
}

// newVision returns nil when OCR is disabled.
func newVision(cfg config.Config, logger log.Logger) (vision.Vision, error) {
	switch cfg.Vision.Kind {
	case config.VisionNone:
		return nil, nil
	case config.VisionTesseract:
		return tesseract.NewVision(tesseract.VisionConfig{
			Bin:     cfg.Vision.Bin,
			Lang:    cfg.Vision.Lang,
			TempDir: conventions.TmpScreenshotsPath(cfg.DataDir),
			Logger:  logger,
		})
	case config.VisionFake:
		return visionfake.Vision{Text: cfg.Vision.FakeText}, nil
	}

	return nil, fmt.Errorf("unknown vision %q", cfg.Vision.Kind)
}

// newExtractor returns nil when the content extraction is disabled.
func newExtractor(cfg config.Config, logger log.Logger) (extract.Extractor, error) {
	switch cfg.Extractor.Kind {
	case config.ExtractorNone:
		return nil, nil
	case config.ExtractorHTML:
		mcfg := extract.ManagerConfig{
			Parser:           html.NewParser(),
			MaxMainTextChars: cfg.Extractor.MaxMainTextChars,
			Logger:           logger,
		}
		if cfg.Extractor.NLP {
			p, err := nlp.NewProcessor(nlp.ProcessorConfig{
				Labels: cfg.Extractor.EntityLabels,
				Logger: logger,
			})
			if err != nil {
				return nil, fmt.Errorf("could not create NLP processor: %w", err)
			}
			mcfg.TextProcessor = p
		}
		return extract.NewManager(mcfg)
	}

	return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor.Kind)
}

// newArtifactStore returns nil when screenshots are not kept.
func newArtifactStore(cfg config.Config, logger log.Logger) (artifact.Store, error) {
	switch cfg.Artifacts.Kind {
	case config.ArtifactsNone:
		return nil, nil
	case config.ArtifactsLocal:
		return local.NewStore(local.StoreConfig{
			Dir:    cfg.Artifacts.Dir,
			Logger: logger,
		})
	case config.ArtifactsMinio:
		return minio.NewStore(minio.StoreConfig{
			Endpoint:  cfg.Artifacts.Minio.Endpoint,
			AccessKey: cfg.Artifacts.Minio.AccessKey,
			SecretKey: cfg.Artifacts.Minio.SecretKey,
			Secure:    cfg.Artifacts.Minio.Secure,
			Bucket:    cfg.Artifacts.Minio.Bucket,
			Logger:    logger,
		})
	}

	return nil, fmt.Errorf("unknown artifacts store %q", cfg.Artifacts.Kind)
}

func newTracing(ctx context.Context, cfg config.Config, out io.Writer) (tracing.Provider, error) {
	return tracing.NewProvider(ctx, tracing.Config{
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Out:         out,
	})
}

func newScrapeService(cfg config.Config, repo storage.Repository, provider tracing.Provider, logger log.Logger) (*scrape.Service, error) {
	renderer, err := newRenderer(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create renderer: %w", err)
	}

	// Optional collaborators must stay nil interfaces when disabled.
	scfg := scrape.ServiceConfig{
		Repository:         repo,
		Renderer:           renderer,
		DisableScreenshots: !cfg.Render.Screenshots,
		StageTimeouts: scrape.StageTimeouts{
			Render:     cfg.Stages.RenderTimeout,
			Vision:     cfg.Stages.VisionTimeout,
			Extraction: cfg.Stages.ExtractionTimeout,
		},
		Tracer: provider.Tracer(),
		Logger: logger,
	}

	v, err := newVision(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create vision: %w", err)
	}
	if v != nil {
		scfg.Vision = v
	}

	ex, err := newExtractor(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create extractor: %w", err)
	}
	if ex != nil {
		scfg.Extractor = ex
	}

	store, err := newArtifactStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create artifact store: %w", err)
	}
	if store != nil {
		scfg.ArtifactStore = store
	}

	return scrape.NewService(scfg)
}
