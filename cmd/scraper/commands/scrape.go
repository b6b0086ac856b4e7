package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraper/internal/app/scrape"
	"github.com/slok/scraper/internal/config"
	"github.com/slok/scraper/internal/model"
)

type ScrapeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	url          string
	taskID       string
	renderer     string
	vision       string
	noScreenshot bool
	memory       bool
	format       string
}

// NewScrapeCommand returns the scrape command.
func NewScrapeCommand(rootCmd *RootCommand, app *kingpin.Application) *ScrapeCommand {
	c := &ScrapeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("scrape", "Scrape a URL, or run an existing task, and store its result.")
	c.Cmd.Arg("url", "URL to scrape (optional with --task-id).").StringVar(&c.url)
	c.Cmd.Flag("task-id", "Run an existing task instead of creating a new one.").StringVar(&c.taskID)
	c.Cmd.Flag("renderer", "Renderer override (fetch, chrome, fake).").EnumVar(&c.renderer, config.RendererFetch, config.RendererChrome, config.RendererFake)
	c.Cmd.Flag("vision", "Vision override (none, tesseract, fake).").EnumVar(&c.vision, config.VisionNone, config.VisionTesseract, config.VisionFake)
	c.Cmd.Flag("no-screenshot", "Don't capture screenshots.").BoolVar(&c.noScreenshot)
	c.Cmd.Flag("memory", "Use a non persistent in-memory storage.").BoolVar(&c.memory)
	c.Cmd.Flag("format", "Output format (table, json).").Default(FormatTable).EnumVar(&c.format, FormatTable, FormatJSON)

	return c
}

func (c ScrapeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ScrapeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.taskID == "" || c.url != "" {
		if err := model.ValidateURL(c.url); err != nil {
			return err
		}
	}

	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if c.renderer != "" {
		cfg.Render.Kind = c.renderer
	}
	if c.vision != "" {
		cfg.Vision.Kind = c.vision
	}
	if c.noScreenshot {
		cfg.Render.Screenshots = false
	}
	if c.memory {
		cfg.Database.Memory = true
	}

	repo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer closeRepo()

	provider, err := newTracing(ctx, cfg, c.rootCmd.Stderr)
	if err != nil {
		return fmt.Errorf("could not setup tracing: %w", err)
	}
	defer func() {
		// The run context could be cancelled already.
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warningf("Could not shutdown tracing: %s", err)
		}
	}()

	svc, err := newScrapeService(cfg, repo, provider, logger)
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	report, runErr := svc.Run(ctx, scrape.RunTaskRequest{URL: c.url, TaskID: c.taskID})
	if report != nil && report.Result != nil {
		if err := newPrinter(c.format, c.rootCmd.Stdout).PrintResult(report.Task, *report.Result); err != nil {
			return fmt.Errorf("could not print result: %w", err)
		}
	}
	if runErr != nil {
		return fmt.Errorf("could not scrape: %w", runErr)
	}

	return nil
}
