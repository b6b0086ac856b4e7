package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"
	"github.com/oklog/run"

	"github.com/slok/scraper/internal/api"
	"github.com/slok/scraper/internal/app/list"
	"github.com/slok/scraper/internal/app/status"
	"github.com/slok/scraper/internal/app/submit"
)

const shutdownTimeout = 10 * time.Second

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddress string
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the HTTP API.")
	c.Cmd.Flag("listen", "Listen address override (e.g. :8080).").StringVar(&c.listenAddress)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}
	if c.listenAddress != "" {
		cfg.HTTP.ListenAddress = c.listenAddress
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
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warningf("Could not shutdown tracing: %s", err)
		}
	}()

	scrapeSvc, err := newScrapeService(cfg, repo, provider, logger)
	if err != nil {
		return fmt.Errorf("could not create scrape service: %w", err)
	}
	submitSvc, err := submit.NewService(submit.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create submit service: %w", err)
	}
	listSvc, err := list.NewService(list.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create list service: %w", err)
	}
	statusSvc, err := status.NewService(status.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create status service: %w", err)
	}

	if !c.rootCmd.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.RouterConfig{
		Scrape: scrapeSvc,
		Submit: submitSvc,
		List:   listSvc,
		Status: statusSvc,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create router: %w", err)
	}

	var g run.Group

	// HTTP server.
	{
		srv := &http.Server{
			Addr:              cfg.HTTP.ListenAddress,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Add(
			func() error {
				logger.Infof("HTTP API listening on %s", cfg.HTTP.ListenAddress)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			},
			func(_ error) {
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					logger.Errorf("Could not shutdown HTTP server: %s", err)
				}
			},
		)
	}

	// Parent context.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				<-ctx.Done()
				logger.Infof("Stopping HTTP API")
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}
