package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraper/internal/app/submit"
)

type SubmitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	urls   []string
	format string
}

// NewSubmitCommand returns the submit command.
func NewSubmitCommand(rootCmd *RootCommand, app *kingpin.Application) *SubmitCommand {
	c := &SubmitCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("submit", "Create pending tasks for URLs, run them later with 'scrape --task-id'.")
	c.Cmd.Arg("urls", "URLs to submit.").Required().StringsVar(&c.urls)
	c.Cmd.Flag("format", "Output format (table, json).").Default(FormatTable).EnumVar(&c.format, FormatTable, FormatJSON)

	return c
}

func (c SubmitCommand) Name() string { return c.Cmd.FullCommand() }

func (c SubmitCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}

	repo, closeRepo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer closeRepo()

	svc, err := submit.NewService(submit.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	resp, err := svc.Submit(ctx, submit.Request{URLs: c.urls})
	if err != nil {
		return fmt.Errorf("could not submit tasks: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintSubmitted(resp.TaskIDs); err != nil {
		return fmt.Errorf("could not print tasks: %w", err)
	}

	return nil
}
