package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraper/internal/app/list"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	page   int
	size   int
	format string
}

// NewListCommand returns the list command.
func NewListCommand(rootCmd *RootCommand, app *kingpin.Application) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("list", "List tasks, newest first.")
	c.Cmd.Flag("page", "Page number, starting at 1.").Default("1").IntVar(&c.page)
	c.Cmd.Flag("size", "Tasks per page (1-100).").Default("20").IntVar(&c.size)
	c.Cmd.Flag("format", "Output format (table, json).").Default(FormatTable).EnumVar(&c.format, FormatTable, FormatJSON)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
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

	svc, err := list.NewService(list.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	// Zero has a default meaning in the service, from the CLI it's a mistake.
	if c.page < 1 || c.size < 1 {
		return fmt.Errorf("page and size must be 1 or greater")
	}

	resp, err := svc.Run(ctx, list.Request{Page: c.page, Size: c.size})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	if err := newPrinter(c.format, c.rootCmd.Stdout).PrintTaskList(resp.Tasks, resp.Total); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
