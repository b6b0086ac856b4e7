package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type resetter interface {
	Reset(ctx context.Context) error
}

type ResetCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	yes bool
}

// NewResetCommand returns the reset command.
func NewResetCommand(rootCmd *RootCommand, app *kingpin.Application) *ResetCommand {
	c := &ResetCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("reset", "Delete every task and result from the database.")
	c.Cmd.Flag("yes", "Confirm the deletion.").BoolVar(&c.yes)

	return c
}

func (c ResetCommand) Name() string { return c.Cmd.FullCommand() }

func (c ResetCommand) Run(ctx context.Context) error {
	if !c.yes {
		return fmt.Errorf("reset deletes every task and result, confirm with --yes")
	}

	cfg, err := c.rootCmd.LoadConfig(ctx)
	if err != nil {
		return err
	}

	repo, closeRepo, err := newRepository(ctx, cfg, c.rootCmd.Logger)
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer closeRepo()

	r, ok := repo.(resetter)
	if !ok {
		return fmt.Errorf("repository can't be reset")
	}
	if err := r.Reset(ctx); err != nil {
		return err
	}

	return newPrinter(FormatTable, c.rootCmd.Stdout).PrintMessage("Database reset")
}
