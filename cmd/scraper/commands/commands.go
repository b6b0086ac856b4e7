package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/scraper/internal/config"
	"github.com/slok/scraper/internal/conventions"
	"github.com/slok/scraper/internal/log"
	"github.com/slok/scraper/internal/printer"
	storageio "github.com/slok/scraper/internal/storage/io"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	DataDir    string
	DBPath     string
	ConfigPath string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	app.Flag("data-dir", "Directory for the database, screenshots and configuration.").Envar("SCRAPER_DATA_DIR").Default(conventions.DataDir()).StringVar(&c.DataDir)
	app.Flag("db-path", "Path to the SQLite database file (defaults inside the data dir).").Envar("SCRAPER_DB_PATH").StringVar(&c.DBPath)
	app.Flag("config", "Path to the YAML configuration file (defaults inside the data dir).").Envar("SCRAPER_CONFIG").StringVar(&c.ConfigPath)

	return c
}

// LoadConfig returns the configuration: defaults, then the config file, then the global flags.
func (r RootCommand) LoadConfig(ctx context.Context) (config.Config, error) {
	base := config.Defaults(r.DataDir)

	path := r.ConfigPath
	if path == "" {
		path = conventions.ConfigPath(r.DataDir)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid config path: %w", err)
	}

	repo := storageio.NewConfigYAMLRepository(os.DirFS(filepath.Dir(absPath)))
	cfg, err := repo.GetConfig(ctx, filepath.Base(absPath), base)
	if err != nil {
		return config.Config{}, fmt.Errorf("could not load config %s: %w", absPath, err)
	}

	if r.DBPath != "" {
		cfg.Database.Path = r.DBPath
		cfg.Database.Memory = false
	}

	return cfg, nil
}

func newPrinter(format string, w io.Writer) printer.Printer {
	if format == FormatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}
