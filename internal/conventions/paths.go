package conventions

import (
	"path/filepath"

	"k8s.io/client-go/util/homedir"
)

const (
	// DefaultDataDir is the default scraper data directory name (relative to home).
	DefaultDataDir = ".scraper"
	// DBFile is the SQLite database filename.
	DBFile = "scraper.db"
	// ConfigFile is the YAML configuration filename.
	ConfigFile = "config.yaml"
	// ScreenshotsDir is the subdirectory where screenshots are kept by the local artifact store.
	ScreenshotsDir = "screenshots"
	// TmpScreenshotsDir is the subdirectory for screenshots that only live during a run.
	TmpScreenshotsDir = "tmp"
)

// DataDir returns the default data directory.
func DataDir() string {
	return filepath.Join(homedir.HomeDir(), DefaultDataDir)
}

// DBPath returns the database path inside a data directory.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, DBFile)
}

// ConfigPath returns the configuration file path inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFile)
}

// ScreenshotsPath returns the durable screenshots directory inside a data directory.
func ScreenshotsPath(dataDir string) string {
	return filepath.Join(dataDir, ScreenshotsDir)
}

// TmpScreenshotsPath returns the temporary screenshots directory inside a data directory.
func TmpScreenshotsPath(dataDir string) string {
	return filepath.Join(dataDir, TmpScreenshotsDir)
}
