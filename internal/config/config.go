package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const appName = "daybook"

// Config holds the runtime settings of the application
type Config struct {
	DBPath          string
	StrictAssignees bool
	LogFile         string
	WeekStart       time.Weekday
}

// Load reads .env files when present, then the environment
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	return FromEnv(os.Getenv)
}

// loadEnvFiles loads ./.env and <config dir>/daybook/daybook.env. Variables
// already set in the environment win; missing files are skipped.
func loadEnvFiles() error {
	files := []string{".env"}
	if dir, err := os.UserConfigDir(); err == nil {
		files = append(files, filepath.Join(dir, appName, appName+".env"))
	}

	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv builds a Config from a lookup function such as os.Getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBPath:    getenv("DAYBOOK_DB"),
		LogFile:   getenv("DAYBOOK_LOG"),
		WeekStart: time.Monday,
	}

	if cfg.DBPath == "" {
		path, err := defaultDBPath(getenv)
		if err != nil {
			return nil, err
		}
		cfg.DBPath = path
	}

	if v := getenv("DAYBOOK_STRICT_ASSIGNEES"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("DAYBOOK_STRICT_ASSIGNEES: %w", err)
		}
		cfg.StrictAssignees = strict
	}

	switch strings.ToLower(getenv("DAYBOOK_WEEK_START")) {
	case "", "monday", "mon":
	case "sunday", "sun":
		cfg.WeekStart = time.Sunday
	default:
		return nil, fmt.Errorf("DAYBOOK_WEEK_START: want monday or sunday, got %q", getenv("DAYBOOK_WEEK_START"))
	}

	return cfg, nil
}

// defaultDBPath returns $XDG_DATA_HOME/daybook/daybook.db, falling back to
// ~/.local/share, and creates the directory
func defaultDBPath(getenv func(string) string) (string, error) {
	dataDir := getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	appDir := filepath.Join(dataDir, appName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(appDir, appName+".db"), nil
}
