// Package config defines the process configuration and its loading.
//
// Conventions:
// - New returns a Config holding every default.
// - Load layers a YAML file and HOOPSRANK_* environment variables on top.
// - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/okian/hoopsrank/pkg/logger"
)

// Draft store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Feed sources. PriorGamesPath and SchedulePath may be empty.
	CurrentGamesPath string `koanf:"current_games_path"`
	PriorGamesPath   string `koanf:"prior_games_path"`
	RosterPath       string `koanf:"roster_path"`
	SchedulePath     string `koanf:"schedule_path"`
	PositionsPath    string `koanf:"positions_path"`

	// SeasonGames is the length of a full regular season per team.
	SeasonGames int `koanf:"season_games"`

	// Categories lists the rated categories. Empty means all nine.
	Categories []string `koanf:"categories"`

	// PuntMaxSize caps punt combinations, 0 to 2.
	PuntMaxSize int `koanf:"punt_max_size"`

	// WorkerCount sets the number of punt workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the worker job queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize bounds the feed de-duplication cache. 0 is unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// Draft store.
	DraftBackend string `koanf:"draft_backend"`
	PostgresDSN  string `koanf:"postgres_dsn"`
	SQLitePath   string `koanf:"sqlite_path"`

	// MetricsAddr serves Prometheus metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// Top limits printed rows. 0 prints everything.
	Top int `koanf:"top"`
}

// DefaultCategories are rated when none are configured.
func DefaultCategories() []string {
	return []string{"FG", "FT", "FG3M", "PTS", "REB", "AST", "STL", "BLK", "TOV"}
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		CurrentGamesPath: "data/game_logs_current.csv",
		PriorGamesPath:   "data/game_logs_prior.csv",
		RosterPath:       "data/roster.csv",
		SchedulePath:     "data/schedule.csv",
		PositionsPath:    "data/fantasy_positions.csv",
		SeasonGames:      82,
		Categories:       DefaultCategories(),
		PuntMaxSize:      2,
		WorkerCount:      runtime.NumCPU(),
		QueueSize:        1024,
		DraftBackend:     BackendMemory,
		SQLitePath:       "hoopsrank.db",
		Top:              50,
	}
}

// Validate checks value ranges and backend requirements.
func (c *Config) Validate() error {
	var problems []string
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}
	if c.SeasonGames <= 0 {
		problems = append(problems, "season_games must be positive")
	}
	if c.PuntMaxSize < 0 || c.PuntMaxSize > 2 {
		problems = append(problems, "punt_max_size must be between 0 and 2")
	}
	if c.WorkerCount < 0 {
		problems = append(problems, "worker_count must not be negative")
	}
	if c.QueueSize <= 0 {
		problems = append(problems, "queue_size must be positive")
	}
	if c.DedupeSize < 0 {
		problems = append(problems, "dedupe_size must not be negative")
	}
	if c.Top < 0 {
		problems = append(problems, "top must not be negative")
	}
	if strings.TrimSpace(c.CurrentGamesPath) == "" && strings.TrimSpace(c.PriorGamesPath) == "" {
		problems = append(problems, "one of current_games_path or prior_games_path is required")
	}
	switch c.DraftBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			problems = append(problems, "postgres_dsn is required for the postgres backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			problems = append(problems, "sqlite_path is required for the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown draft_backend %q", c.DraftBackend))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) normalize() {
	c.DraftBackend = strings.ToLower(strings.TrimSpace(c.DraftBackend))
	cats := make([]string, 0, len(c.Categories))
	for _, entry := range c.Categories {
		for _, name := range strings.Split(entry, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cats = append(cats, name)
			}
		}
	}
	if len(cats) == 0 {
		cats = DefaultCategories()
	}
	c.Categories = slices.Clip(cats)
}
