package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/okian/hoopsrank/internal/adapters/feed"
	"github.com/okian/hoopsrank/internal/adapters/output"
	"github.com/okian/hoopsrank/internal/adapters/repository"
	app "github.com/okian/hoopsrank/internal/app"
	"github.com/okian/hoopsrank/internal/config"
	"github.com/okian/hoopsrank/internal/domain/positions"
	"github.com/okian/hoopsrank/pkg/logger"
	"github.com/okian/hoopsrank/pkg/metrics"
)

// HTTP server timeout constants for the metrics endpoint.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// cli holds what one command invocation builds and tears down.
type cli struct {
	quiet   bool
	noColor bool
	top     int

	cfg     *config.Config
	log     logger.Logger
	store   repository.Store
	svc     *app.Service
	out     *output.ConsoleFormatter
	metrics *http.Server
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "hoopsrank",
		Short: "Fantasy basketball ratings and draft board",
		Long: `hoopsrank rates athletes from per-game box scores on a 0-100 scale per
category, builds Overall, Availability and Combined composites, weekly
schedule-weighted ratings and punt variants, and keeps a draft order per team.

Inputs and the draft store are configured with HOOPSRANK_* environment
variables, an optional .env file, or a YAML file named by HOOPSRANK_CONFIG.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "Only log errors and print no tables")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable tier colours")
	root.PersistentFlags().IntVarP(&c.top, "top", "n", 0, "Rows to print (overrides the top setting, 0 keeps it)")

	root.AddCommand(newRankCmd(c), newWeeklyCmd(c), newVarianceCmd(c), newAveragesCmd(c), newDraftCmd(c), newTeamCmd(c))
	return root
}

// run wraps a command body with setup and teardown. Teardown runs even when
// setup or the body fails.
func (c *cli) run(body func(ctx context.Context, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := c.setup(cmd); err != nil {
			return errors.Join(err, c.teardown(cmd))
		}
		err := body(cmd.Context(), args)
		return errors.Join(err, c.teardown(cmd))
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if c.top > 0 {
		cfg.Top = c.top
	}
	c.cfg = cfg

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if c.quiet {
		level = slog.LevelError
	}
	// Tables own stdout; records go to stderr.
	c.log = logger.New(cmd.ErrOrStderr(), level)

	backend, err := repository.ParseBackend(cfg.DraftBackend)
	if err != nil {
		return err
	}
	dsn := cfg.PostgresDSN
	if backend == repository.BackendSQLite {
		dsn = cfg.SQLitePath
	}
	c.store, err = repository.Open(ctx, backend, dsn, repository.WithLogger(c.log.Named("store")))
	if err != nil {
		return fmt.Errorf("open draft store: %w", err)
	}

	feedOpts := []feed.Option{feed.WithLogger(c.log.Named("feed"))}
	var cache *positions.Cache
	if _, err := os.Stat(cfg.PositionsPath); err == nil {
		cache = positions.NewCache(feed.PositionsFile{Path: cfg.PositionsPath, Options: feedOpts},
			positions.WithLogger(c.log.Named("positions")))
	} else if cfg.PositionsPath != "" {
		c.log.Warn(ctx, "positions file unavailable, showing N/A", logger.String("path", cfg.PositionsPath), logger.Error(err))
	}

	c.svc = app.New(
		app.WithLogger(c.log),
		app.WithFeeds(feed.Files{
			CurrentGamesPath: cfg.CurrentGamesPath,
			PriorGamesPath:   cfg.PriorGamesPath,
			RosterPath:       cfg.RosterPath,
			SchedulePath:     cfg.SchedulePath,
			Options:          feedOpts,
		}),
		app.WithDraftStore(c.store),
		app.WithPositions(cache),
		app.WithCategories(cfg.Categories),
		app.WithPuntMaxSize(cfg.PuntMaxSize),
		app.WithSeasonGames(cfg.SeasonGames),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
	)
	if err := c.svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	if cfg.MetricsAddr != "" {
		c.serveMetrics(ctx, cfg.MetricsAddr)
	}

	c.out = output.NewConsoleFormatter(cmd.OutOrStdout(), output.WithColor(!c.noColor), output.WithQuiet(c.quiet))
	return nil
}

func (c *cli) serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	c.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		c.log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := c.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
}

func (c *cli) teardown(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
	defer cancel()

	var errs []error
	if c.metrics != nil {
		if err := c.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop metrics server: %w", err))
		}
	}
	if c.svc != nil {
		if err := c.svc.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop service: %w", err))
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close draft store: %w", err))
		}
	}
	return errors.Join(errs...)
}
