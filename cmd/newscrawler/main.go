package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sporhub/newscrawler/internal/api"
	"github.com/sporhub/newscrawler/internal/config"
	"github.com/sporhub/newscrawler/internal/fetcher"
	"github.com/sporhub/newscrawler/internal/sched"
	"github.com/sporhub/newscrawler/internal/scrape"
	"github.com/sporhub/newscrawler/internal/store"
)

var (
	cfgFile       string
	verbose       bool
	runFamily     string
	backfillLimit int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newscrawler",
		Short: "Sports news crawler for the SporHub backend",
		Long: `newscrawler collects sports headlines from Turkish news sites,
follows each headline to its full article, filters out duplicates and
stores the results in MongoDB.

Modes:
  run       one crawl over a source family, then exit
  schedule  daily crawls on a cron timetable plus the admin API
  backfill  repair stored articles whose body text is broken`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scheduleCmd())
	rootCmd.AddCommand(backfillCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runCmd creates the "run" subcommand.
func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one crawl and exit",
		RunE:  runOnce,
	}
	cmd.Flags().StringVarP(&runFamily, "source", "s", scrape.FamilyAll,
		"source family: all, generic, sporx, konyaspor")
	return cmd
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if !scrape.KnownFamily(runFamily) {
		return fmt.Errorf("unknown source family %q", runFamily)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer db.Close()
	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Warn("index creation failed", "error", err)
	}

	fetch := fetcher.New(&cfg.Fetcher, logger)
	defer fetch.Close()

	orch := scrape.NewOrchestrator(fetch, db, cfg.Crawl, logger)
	res, err := orch.Run(ctx, runFamily)
	if err != nil {
		return fmt.Errorf("crawl: %w", err)
	}

	fmt.Printf("Crawl complete in %s\n", res.Duration.Round(time.Millisecond))
	fmt.Printf("  Processed: %d\n", res.Processed)
	fmt.Printf("  Added:     %d\n", res.Added)
	for _, sr := range res.Sources {
		fmt.Printf("  %-22s processed=%d added=%d failed=%d\n", sr.Source, sr.Processed, sr.Added, sr.Failed)
	}
	return nil
}

// scheduleCmd creates the "schedule" subcommand: the long-running mode
// with cron jobs and the admin API.
func scheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily crawl schedule and the admin API",
		RunE:  runSchedule,
	}
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer db.Close()
	if err := db.EnsureIndexes(ctx); err != nil {
		logger.Warn("index creation failed", "error", err)
	}

	fetch := fetcher.New(&cfg.Fetcher, logger)
	defer fetch.Close()

	orch := scrape.NewOrchestrator(fetch, db, cfg.Crawl, logger)

	var scheduler *sched.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = sched.New(orch, cfg.Scheduler, logger)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	var server *api.Server
	if cfg.API.Enabled {
		server = api.NewServer(cfg.API, orch, db, logger)
		server.Start()
	}

	logger.Info("newscrawler running", "version", config.Version)
	<-ctx.Done()
	logger.Info("shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}
	if server != nil {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sctx); err != nil {
			logger.Warn("api shutdown failed", "error", err)
		}
	}
	return nil
}

// backfillCmd creates the "backfill" subcommand.
func backfillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Repair stored articles with broken body text",
		RunE:  runBackfill,
	}
	cmd.Flags().IntVarP(&backfillLimit, "limit", "l", 100, "maximum articles to examine")
	return cmd
}

func runBackfill(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Connect(ctx, cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer db.Close()

	fetch := fetcher.New(&cfg.Fetcher, logger)
	defer fetch.Close()

	bf := scrape.NewBackfiller(fetch, db, cfg.Crawl, logger)
	res, err := bf.Run(ctx, backfillLimit)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	fmt.Printf("Backfill complete\n")
	fmt.Printf("  Examined: %d\n", res.Examined)
	fmt.Printf("  Suspect:  %d\n", res.Suspect)
	fmt.Printf("  Repaired: %d\n", res.Repaired)
	fmt.Printf("  Failed:   %d\n", res.Failed)
	return nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newscrawler %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Fetcher:\n")
			fmt.Printf("  User Agent:       %s\n", cfg.Fetcher.UserAgent)
			fmt.Printf("  Listing Timeout:  %s\n", cfg.Fetcher.ListingTimeout)
			fmt.Printf("  Detail Timeout:   %s\n", cfg.Fetcher.DetailTimeout)
			fmt.Printf("  Max Body Size:    %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Printf("\nCrawl:\n")
			fmt.Printf("  Max Per Source:   %d\n", cfg.Crawl.MaxArticlesPerSource)
			fmt.Printf("  Article Delay:    %s\n", cfg.Crawl.ArticleDelay)
			fmt.Printf("  Source Delay:     %s\n", cfg.Crawl.SourceDelay)
			fmt.Printf("\nStore:\n")
			fmt.Printf("  Database:         %s\n", cfg.Store.Database)
			fmt.Printf("  News Collection:  %s\n", cfg.Store.NewsCollection)
			fmt.Printf("  Admin Logs:       %s\n", cfg.Store.AdminLogCollection)
			fmt.Printf("\nScheduler:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.Scheduler.Enabled)
			fmt.Printf("  Morning:          %s\n", cfg.Scheduler.MorningSpec)
			fmt.Printf("  Midday:           %s\n", cfg.Scheduler.MiddaySpec)
			fmt.Printf("  Evening:          %s\n", cfg.Scheduler.EveningSpec)
			fmt.Printf("  Night:            %s\n", cfg.Scheduler.NightSpec)
			fmt.Printf("\nAPI:\n")
			fmt.Printf("  Enabled:          %v\n", cfg.API.Enabled)
			fmt.Printf("  Port:             %d\n", cfg.API.Port)
			return nil
		},
	}
}

// setup loads configuration and builds the logger.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, setupLogger(cfg.Logging), nil
}

// setupLogger creates a structured logger.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	if verbose || cfg.Level == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
