package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MuditaSai/redlens/internal/collector"
	"github.com/MuditaSai/redlens/internal/config"
	"github.com/MuditaSai/redlens/internal/dedupe"
	"github.com/MuditaSai/redlens/internal/observability/otelx"
	"github.com/MuditaSai/redlens/internal/output"
	"github.com/MuditaSai/redlens/internal/reddit"
	"github.com/MuditaSai/redlens/internal/schedule"
)

func main() {
	// Credentials usually live in a .env file during development.
	_ = godotenv.Load()

	configPath := flag.String("config", getenv("REDLENS_CONFIG", "redlens.yaml"), "path to collection document")
	outputPath := flag.String("output", "", "output path override (file or directory)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	daemon := flag.Bool("daemon", false, "run on the configured cron schedule instead of once")
	flag.Parse()

	env := config.LoadEnv()
	logger := newLogger(*verbose, env.LogLevel)
	slog.SetDefault(logger)

	doc, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if *outputPath != "" {
		doc.Output.Path = *outputPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	if shutdown != nil {
		defer func() { _ = shutdown(context.Background()) }()
	}

	client, err := reddit.NewClient(logger, reddit.Options{
		Timeout:      env.HTTPTimeout,
		UserAgent:    env.UserAgent,
		ClientID:     env.ClientID,
		ClientSecret: env.ClientSecret,
		Username:     env.Username,
		Password:     env.Password,
	})
	if err != nil {
		log.Fatalf("failed to init reddit client: %v", err)
	}

	var store dedupe.Store
	if doc.Dedupe.Path != "" {
		sqlStore, err := dedupe.NewSQLiteStore(doc.Dedupe.Path, doc.Dedupe.Table, doc.Dedupe.TTL.Duration)
		if err != nil {
			log.Fatalf("failed to open dedupe store: %v", err)
		}
		defer func() { _ = sqlStore.Close() }()
		store = sqlStore
	}

	coll, err := collector.New(client, doc, collector.Options{Logger: logger, Store: store})
	if err != nil {
		log.Fatalf("failed to build collector: %v", err)
	}

	if *daemon {
		if doc.Schedule.Cron == "" {
			log.Fatalf("daemon mode requires schedule.cron in the config")
		}
		runDaemon(ctx, logger, coll, doc)
		return
	}

	if err := runOnce(ctx, logger, coll, doc); err != nil {
		logger.Error("collection run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runOnce performs one collection and writes the envelope. A cancelled run
// still writes whatever was collected before returning the error.
func runOnce(ctx context.Context, logger *slog.Logger, coll *collector.Collector, doc *config.Document) error {
	run, runErr := coll.Run(ctx)

	path, err := output.Write(doc.Output.Path, run, doc.PrettyOutput())
	if err != nil {
		return err
	}

	size := int64(0)
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	logger.Info("envelope written",
		slog.String("path", path),
		slog.Int64("bytes", size),
		slog.Int("posts", run.Summary.TotalPosts),
		slog.Int("comments", run.Summary.TotalComments))

	return runErr
}

func runDaemon(ctx context.Context, logger *slog.Logger, coll *collector.Collector, doc *config.Document) {
	cron := schedule.New(doc.Schedule.Cron, doc.Schedule.Timezone)
	ticks, err := cron.Start(ctx)
	if err != nil {
		log.Fatalf("failed to start schedule: %v", err)
	}
	logger.Info("daemon started", slog.String("cron", doc.Schedule.Cron))

	for range ticks {
		if err := runOnce(ctx, logger, coll, doc); err != nil {
			logger.Error("scheduled run failed", slog.String("error", err.Error()))
		}
	}
}

func newLogger(verbose bool, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
