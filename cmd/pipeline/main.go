package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtsidehq/courtside/internal/app"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/observability"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/usecase"
)

func main() {
	once := flag.Bool("once", false, "run a single pipeline pass and exit")
	replay := flag.Bool("replay", false, "rebuild from the latest saved snapshot instead of fetching, then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.NewJSON(cfg.LogLevel)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		os.Exit(1)
	}

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pipeline, err := app.NewPipeline(cfg, db, logger)
	if err != nil {
		logger.Error("build pipeline", "error", err)
		os.Exit(1)
	}

	ok := false
	if *replay {
		report, replayErr := pipeline.Replay(ctx)
		if replayErr != nil {
			logger.ErrorContext(ctx, "snapshot replay failed", "error", replayErr)
		} else {
			ok = true
			logger.InfoContext(ctx, "snapshot replay finished",
				"run_id", report.RunID,
				"players", report.Players,
				"needs_review", report.NeedsReview,
			)
		}
	} else {
		ok = runPass(ctx, pipeline, cfg, logger)
	}

	if !*once && !*replay {
		ticker := time.NewTicker(cfg.PipelineInterval)
		defer ticker.Stop()

		logger.Info("pipeline scheduled", "interval", cfg.PipelineInterval.String())
	loop:
		for {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
				runPass(ctx, pipeline, cfg, logger)
			}
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := stopProfiler(); err != nil {
		logger.Error("profiler shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracing shutdown failed", "error", err)
	}

	logger.Info("pipeline stopped")
	if (*once || *replay) && !ok {
		_ = logger.Sync()
		db.Close()
		os.Exit(1)
	}
}

func runPass(ctx context.Context, pipeline *usecase.PipelineService, cfg config.Config, logger *logging.Logger) bool {
	report, err := pipeline.Run(ctx, cfg.LeagueSeasonCode)
	if err != nil {
		logger.ErrorContext(ctx, "pipeline run failed", "season_code", cfg.LeagueSeasonCode, "error", err)
		return false
	}

	logger.InfoContext(ctx, "pipeline run finished",
		"run_id", report.RunID,
		"season_code", report.SeasonCode,
		"players", report.Players,
		"needs_review", report.NeedsReview,
		"enriched", report.Enriched,
		"duration", report.Duration.String(),
	)
	return true
}
