package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/courtsidehq/courtside/external/alerts"
	"github.com/courtsidehq/courtside/external/euroleague"
	"github.com/courtsidehq/courtside/external/hometown"
	"github.com/courtsidehq/courtside/internal/config"
	"github.com/courtsidehq/courtside/internal/infrastructure/repository/postgres"
	"github.com/courtsidehq/courtside/internal/infrastructure/repository/snapshot"
	"github.com/courtsidehq/courtside/internal/interfaces/httpapi"
	"github.com/courtsidehq/courtside/internal/platform/cache"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/resilience"
	"github.com/courtsidehq/courtside/internal/usecase"
)

// NewHTTPServer wires the read-only dashboard API over the published
// record set.
func NewHTTPServer(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	records := postgres.NewPlayerRecordRepository(db)
	playerSvc := usecase.NewPlayerQueryService(records)
	if cfg.DashboardCacheTTL > 0 {
		playerSvc = usecase.NewCachedPlayerQueryService(records, cache.NewStore(cfg.DashboardCacheTTL))
	}

	handler := httpapi.NewHandler(playerSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// NewPipeline wires the full aggregation pipeline: league feed client,
// hometown lookup chain, identity resolution, merge, and publication.
func NewPipeline(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*usecase.PipelineService, error) {
	overrides, err := LoadOverrideTable(cfg.OverridesPath)
	if err != nil {
		return nil, err
	}

	league := euroleague.NewClient(euroleague.ClientConfig{
		BaseURL:     cfg.LeagueBaseURL,
		Competition: cfg.LeagueCompetition,
		Timeout:     cfg.LeagueTimeout,
		MaxRetries:  cfg.LeagueMaxRetries,
		Logger:      logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.LeagueCircuitEnabled,
			FailureThreshold: cfg.LeagueCircuitFailureCount,
			OpenTimeout:      cfg.LeagueCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.LeagueCircuitHalfOpenMaxReq,
		},
	})

	sources, err := buildHometownSources(cfg, logger)
	if err != nil {
		return nil, err
	}
	lookup := usecase.NewLookupService(sources, postgres.NewEnrichmentRepository(db), cfg.LookupWorkers, logger)

	identities := usecase.NewIdentityService(overrides, cfg.IdentityTiebreak)
	enricher, err := usecase.NewEnrichmentService(cfg.EnrichmentSourcePriority, overrides)
	if err != nil {
		return nil, err
	}
	unify := usecase.NewUnifyService(identities, enricher, usecase.NewStatsService(), cfg.UnifyWorkers, logger)

	snaps, err := snapshot.NewFileStore(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}

	var alerter usecase.Alerter
	if cfg.SlackEnabled {
		alerter, err = alerts.NewSlackAlerter(alerts.SlackAlerterConfig{
			WebhookURL: cfg.SlackWebhookURL,
			Channel:    cfg.SlackChannel,
			Username:   cfg.SlackUsername,
			Timeout:    cfg.SlackTimeout,
			MaxRetries: cfg.SlackMaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
	}

	records := postgres.NewPlayerRecordRepository(db)
	return usecase.NewPipelineService(league, lookup, unify, records, snaps, alerter, nil, logger), nil
}

func buildHometownSources(cfg config.Config, logger *logging.Logger) ([]usecase.HometownSource, error) {
	sources := make([]usecase.HometownSource, 0, len(cfg.EnrichmentSourcePriority))
	for _, name := range cfg.EnrichmentSourcePriority {
		sourceCfg := hometown.SourceConfig{
			Timeout:            cfg.HometownTimeout,
			MinRequestInterval: cfg.HometownRequestInterval,
			Logger:             logger,
		}
		switch name {
		case "basketball_reference":
			sourceCfg.BaseURL = cfg.BasketballRefBaseURL
			sources = append(sources, hometown.NewBasketballReferenceSource(sourceCfg))
		case "wikipedia":
			sourceCfg.BaseURL = cfg.WikipediaBaseURL
			sources = append(sources, hometown.NewWikipediaSource(sourceCfg))
		case "grokepedia":
			sourceCfg.BaseURL = cfg.GrokepediaBaseURL
			sources = append(sources, hometown.NewGrokepediaSource(sourceCfg))
		default:
			return nil, fmt.Errorf("unknown enrichment source %q", name)
		}
	}
	return sources, nil
}
