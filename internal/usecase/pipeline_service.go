package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/performance"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/domain/schedule"
	"github.com/courtsidehq/courtside/internal/domain/unified"
	"github.com/courtsidehq/courtside/internal/platform/id"
	"github.com/courtsidehq/courtside/internal/platform/logging"
)

// LeagueClient fetches the primary-source collections for one season.
type LeagueClient interface {
	Roster(ctx context.Context, seasonCode string) ([]roster.Entry, error)
	Teams(ctx context.Context, seasonCode string) ([]roster.Team, error)
	Season(ctx context.Context, seasonCode string) (schedule.Season, error)
	GameLines(ctx context.Context, seasonCode string) ([]performance.GameLine, error)
}

// Snapshot is everything one run fetched, frozen before the join so a
// run can be replayed or audited without touching the live sources.
type Snapshot struct {
	RunID      string               `json:"run_id"`
	SeasonCode string               `json:"season_code"`
	TakenAt    time.Time            `json:"taken_at"`
	Roster     []roster.Entry       `json:"roster"`
	Teams      []roster.Team        `json:"teams"`
	Season     schedule.Season      `json:"season"`
	GameLines  []performance.GameLine `json:"game_lines"`
	Enrichment []enrichment.Result  `json:"enrichment"`
}

// SnapshotStore persists run snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Latest(ctx context.Context) (Snapshot, bool, error)
}

// Alerter pushes operator notifications. Delivery failures never fail a
// run.
type Alerter interface {
	Notify(ctx context.Context, message string) error
}

// RunReport is the summary of one completed pipeline run.
type RunReport struct {
	RunID       string        `json:"run_id"`
	SeasonCode  string        `json:"season_code"`
	Players     int           `json:"players"`
	NeedsReview int           `json:"needs_review"`
	Enriched    int           `json:"enriched"`
	Duration    time.Duration `json:"duration"`
	StartedAt   time.Time     `json:"started_at"`
}

// PipelineService drives one full run: fetch the primary collections
// concurrently, enrich, snapshot, join, and publish the record set.
// Any missing collection aborts the run with no partial output; the
// previous run's records stay live.
type PipelineService struct {
	league   LeagueClient
	lookup   *LookupService
	unify    *UnifyService
	records  unified.Repository
	snaps    SnapshotStore
	alerter  Alerter
	runIDs   id.Generator
	logger   *logging.Logger
	now      func() time.Time
}

func NewPipelineService(
	league LeagueClient,
	lookup *LookupService,
	unify *UnifyService,
	records unified.Repository,
	snaps SnapshotStore,
	alerter Alerter,
	runIDs id.Generator,
	logger *logging.Logger,
) *PipelineService {
	if runIDs == nil {
		runIDs = id.NewRandomGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		league:  league,
		lookup:  lookup,
		unify:   unify,
		records: records,
		snaps:   snaps,
		alerter: alerter,
		runIDs:  runIDs,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes one pipeline run for a season.
func (s *PipelineService) Run(ctx context.Context, seasonCode string) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	startedAt := s.now().UTC()
	runID, err := s.runIDs.NewID()
	if err != nil {
		return RunReport{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := s.logger.With("run_id", runID, "season", seasonCode)
	logger.InfoContext(ctx, "pipeline run starting")

	snap, err := s.fetch(ctx, runID, seasonCode)
	if err != nil {
		s.alert(ctx, fmt.Sprintf("pipeline run %s aborted: %v", runID, err))
		return RunReport{}, err
	}

	snap.Enrichment, err = s.lookup.EnrichRoster(ctx, snap.Roster)
	if err != nil {
		s.alert(ctx, fmt.Sprintf("pipeline run %s aborted: %v", runID, err))
		return RunReport{}, err
	}

	if s.snaps != nil {
		if err := s.snaps.Save(ctx, snap); err != nil {
			// A lost snapshot costs replayability, not the run.
			logger.WarnContext(ctx, "saving run snapshot failed", "error", err)
		}
	}

	recs, err := s.unify.Build(ctx, runID, BuildInput{
		Roster:     snap.Roster,
		Teams:      snap.Teams,
		Enrichment: snap.Enrichment,
		GameLines:  snap.GameLines,
	})
	if err != nil {
		s.alert(ctx, fmt.Sprintf("pipeline run %s aborted: %v", runID, err))
		return RunReport{}, err
	}

	if err := s.records.ReplaceAll(ctx, runID, recs); err != nil {
		s.alert(ctx, fmt.Sprintf("pipeline run %s failed to publish records: %v", runID, err))
		return RunReport{}, fmt.Errorf("publish records: %w", err)
	}

	report := s.buildReport(runID, seasonCode, startedAt, recs)

	logger.InfoContext(ctx, "pipeline run complete",
		"players", report.Players,
		"enriched", report.Enriched,
		"needs_review", report.NeedsReview,
		"duration", report.Duration,
	)
	if report.NeedsReview > 0 {
		s.alert(ctx, fmt.Sprintf(
			"pipeline run %s: %d of %d players need manual review",
			runID, report.NeedsReview, report.Players,
		))
	}

	return report, nil
}

// Replay rebuilds and republishes the record set from the latest saved
// snapshot without touching the live sources. Lookup attempts frozen in
// the snapshot are reused as-is, so a replay is deterministic.
func (s *PipelineService) Replay(ctx context.Context) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Replay")
	defer span.End()

	if s.snaps == nil {
		return RunReport{}, fmt.Errorf("%w: no snapshot store configured", ErrSourceMissing)
	}
	snap, found, err := s.snaps.Latest(ctx)
	if err != nil {
		return RunReport{}, fmt.Errorf("load latest snapshot: %w", err)
	}
	if !found {
		return RunReport{}, fmt.Errorf("%w: no snapshot to replay", ErrSourceMissing)
	}

	startedAt := s.now().UTC()
	logger := s.logger.With("run_id", snap.RunID, "season", snap.SeasonCode)
	logger.InfoContext(ctx, "replaying snapshot", "taken_at", snap.TakenAt)

	recs, err := s.unify.Build(ctx, snap.RunID, BuildInput{
		Roster:     snap.Roster,
		Teams:      snap.Teams,
		Enrichment: snap.Enrichment,
		GameLines:  snap.GameLines,
	})
	if err != nil {
		return RunReport{}, err
	}
	if err := s.records.ReplaceAll(ctx, snap.RunID, recs); err != nil {
		return RunReport{}, fmt.Errorf("publish records: %w", err)
	}

	report := s.buildReport(snap.RunID, snap.SeasonCode, startedAt, recs)
	logger.InfoContext(ctx, "snapshot replay complete",
		"players", report.Players,
		"enriched", report.Enriched,
		"needs_review", report.NeedsReview,
	)
	return report, nil
}

func (s *PipelineService) buildReport(runID, seasonCode string, startedAt time.Time, recs []unified.PlayerRecord) RunReport {
	report := RunReport{
		RunID:      runID,
		SeasonCode: seasonCode,
		Players:    len(recs),
		StartedAt:  startedAt,
		Duration:   s.now().UTC().Sub(startedAt),
	}
	for _, rec := range recs {
		if rec.NeedsReview {
			report.NeedsReview++
		}
		if HasRequiredData(rec.Enrichment) {
			report.Enriched++
		}
	}
	return report
}

// fetch loads the primary collections concurrently. Team and schedule
// failures degrade with a warning; roster and game line failures are
// fatal because the join cannot run without them.
func (s *PipelineService) fetch(ctx context.Context, runID, seasonCode string) (Snapshot, error) {
	snap := Snapshot{
		RunID:      runID,
		SeasonCode: seasonCode,
		TakenAt:    s.now().UTC(),
	}

	var (
		rosterErr, teamsErr, seasonErr, linesErr error
		wg                                       conc.WaitGroup
	)
	wg.Go(func() {
		snap.Roster, rosterErr = s.league.Roster(ctx, seasonCode)
	})
	wg.Go(func() {
		snap.Teams, teamsErr = s.league.Teams(ctx, seasonCode)
	})
	wg.Go(func() {
		snap.Season, seasonErr = s.league.Season(ctx, seasonCode)
	})
	wg.Go(func() {
		snap.GameLines, linesErr = s.league.GameLines(ctx, seasonCode)
	})
	wg.Wait()

	if rosterErr != nil {
		return Snapshot{}, fmt.Errorf("%w: roster: %v", ErrSourceMissing, rosterErr)
	}
	if linesErr != nil {
		return Snapshot{}, fmt.Errorf("%w: game lines: %v", ErrSourceMissing, linesErr)
	}
	if teamsErr != nil {
		s.logger.WarnContext(ctx, "team fetch failed, continuing without team metadata", "error", teamsErr)
		snap.Teams = []roster.Team{}
	}
	if seasonErr != nil {
		s.logger.WarnContext(ctx, "season fetch failed, continuing without schedule context", "error", seasonErr)
		snap.Season = schedule.Season{Code: seasonCode}
	}

	return snap, nil
}

func (s *PipelineService) alert(ctx context.Context, message string) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.Notify(ctx, message); err != nil {
		s.logger.WarnContext(ctx, "alert delivery failed", "error", err)
	}
}
