package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/performance"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/domain/unified"
	"github.com/courtsidehq/courtside/internal/platform/logging"
)

const defaultBuildWorkers = 8

// sourceLeagueFeed is the provenance marker for merged fields taken
// from the primary feed rather than a lookup source.
const sourceLeagueFeed = "league_feed"

// BuildInput is the set of source collections one run joins. A nil
// slice means the collection could not be loaded at all, which aborts
// the build; an empty non-nil slice is a legitimately empty collection.
type BuildInput struct {
	Roster     []roster.Entry
	Teams      []roster.Team
	Enrichment []enrichment.Result
	GameLines  []performance.GameLine
}

// UnifyService joins the per-source collections into one player record
// per resolved identity. Identity resolution runs first and alone; the
// per-identity assembly then fans out across a worker pool, each worker
// writing only its own slot.
type UnifyService struct {
	identities *IdentityService
	enricher   *EnrichmentService
	stats      *StatsService
	workers    int
	logger     *logging.Logger
}

func NewUnifyService(identities *IdentityService, enricher *EnrichmentService, stats *StatsService, workers int, logger *logging.Logger) *UnifyService {
	if workers <= 0 {
		workers = defaultBuildWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &UnifyService{
		identities: identities,
		enricher:   enricher,
		stats:      stats,
		workers:    workers,
		logger:     logger,
	}
}

// Build produces the full record set for one run. Output order follows
// roster order, so repeated runs over the same snapshot are identical.
func (s *UnifyService) Build(ctx context.Context, runID string, input BuildInput) ([]unified.PlayerRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UnifyService.Build")
	defer span.End()

	if input.Enrichment == nil {
		return nil, fmt.Errorf("%w: enrichment collection", ErrSourceMissing)
	}
	if input.GameLines == nil {
		return nil, fmt.Errorf("%w: game line collection", ErrSourceMissing)
	}

	ix, err := s.identities.ResolveRoster(ctx, input.Roster)
	if err != nil {
		return nil, err
	}

	idents := ix.Identities()
	records := make([]unified.PlayerRecord, len(idents))
	builtAt := time.Now().UTC()

	linesByIdentity := groupLines(ix, input.GameLines, s.logger)

	clubs := make(map[string]roster.Team, len(input.Teams))
	for _, team := range input.Teams {
		clubs[team.ID] = team
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create build pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, ident := range idents {
		i, ident := i, ident
		wg.Add(1)
		task := func() {
			defer wg.Done()
			records[i] = s.buildOne(ctx, ix, ident, clubs, input.Enrichment, linesByIdentity[ident.ID], runID, builtAt)
		}
		if err := pool.Submit(task); err != nil {
			// Pool refused the task (released or overloaded): build inline
			// rather than lose the record.
			task()
		}
	}
	wg.Wait()

	return records, nil
}

func (s *UnifyService) buildOne(ctx context.Context, ix *IdentityIndex, ident identity.Identity, clubs map[string]roster.Team, results []enrichment.Result, lines []performance.GameLine, runID string, builtAt time.Time) unified.PlayerRecord {
	record := unified.PlayerRecord{
		IdentityID:  ident.ID,
		Key:         ident.Key,
		Name:        ident.DisplayName,
		Resolution:  ident.Resolution,
		NeedsReview: ident.NeedsReview,
		RunID:       runID,
		BuiltAt:     builtAt,
	}

	for _, entry := range ix.EntriesFor(ident.ID) {
		fillRosterFields(&record, entry)
	}

	if club, ok := clubs[record.TeamID]; ok {
		if record.TeamName == "" {
			record.TeamName = club.Name
		}
		record.TeamArena = club.Arena
		record.TeamCountry = club.Country
	}

	// Review identities keep their roster and performance data, but no
	// enrichment is merged onto them until an operator decides who is who.
	if !ident.NeedsReview {
		record.Enrichment = s.enricher.Merge(ctx, ident, ResultsFor(ix, ident, results))
	}

	// The primary feed ships a headshot of its own; it fills in only
	// when no lookup source supplied one, so scraped photos keep
	// priority in the merge.
	if record.Enrichment.Fields.PhotoURL == nil {
		for _, entry := range ix.EntriesFor(ident.ID) {
			if entry.PhotoURL == nil {
				continue
			}
			record.Enrichment.Fields.PhotoURL = entry.PhotoURL
			if record.Enrichment.Provenance == nil {
				record.Enrichment.Provenance = map[string]string{}
			}
			record.Enrichment.Provenance[enrichment.FieldPhotoURL] = sourceLeagueFeed
			break
		}
	}

	stats, log := s.stats.Aggregate(ctx, lines)
	record.Stats = stats
	record.Games = summarize(log)

	if isAmerican(record.Nationality, record.BirthCountry) && !HasRequiredData(record.Enrichment) {
		record.NeedsReview = true
	}

	return record
}

// fillRosterFields folds one roster entry into the record, first value
// wins per field so the earliest entry stays authoritative.
func fillRosterFields(record *unified.PlayerRecord, entry roster.Entry) {
	if record.TeamID == "" {
		record.TeamID = entry.TeamID
	}
	if record.TeamName == "" {
		record.TeamName = entry.TeamName
	}
	if record.Position == "" {
		record.Position = entry.Position
	}
	if record.Jersey == nil {
		record.Jersey = entry.Jersey
	}
	if record.HeightCM == nil {
		record.HeightCM = entry.HeightCM
	}
	if record.BirthDate == nil {
		record.BirthDate = entry.BirthDate
	}
	if record.Nationality == "" {
		record.Nationality = entry.Nationality
	}
	if record.BirthCountry == "" {
		record.BirthCountry = entry.BirthCountry
	}
}

// groupLines assigns every game line to the identity it refers to.
// Unmatched lines are logged and dropped, never guessed onto a player.
func groupLines(ix *IdentityIndex, lines []performance.GameLine, logger *logging.Logger) map[string][]performance.GameLine {
	grouped := make(map[string][]performance.GameLine)
	for _, line := range lines {
		ident, ok := ix.Match(line.IdentityHint)
		if !ok {
			logger.Warn("game line matched no identity",
				"game_id", line.GameID,
				"player", line.IdentityHint.Name,
			)
			continue
		}
		grouped[ident.ID] = append(grouped[ident.ID], line)
	}
	return grouped
}

// summarize derives opponent, side, and result for every line and
// orders the log most recent first.
func summarize(log []performance.GameLine) []unified.GameSummary {
	if len(log) == 0 {
		return nil
	}

	out := make([]unified.GameSummary, 0, len(log))
	for i := len(log) - 1; i >= 0; i-- {
		line := log[i]
		summary := unified.GameSummary{Line: line}

		if line.Team == line.LocalTeam {
			summary.Side = unified.Home
			summary.Opponent = line.RoadTeam
		} else {
			summary.Side = unified.Away
			summary.Opponent = line.LocalTeam
		}

		if line.LocalScore != nil && line.RoadScore != nil {
			teamScore, oppScore := *line.LocalScore, *line.RoadScore
			if summary.Side == unified.Away {
				teamScore, oppScore = oppScore, teamScore
			}
			if teamScore > oppScore {
				summary.Result = unified.Win
			} else if teamScore < oppScore {
				summary.Result = unified.Loss
			}
		}

		out = append(out, summary)
	}
	return out
}

// americanMarkers covers the spellings the league and lookup sources
// use for US nationality.
var americanMarkers = map[string]struct{}{
	"usa":                      {},
	"us":                       {},
	"united states":            {},
	"united states of america": {},
	"american":                 {},
}

func isAmerican(nationality, birthCountry string) bool {
	for _, v := range []string{nationality, birthCountry} {
		if _, ok := americanMarkers[strings.ToLower(strings.TrimSpace(v))]; ok {
			return true
		}
	}
	return false
}
