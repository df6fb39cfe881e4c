package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/courtsidehq/courtside/internal/domain/unified"
	"github.com/courtsidehq/courtside/internal/platform/cache"
)

const recordListCacheKey = "records:list"

// PlayerFilter narrows a player listing. Zero values mean "any".
type PlayerFilter struct {
	TeamID string
	State  string
}

// StateCount is one row of the hometown-state rollup.
type StateCount struct {
	State   string `json:"state"`
	Players int    `json:"players"`
}

// TeamSummary is one row of the team rollup.
type TeamSummary struct {
	TeamID    string `json:"team_id"`
	TeamName  string `json:"team_name"`
	Arena     string `json:"arena,omitempty"`
	Country   string `json:"country,omitempty"`
	Players   int    `json:"players"`
	Americans int    `json:"americans"`
}

// PlayerQueryService is the dashboard's read side over the published
// record set. It never mutates records.
type PlayerQueryService struct {
	records   unified.Repository
	listCache *cache.Store
}

func NewPlayerQueryService(records unified.Repository) *PlayerQueryService {
	return &PlayerQueryService{records: records}
}

// NewCachedPlayerQueryService puts a short-TTL list cache in front of
// the repository so dashboard bursts collapse into one read. The
// pipeline publishes from a separate process, so the TTL is the only
// invalidation.
func NewCachedPlayerQueryService(records unified.Repository, store *cache.Store) *PlayerQueryService {
	return &PlayerQueryService{records: records, listCache: store}
}

func (s *PlayerQueryService) listRecords(ctx context.Context) ([]unified.PlayerRecord, error) {
	if s.listCache == nil {
		return s.records.List(ctx)
	}
	value, err := s.listCache.GetOrLoad(ctx, recordListCacheKey, func(ctx context.Context) (any, error) {
		return s.records.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	records, _ := value.([]unified.PlayerRecord)
	return records, nil
}

// ListPlayers returns the record set ordered by scoring average,
// highest first. Players with no qualifying games sort last, ties break
// on name so the order is stable across requests.
func (s *PlayerQueryService) ListPlayers(ctx context.Context, filter PlayerFilter) ([]unified.PlayerRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerQueryService.ListPlayers")
	defer span.End()

	records, err := s.listRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list players: %v", ErrDependencyUnavailable, err)
	}

	filtered := records[:0:0]
	for _, rec := range records {
		if filter.TeamID != "" && rec.TeamID != filter.TeamID {
			continue
		}
		if filter.State != "" && !matchesState(rec, filter.State) {
			continue
		}
		filtered = append(filtered, rec)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		pi, pj := filtered[i].Stats.PPG, filtered[j].Stats.PPG
		switch {
		case pi != nil && pj != nil && *pi != *pj:
			return *pi > *pj
		case pi != nil && pj == nil:
			return true
		case pi == nil && pj != nil:
			return false
		default:
			return filtered[i].Name < filtered[j].Name
		}
	})

	return filtered, nil
}

// GetPlayer finds one record by identity id, falling back to the
// normalized key so dashboard URLs survive id changes between runs.
func (s *PlayerQueryService) GetPlayer(ctx context.Context, identityID string) (unified.PlayerRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerQueryService.GetPlayer")
	defer span.End()

	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return unified.PlayerRecord{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	rec, found, err := s.records.GetByIdentityID(ctx, identityID)
	if err != nil {
		return unified.PlayerRecord{}, fmt.Errorf("%w: get player: %v", ErrDependencyUnavailable, err)
	}
	if found {
		return rec, nil
	}

	records, err := s.listRecords(ctx)
	if err != nil {
		return unified.PlayerRecord{}, fmt.Errorf("%w: get player: %v", ErrDependencyUnavailable, err)
	}
	for _, candidate := range records {
		if candidate.Key == identityID {
			return candidate, nil
		}
	}

	return unified.PlayerRecord{}, fmt.Errorf("%w: player %q", ErrNotFound, identityID)
}

// PlayerGames returns up to limit most recent games for one player.
// limit <= 0 means the full log.
func (s *PlayerQueryService) PlayerGames(ctx context.Context, identityID string, limit int) ([]unified.GameSummary, error) {
	rec, err := s.GetPlayer(ctx, identityID)
	if err != nil {
		return nil, err
	}
	return rec.RecentGames(limit), nil
}

// StateBreakdown rolls the record set up by hometown state, most
// players first. Players without a merged state are excluded rather
// than bucketed under a placeholder.
func (s *PlayerQueryService) StateBreakdown(ctx context.Context) ([]StateCount, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerQueryService.StateBreakdown")
	defer span.End()

	records, err := s.listRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: state breakdown: %v", ErrDependencyUnavailable, err)
	}

	counts := map[string]int{}
	for _, rec := range records {
		state := rec.Enrichment.Fields.HometownState
		if state == nil || strings.TrimSpace(*state) == "" {
			continue
		}
		counts[strings.TrimSpace(*state)]++
	}

	out := make([]StateCount, 0, len(counts))
	for state, n := range counts {
		out = append(out, StateCount{State: state, Players: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Players != out[j].Players {
			return out[i].Players > out[j].Players
		}
		return out[i].State < out[j].State
	})
	return out, nil
}

// ReviewQueue lists every record awaiting operator attention, ordered
// by name.
func (s *PlayerQueryService) ReviewQueue(ctx context.Context) ([]unified.PlayerRecord, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerQueryService.ReviewQueue")
	defer span.End()

	records, err := s.records.ListNeedingReview(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: review queue: %v", ErrDependencyUnavailable, err)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records, nil
}

// Teams rolls the record set up per team, ordered by name.
func (s *PlayerQueryService) Teams(ctx context.Context) ([]TeamSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerQueryService.Teams")
	defer span.End()

	records, err := s.listRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: teams: %v", ErrDependencyUnavailable, err)
	}

	byID := map[string]*TeamSummary{}
	for _, rec := range records {
		if rec.TeamID == "" {
			continue
		}
		team := byID[rec.TeamID]
		if team == nil {
			team = &TeamSummary{TeamID: rec.TeamID, TeamName: rec.TeamName}
			byID[rec.TeamID] = team
		}
		if team.TeamName == "" {
			team.TeamName = rec.TeamName
		}
		if team.Arena == "" {
			team.Arena = rec.TeamArena
		}
		if team.Country == "" {
			team.Country = rec.TeamCountry
		}
		team.Players++
		if isAmerican(rec.Nationality, rec.BirthCountry) {
			team.Americans++
		}
	}

	out := make([]TeamSummary, 0, len(byID))
	for _, team := range byID {
		out = append(out, *team)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TeamName < out[j].TeamName
	})
	return out, nil
}

func matchesState(rec unified.PlayerRecord, state string) bool {
	v := rec.Enrichment.Fields.HometownState
	return v != nil && strings.EqualFold(strings.TrimSpace(*v), strings.TrimSpace(state))
}
