package usecase

import (
	"context"
	"math"
	"sort"

	"github.com/courtsidehq/courtside/internal/domain/performance"
)

// StatsService aggregates a player's game lines into season totals and
// per-game averages. Duplicate lines for one game id collapse to the
// last one seen; DNP lines stay in the log but are excluded from
// averaging denominators.
type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// Aggregate computes the season view over one player's lines. Totals
// treat missing counting stats as zero but mark the season incomplete;
// averages divide by games actually played and round to one decimal.
func (s *StatsService) Aggregate(ctx context.Context, lines []performance.GameLine) (performance.SeasonStats, []performance.GameLine) {
	_, span := startUsecaseSpan(ctx, "usecase.StatsService.Aggregate")
	defer span.End()

	lines = dedupeByGame(lines)

	stats := performance.SeasonStats{
		GamesLogged: len(lines),
		Complete:    true,
	}

	var (
		fgMade, fgAtt       int
		threeMade, threeAtt int
		ftMade, ftAtt       int
	)

	for _, line := range lines {
		if !line.Played() {
			continue
		}
		stats.GamesPlayed++

		stats.TotalPoints += sum(line.Points, &stats.Complete)
		stats.TotalRebounds += sum(line.Rebounds, &stats.Complete)
		stats.TotalAssists += sum(line.Assists, &stats.Complete)
		stats.TotalSteals += sum(line.Steals, &stats.Complete)
		stats.TotalBlocks += sum(line.Blocks, &stats.Complete)
		if line.Minutes != nil {
			stats.TotalMinutes += *line.Minutes
		}

		// Percentages only count lines where both halves of the pair are
		// present, so a partial feed cannot skew a ratio.
		if line.FGMade != nil && line.FGAttempted != nil {
			fgMade += *line.FGMade
			fgAtt += *line.FGAttempted
		}
		if line.ThreeMade != nil && line.ThreeAttempted != nil {
			threeMade += *line.ThreeMade
			threeAtt += *line.ThreeAttempted
		}
		if line.FTMade != nil && line.FTAttempted != nil {
			ftMade += *line.FTMade
			ftAtt += *line.FTAttempted
		}
	}

	if stats.GamesPlayed > 0 {
		n := float64(stats.GamesPlayed)
		stats.PPG = round1(float64(stats.TotalPoints) / n)
		stats.RPG = round1(float64(stats.TotalRebounds) / n)
		stats.APG = round1(float64(stats.TotalAssists) / n)
		stats.SPG = round1(float64(stats.TotalSteals) / n)
		stats.BPG = round1(float64(stats.TotalBlocks) / n)
		stats.MPG = round1(stats.TotalMinutes / n)
	}

	stats.FGPct = pct(fgMade, fgAtt)
	stats.ThreePct = pct(threeMade, threeAtt)
	stats.FTPct = pct(ftMade, ftAtt)

	return stats, lines
}

// dedupeByGame keeps the last line seen per game id and returns the log
// in ascending date order.
func dedupeByGame(lines []performance.GameLine) []performance.GameLine {
	if len(lines) == 0 {
		return nil
	}

	index := make(map[string]int, len(lines))
	out := make([]performance.GameLine, 0, len(lines))
	for _, line := range lines {
		if i, seen := index[line.GameID]; seen && line.GameID != "" {
			out[i] = line
			continue
		}
		index[line.GameID] = len(out)
		out = append(out, line)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func sum(v *int, complete *bool) int {
	if v == nil {
		*complete = false
		return 0
	}
	return *v
}

func round1(v float64) *float64 {
	r := math.Round(v*10) / 10
	return &r
}

func pct(made, attempted int) *float64 {
	if attempted == 0 {
		return nil
	}
	return round1(float64(made) / float64(attempted) * 100)
}
