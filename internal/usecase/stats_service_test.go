package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/performance"
)

func floatPtr(v float64) *float64 { return &v }

func playedLine(gameID string, day int, points, rebounds, assists int) performance.GameLine {
	return performance.GameLine{
		GameID:   gameID,
		Date:     time.Date(2026, time.January, day, 20, 0, 0, 0, time.UTC),
		Minutes:  floatPtr(30),
		Points:   intPtr(points),
		Rebounds: intPtr(rebounds),
		Assists:  intPtr(assists),
		Steals:   intPtr(1),
		Blocks:   intPtr(0),
	}
}

func TestStatsService_Aggregate(t *testing.T) {
	ctx := context.Background()
	svc := NewStatsService()

	t.Run("averages divide by games played and round to one decimal", func(t *testing.T) {
		stats, _ := svc.Aggregate(ctx, []performance.GameLine{
			playedLine("G1", 1, 18, 5, 3),
			playedLine("G2", 2, 25, 7, 4),
			playedLine("G3", 3, 19, 6, 2),
		})

		if stats.GamesPlayed != 3 {
			t.Fatalf("unexpected games played: got=%d want=3", stats.GamesPlayed)
		}
		if stats.TotalPoints != 62 {
			t.Fatalf("unexpected total points: got=%d want=62", stats.TotalPoints)
		}
		if got := *stats.PPG; got != 20.7 {
			t.Fatalf("unexpected ppg: got=%v want=20.7", got)
		}
		if got := *stats.RPG; got != 6.0 {
			t.Fatalf("unexpected rpg: got=%v want=6.0", got)
		}
		if got := *stats.APG; got != 3.0 {
			t.Fatalf("unexpected apg: got=%v want=3.0", got)
		}
		if !stats.Complete {
			t.Fatal("season unexpectedly incomplete")
		}
	})

	t.Run("dnp lines stay logged but do not dilute averages", func(t *testing.T) {
		dnp := performance.GameLine{
			GameID: "G4",
			Date:   time.Date(2026, time.January, 4, 20, 0, 0, 0, time.UTC),
		}
		zeroMinutes := playedLine("G5", 5, 0, 0, 0)
		zeroMinutes.Minutes = floatPtr(0)

		stats, log := svc.Aggregate(ctx, []performance.GameLine{
			playedLine("G1", 1, 10, 4, 2),
			dnp,
			zeroMinutes,
		})

		if stats.GamesLogged != 3 {
			t.Fatalf("unexpected games logged: got=%d want=3", stats.GamesLogged)
		}
		if stats.GamesPlayed != 1 {
			t.Fatalf("unexpected games played: got=%d want=1", stats.GamesPlayed)
		}
		if got := *stats.PPG; got != 10.0 {
			t.Fatalf("unexpected ppg: got=%v want=10.0", got)
		}
		if len(log) != 3 {
			t.Fatalf("unexpected log length: got=%d want=3", len(log))
		}
	})

	t.Run("missing counting stat sums as zero and flags incomplete", func(t *testing.T) {
		partial := playedLine("G2", 2, 12, 3, 1)
		partial.Rebounds = nil

		stats, _ := svc.Aggregate(ctx, []performance.GameLine{
			playedLine("G1", 1, 10, 4, 2),
			partial,
		})

		if stats.TotalRebounds != 4 {
			t.Fatalf("unexpected total rebounds: got=%d want=4", stats.TotalRebounds)
		}
		if stats.Complete {
			t.Fatal("season unexpectedly complete")
		}
	})

	t.Run("no qualifying games leaves averages nil", func(t *testing.T) {
		stats, _ := svc.Aggregate(ctx, []performance.GameLine{
			{GameID: "G1", Date: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		})

		if stats.PPG != nil || stats.RPG != nil || stats.APG != nil {
			t.Fatalf("unexpected averages: ppg=%v rpg=%v apg=%v", stats.PPG, stats.RPG, stats.APG)
		}
		if stats.GamesPlayed != 0 {
			t.Fatalf("unexpected games played: got=%d want=0", stats.GamesPlayed)
		}
	})

	t.Run("empty input aggregates to zero values", func(t *testing.T) {
		stats, log := svc.Aggregate(ctx, nil)
		if stats.GamesLogged != 0 || stats.GamesPlayed != 0 || len(log) != 0 {
			t.Fatalf("unexpected aggregate: %+v", stats)
		}
	})

	t.Run("duplicate game ids keep the last line", func(t *testing.T) {
		first := playedLine("G1", 1, 10, 4, 2)
		corrected := playedLine("G1", 1, 12, 4, 2)

		stats, log := svc.Aggregate(ctx, []performance.GameLine{first, corrected})

		if stats.GamesLogged != 1 {
			t.Fatalf("unexpected games logged: got=%d want=1", stats.GamesLogged)
		}
		if stats.TotalPoints != 12 {
			t.Fatalf("unexpected total points: got=%d want=12", stats.TotalPoints)
		}
		if len(log) != 1 {
			t.Fatalf("unexpected log length: got=%d want=1", len(log))
		}
	})

	t.Run("percentages use only complete made-attempted pairs", func(t *testing.T) {
		full := playedLine("G1", 1, 20, 5, 3)
		full.FGMade = intPtr(8)
		full.FGAttempted = intPtr(16)

		partial := playedLine("G2", 2, 15, 4, 2)
		partial.FGMade = intPtr(6)
		// attempts missing: the pair is skipped

		stats, _ := svc.Aggregate(ctx, []performance.GameLine{full, partial})

		if got := *stats.FGPct; got != 50.0 {
			t.Fatalf("unexpected fg pct: got=%v want=50.0", got)
		}
		if stats.ThreePct != nil {
			t.Fatalf("unexpected three pct: got=%v want=nil", *stats.ThreePct)
		}
	})

	t.Run("game log comes back in date order", func(t *testing.T) {
		_, log := svc.Aggregate(ctx, []performance.GameLine{
			playedLine("G3", 9, 10, 1, 1),
			playedLine("G1", 2, 10, 1, 1),
			playedLine("G2", 5, 10, 1, 1),
		})

		want := []string{"G1", "G2", "G3"}
		for i, id := range want {
			if log[i].GameID != id {
				t.Fatalf("unexpected order at %d: got=%s want=%s", i, log[i].GameID, id)
			}
		}
	})
}
