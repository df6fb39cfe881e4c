package performance

import (
	"time"

	"github.com/courtsidehq/courtside/internal/domain/identity"
)

// GameLine is one player's statistical line in one game, immutable once
// the game is complete. Counting stats are pointers because a missing
// stat in the source feed is "unknown", not zero; the aggregator sums
// absent values as zero but flags the season as incomplete.
type GameLine struct {
	IdentityHint identity.Hint `json:"identity_hint"`
	GameID       string        `json:"game_id"`
	Date         time.Time     `json:"date"`
	Team         string        `json:"team"`
	LocalTeam    string        `json:"local_team"`
	RoadTeam     string        `json:"road_team"`
	LocalScore   *int          `json:"local_score,omitempty"`
	RoadScore    *int          `json:"road_score,omitempty"`
	Starter      bool          `json:"starter"`

	Minutes        *float64 `json:"minutes,omitempty"`
	Points         *int     `json:"points,omitempty"`
	Rebounds       *int     `json:"rebounds,omitempty"`
	Assists        *int     `json:"assists,omitempty"`
	Steals         *int     `json:"steals,omitempty"`
	Blocks         *int     `json:"blocks,omitempty"`
	Turnovers      *int     `json:"turnovers,omitempty"`
	FGMade         *int     `json:"fg_made,omitempty"`
	FGAttempted    *int     `json:"fg_attempted,omitempty"`
	ThreeMade      *int     `json:"three_made,omitempty"`
	ThreeAttempted *int     `json:"three_attempted,omitempty"`
	FTMade         *int     `json:"ft_made,omitempty"`
	FTAttempted    *int     `json:"ft_attempted,omitempty"`
	PlusMinus      *int     `json:"plus_minus,omitempty"`
	PIR            *int     `json:"pir,omitempty"`
}

// Played reports whether the line counts toward per-game averages.
// DNP lines (no minutes, or zero minutes) stay in the game log but are
// excluded from averaging denominators.
func (l GameLine) Played() bool {
	return l.Minutes != nil && *l.Minutes > 0
}

// SeasonStats is the aggregated season view over all of one player's
// game lines. Totals are exact integers; averages are rounded to one
// decimal for display and are nil, not zero, when the player has no
// qualifying games.
type SeasonStats struct {
	GamesPlayed int `json:"games_played"`
	GamesLogged int `json:"games_logged"`

	TotalPoints   int `json:"total_points"`
	TotalRebounds int `json:"total_rebounds"`
	TotalAssists  int `json:"total_assists"`
	TotalSteals   int `json:"total_steals"`
	TotalBlocks   int `json:"total_blocks"`
	TotalMinutes  float64 `json:"total_minutes"`

	PPG *float64 `json:"ppg,omitempty"`
	RPG *float64 `json:"rpg,omitempty"`
	APG *float64 `json:"apg,omitempty"`
	SPG *float64 `json:"spg,omitempty"`
	BPG *float64 `json:"bpg,omitempty"`
	MPG *float64 `json:"mpg,omitempty"`

	FGPct    *float64 `json:"fg_pct,omitempty"`
	ThreePct *float64 `json:"three_pct,omitempty"`
	FTPct    *float64 `json:"ft_pct,omitempty"`

	// Complete is false when any summed line was missing a counting
	// stat, meaning totals are a lower bound rather than a measurement.
	Complete bool `json:"complete"`
}
