package unified

import (
	"time"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/performance"
)

// HomeAway marks which side the player's team was on.
type HomeAway string

const (
	Home HomeAway = "home"
	Away HomeAway = "away"
)

// GameResult is the outcome from the player's team's perspective.
type GameResult string

const (
	Win  GameResult = "W"
	Loss GameResult = "L"
)

// GameSummary is one game line with the context derived at join time:
// opponent, side, and result from the player's perspective.
type GameSummary struct {
	Line     performance.GameLine `json:"line"`
	Opponent string               `json:"opponent"`
	Side     HomeAway             `json:"side"`
	Result   GameResult           `json:"result,omitempty"`
}

// PlayerRecord is the final per-player output of a pipeline run: one
// record per resolved identity, combining roster info, the highest
// priority enrichment found, and season aggregates.
//
// Records are built fresh on every run from that run's snapshot and
// replaced wholesale by the next run; nothing patches them in place.
// Only the record builder constructs them.
type PlayerRecord struct {
	IdentityID  string              `json:"identity_id"`
	Key         string              `json:"key"`
	Name        string              `json:"name"`
	Resolution  identity.Resolution `json:"resolution"`
	NeedsReview bool                `json:"needs_review"`

	TeamID       string     `json:"team_id"`
	TeamName     string     `json:"team_name"`
	TeamArena    string     `json:"team_arena,omitempty"`
	TeamCountry  string     `json:"team_country,omitempty"`
	Position     string     `json:"position,omitempty"`
	Jersey       *int       `json:"jersey,omitempty"`
	HeightCM     *int       `json:"height_cm,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Nationality  string     `json:"nationality,omitempty"`
	BirthCountry string     `json:"birth_country,omitempty"`

	Enrichment enrichment.Merged       `json:"enrichment"`
	Stats      performance.SeasonStats `json:"stats"`
	Games      []GameSummary           `json:"games,omitempty"`

	RunID   string    `json:"run_id"`
	BuiltAt time.Time `json:"built_at"`
}

// Hometown renders "City, State" when both parts survived the merge,
// "" otherwise. The dashboard never substitutes placeholder text for a
// missing hometown.
func (r PlayerRecord) Hometown() string {
	city := r.Enrichment.Fields.HometownCity
	state := r.Enrichment.Fields.HometownState
	if city == nil || state == nil {
		return ""
	}
	return *city + ", " + *state
}

// RecentGames returns up to n most recent games. Games are stored most
// recent first.
func (r PlayerRecord) RecentGames(n int) []GameSummary {
	if n <= 0 || len(r.Games) <= n {
		return r.Games
	}
	return r.Games[:n]
}
