package schedule

import "time"

// Game is one fixture on the league schedule.
type Game struct {
	ID         string    `json:"id"`
	Round      int       `json:"round"`
	Date       time.Time `json:"date"`
	LocalTeam  string    `json:"local_team"`
	RoadTeam   string    `json:"road_team"`
	LocalScore *int      `json:"local_score,omitempty"`
	RoadScore  *int      `json:"road_score,omitempty"`
	Venue      string    `json:"venue,omitempty"`
	Played     bool      `json:"played"`
}

// Season is the schedule context attached to a pipeline run.
type Season struct {
	League     string `json:"league"`
	Code       string `json:"code"`
	TotalGames int    `json:"total_games"`
	Games      []Game `json:"games,omitempty"`
}
