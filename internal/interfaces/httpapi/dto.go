package httpapi

import (
	"time"

	"github.com/courtsidehq/courtside/internal/domain/performance"
	"github.com/courtsidehq/courtside/internal/domain/unified"
)

type playerListItemDTO struct {
	ID          string   `json:"id"`
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	TeamID      string   `json:"teamId"`
	TeamName    string   `json:"teamName"`
	Position    string   `json:"position,omitempty"`
	Jersey      *int     `json:"jersey,omitempty"`
	Nationality string   `json:"nationality,omitempty"`
	Hometown    string   `json:"hometown,omitempty"`
	HighSchool  *string  `json:"highSchool,omitempty"`
	PhotoURL    *string  `json:"photoUrl,omitempty"`
	GamesPlayed int      `json:"gamesPlayed"`
	PPG         *float64 `json:"ppg,omitempty"`
	RPG         *float64 `json:"rpg,omitempty"`
	APG         *float64 `json:"apg,omitempty"`
	NeedsReview bool     `json:"needsReview"`
}

type enrichmentDTO struct {
	Hometown        string            `json:"hometown,omitempty"`
	HometownCity    *string           `json:"hometownCity,omitempty"`
	HometownState   *string           `json:"hometownState,omitempty"`
	HighSchool      *string           `json:"highSchool,omitempty"`
	HighSchoolCity  *string           `json:"highSchoolCity,omitempty"`
	HighSchoolState *string           `json:"highSchoolState,omitempty"`
	College         *string           `json:"college,omitempty"`
	PhotoURL        *string           `json:"photoUrl,omitempty"`
	ProfileURL      *string           `json:"profileUrl,omitempty"`
	Provenance      map[string]string `json:"provenance,omitempty"`
}

type seasonStatsDTO struct {
	GamesPlayed int     `json:"gamesPlayed"`
	GamesLogged int     `json:"gamesLogged"`
	Points      int     `json:"points"`
	Rebounds    int     `json:"rebounds"`
	Assists     int     `json:"assists"`
	Steals      int     `json:"steals"`
	Blocks      int     `json:"blocks"`
	Minutes     float64 `json:"minutes"`

	PPG *float64 `json:"ppg,omitempty"`
	RPG *float64 `json:"rpg,omitempty"`
	APG *float64 `json:"apg,omitempty"`
	SPG *float64 `json:"spg,omitempty"`
	BPG *float64 `json:"bpg,omitempty"`
	MPG *float64 `json:"mpg,omitempty"`

	FGPct    *float64 `json:"fgPct,omitempty"`
	ThreePct *float64 `json:"threePct,omitempty"`
	FTPct    *float64 `json:"ftPct,omitempty"`

	Complete bool `json:"complete"`
}

type gameSummaryDTO struct {
	GameID   string    `json:"gameId"`
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
	Side     string    `json:"side"`
	Result   string    `json:"result,omitempty"`
	Starter  bool      `json:"starter"`
	Minutes  *float64  `json:"minutes,omitempty"`
	Points   *int      `json:"points,omitempty"`
	Rebounds *int      `json:"rebounds,omitempty"`
	Assists  *int      `json:"assists,omitempty"`
	PIR      *int      `json:"pir,omitempty"`
}

type playerDetailDTO struct {
	Player     playerListItemDTO `json:"player"`
	Resolution string            `json:"resolution"`
	BirthDate  *time.Time        `json:"birthDate,omitempty"`
	HeightCM   *int              `json:"heightCm,omitempty"`
	Enrichment enrichmentDTO     `json:"enrichment"`
	Statistics seasonStatsDTO    `json:"statistics"`
	Games      []gameSummaryDTO  `json:"games"`
	RunID      string            `json:"runId"`
	BuiltAt    time.Time         `json:"builtAt"`
}

func playerToListItemDTO(rec unified.PlayerRecord) playerListItemDTO {
	return playerListItemDTO{
		ID:          rec.IdentityID,
		Key:         rec.Key,
		Name:        rec.Name,
		TeamID:      rec.TeamID,
		TeamName:    rec.TeamName,
		Position:    rec.Position,
		Jersey:      rec.Jersey,
		Nationality: rec.Nationality,
		Hometown:    rec.Hometown(),
		HighSchool:  rec.Enrichment.Fields.HighSchool,
		PhotoURL:    rec.Enrichment.Fields.PhotoURL,
		GamesPlayed: rec.Stats.GamesPlayed,
		PPG:         rec.Stats.PPG,
		RPG:         rec.Stats.RPG,
		APG:         rec.Stats.APG,
		NeedsReview: rec.NeedsReview,
	}
}

func playerToDetailDTO(rec unified.PlayerRecord, games []unified.GameSummary) playerDetailDTO {
	gameItems := make([]gameSummaryDTO, 0, len(games))
	for _, g := range games {
		gameItems = append(gameItems, gameToSummaryDTO(g))
	}

	return playerDetailDTO{
		Player:     playerToListItemDTO(rec),
		Resolution: string(rec.Resolution),
		BirthDate:  rec.BirthDate,
		HeightCM:   rec.HeightCM,
		Enrichment: enrichmentToDTO(rec),
		Statistics: statsToDTO(rec.Stats),
		Games:      gameItems,
		RunID:      rec.RunID,
		BuiltAt:    rec.BuiltAt,
	}
}

func enrichmentToDTO(rec unified.PlayerRecord) enrichmentDTO {
	fields := rec.Enrichment.Fields
	return enrichmentDTO{
		Hometown:        rec.Hometown(),
		HometownCity:    fields.HometownCity,
		HometownState:   fields.HometownState,
		HighSchool:      fields.HighSchool,
		HighSchoolCity:  fields.HighSchoolCity,
		HighSchoolState: fields.HighSchoolState,
		College:         fields.College,
		PhotoURL:        fields.PhotoURL,
		ProfileURL:      fields.ProfileURL,
		Provenance:      rec.Enrichment.Provenance,
	}
}

func statsToDTO(stats performance.SeasonStats) seasonStatsDTO {
	return seasonStatsDTO{
		GamesPlayed: stats.GamesPlayed,
		GamesLogged: stats.GamesLogged,
		Points:      stats.TotalPoints,
		Rebounds:    stats.TotalRebounds,
		Assists:     stats.TotalAssists,
		Steals:      stats.TotalSteals,
		Blocks:      stats.TotalBlocks,
		Minutes:     stats.TotalMinutes,
		PPG:         stats.PPG,
		RPG:         stats.RPG,
		APG:         stats.APG,
		SPG:         stats.SPG,
		BPG:         stats.BPG,
		MPG:         stats.MPG,
		FGPct:       stats.FGPct,
		ThreePct:    stats.ThreePct,
		FTPct:       stats.FTPct,
		Complete:    stats.Complete,
	}
}

func gameToSummaryDTO(g unified.GameSummary) gameSummaryDTO {
	return gameSummaryDTO{
		GameID:   g.Line.GameID,
		Date:     g.Line.Date,
		Opponent: g.Opponent,
		Side:     string(g.Side),
		Result:   string(g.Result),
		Starter:  g.Line.Starter,
		Minutes:  g.Line.Minutes,
		Points:   g.Line.Points,
		Rebounds: g.Line.Rebounds,
		Assists:  g.Line.Assists,
		PIR:      g.Line.PIR,
	}
}
