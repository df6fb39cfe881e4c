package euroleague

// Wire types for the league feed. People, clubs, games, and box scores
// come back as envelopes with a data array; optional numerics arrive as
// pointers so "not recorded" survives decoding.

type peopleEnvelope struct {
	Data  []personItem `json:"data"`
	Total int          `json:"total"`
}

type personItem struct {
	PersonCode   string  `json:"personCode"`
	Name         string  `json:"name"`
	ClubCode     string  `json:"clubCode"`
	ClubName     string  `json:"clubName"`
	Position     string  `json:"positionName"`
	Dorsal       *int    `json:"dorsal,omitempty"`
	HeightCM     *int    `json:"height,omitempty"`
	BirthDate    string  `json:"birthDate,omitempty"`
	Nationality  string  `json:"nationality,omitempty"`
	BirthCountry string  `json:"birthCountryName,omitempty"`
	Active       *bool   `json:"active,omitempty"`
	ImageURL     *string `json:"imageUrl,omitempty"`
}

type clubsEnvelope struct {
	Data []clubItem `json:"data"`
}

type clubItem struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Alias   string `json:"alias,omitempty"`
	Country string `json:"countryName,omitempty"`
	Arena   string `json:"venueName,omitempty"`
}

type gamesEnvelope struct {
	Data []gameItem `json:"data"`
}

type gameItem struct {
	GameCode   string `json:"gameCode"`
	Round      int    `json:"round"`
	Date       string `json:"date"`
	LocalClub  string `json:"localClub"`
	RoadClub   string `json:"roadClub"`
	LocalScore *int   `json:"localScore,omitempty"`
	RoadScore  *int   `json:"roadScore,omitempty"`
	Venue      string `json:"venueName,omitempty"`
	Played     bool   `json:"played"`
}

type boxScoreEnvelope struct {
	Data []boxScoreLine `json:"data"`
}

type boxScoreLine struct {
	GameCode   string `json:"gameCode"`
	Date       string `json:"date"`
	PersonCode string `json:"personCode"`
	PlayerName string `json:"playerName"`
	ClubCode   string `json:"clubCode"`
	LocalClub  string `json:"localClub"`
	RoadClub   string `json:"roadClub"`
	LocalScore *int   `json:"localScore,omitempty"`
	RoadScore  *int   `json:"roadScore,omitempty"`
	Starter    bool   `json:"starter"`

	Minutes        *string `json:"minutes,omitempty"`
	Points         *int    `json:"points,omitempty"`
	TotalRebounds  *int    `json:"totalRebounds,omitempty"`
	Assists        *int    `json:"assistances,omitempty"`
	Steals         *int    `json:"steals,omitempty"`
	Blocks         *int    `json:"blocksFavour,omitempty"`
	Turnovers      *int    `json:"turnovers,omitempty"`
	FGMade         *int    `json:"fieldGoalsMadeTotal,omitempty"`
	FGAttempted    *int    `json:"fieldGoalsAttemptedTotal,omitempty"`
	ThreeMade      *int    `json:"fieldGoalsMade3,omitempty"`
	ThreeAttempted *int    `json:"fieldGoalsAttempted3,omitempty"`
	FTMade         *int    `json:"freeThrowsMade,omitempty"`
	FTAttempted    *int    `json:"freeThrowsAttempted,omitempty"`
	PlusMinus      *int    `json:"plusMinus,omitempty"`
	PIR            *int    `json:"valuation,omitempty"`
}
