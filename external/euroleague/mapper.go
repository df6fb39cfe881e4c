package euroleague

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/performance"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/domain/schedule"
)

func mapPersonToEntry(item personItem) roster.Entry {
	entry := roster.Entry{
		SourcePlayerID: strings.TrimSpace(item.PersonCode),
		DisplayName:    strings.TrimSpace(item.Name),
		TeamID:         strings.TrimSpace(item.ClubCode),
		TeamName:       strings.TrimSpace(item.ClubName),
		Position:       strings.TrimSpace(item.Position),
		Jersey:         item.Dorsal,
		HeightCM:       item.HeightCM,
		BirthDate:      parseFeedDate(item.BirthDate),
		Nationality:    strings.TrimSpace(item.Nationality),
		BirthCountry:   strings.TrimSpace(item.BirthCountry),
	}
	if item.ImageURL != nil {
		if src := strings.TrimSpace(*item.ImageURL); src != "" {
			entry.PhotoURL = &src
		}
	}
	return entry
}

func mapClubToTeam(item clubItem) roster.Team {
	return roster.Team{
		ID:      strings.TrimSpace(item.Code),
		Code:    strings.TrimSpace(item.Alias),
		Name:    strings.TrimSpace(item.Name),
		Country: strings.TrimSpace(item.Country),
		Arena:   strings.TrimSpace(item.Arena),
	}
}

func mapGame(item gameItem) schedule.Game {
	game := schedule.Game{
		ID:         strings.TrimSpace(item.GameCode),
		Round:      item.Round,
		LocalTeam:  strings.TrimSpace(item.LocalClub),
		RoadTeam:   strings.TrimSpace(item.RoadClub),
		LocalScore: item.LocalScore,
		RoadScore:  item.RoadScore,
		Venue:      strings.TrimSpace(item.Venue),
		Played:     item.Played,
	}
	if parsed := parseFeedDate(item.Date); parsed != nil {
		game.Date = *parsed
	}
	return game
}

func mapBoxScoreLine(item boxScoreLine) performance.GameLine {
	line := performance.GameLine{
		IdentityHint: identity.Hint{
			Name:     strings.TrimSpace(item.PlayerName),
			SourceID: strings.TrimSpace(item.PersonCode),
			TeamID:   strings.TrimSpace(item.ClubCode),
		},
		GameID:     strings.TrimSpace(item.GameCode),
		Team:       strings.TrimSpace(item.ClubCode),
		LocalTeam:  strings.TrimSpace(item.LocalClub),
		RoadTeam:   strings.TrimSpace(item.RoadClub),
		LocalScore: item.LocalScore,
		RoadScore:  item.RoadScore,
		Starter:    item.Starter,

		Points:         item.Points,
		Rebounds:       item.TotalRebounds,
		Assists:        item.Assists,
		Steals:         item.Steals,
		Blocks:         item.Blocks,
		Turnovers:      item.Turnovers,
		FGMade:         item.FGMade,
		FGAttempted:    item.FGAttempted,
		ThreeMade:      item.ThreeMade,
		ThreeAttempted: item.ThreeAttempted,
		FTMade:         item.FTMade,
		FTAttempted:    item.FTAttempted,
		PlusMinus:      item.PlusMinus,
		PIR:            item.PIR,
	}
	if parsed := parseFeedDate(item.Date); parsed != nil {
		line.Date = *parsed
	}
	line.Minutes = parseMinutes(item.Minutes)
	return line
}

var feedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
}

func parseFeedDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range feedDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			parsed = parsed.UTC()
			return &parsed
		}
	}
	return nil
}

// parseMinutes turns the feed's "MM:SS" playing time into decimal
// minutes. "DNP" and empty values stay nil.
func parseMinutes(raw *string) *float64 {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" || strings.EqualFold(value, "DNP") {
		return nil
	}

	mins, secs, found := strings.Cut(value, ":")
	if !found {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return &parsed
		}
		return nil
	}

	m, err := strconv.Atoi(strings.TrimSpace(mins))
	if err != nil {
		return nil
	}
	s, err := strconv.Atoi(strings.TrimSpace(secs))
	if err != nil {
		return nil
	}

	total := float64(m) + float64(s)/60
	return &total
}

func validateSeasonCode(seasonCode string) (string, error) {
	seasonCode = strings.TrimSpace(seasonCode)
	if seasonCode == "" {
		return "", fmt.Errorf("season code is required")
	}
	return seasonCode, nil
}
