package roster

import (
	"fmt"
	"time"
)

// Entry is one player row exactly as the league API delivered it.
// Optional fields are pointers: nil means the source did not supply the
// value, which is not the same as an explicit zero. Entries are read-only
// inputs to the pipeline and never mutated after ingestion.
type Entry struct {
	SourcePlayerID string
	DisplayName    string
	TeamID         string
	TeamName       string
	Position       string
	Jersey         *int
	HeightCM       *int
	BirthDate      *time.Time
	Nationality    string
	BirthCountry   string
	PhotoURL       *string
}

func (e Entry) Validate() error {
	if e.DisplayName == "" {
		return fmt.Errorf("roster entry display name is required")
	}
	if e.TeamID == "" {
		return fmt.Errorf("roster entry team id is required")
	}
	return nil
}

// BirthYear extracts the birth year when a birth date is present.
func (e Entry) BirthYear() *int {
	if e.BirthDate == nil {
		return nil
	}
	year := e.BirthDate.Year()
	return &year
}

// Team is a club in the tracked league.
type Team struct {
	ID      string
	Code    string
	Name    string
	Country string
	Arena   string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
