package postgres

import "time"

type playerRecordTableModel struct {
	IdentityID  string    `db:"identity_id"`
	PlayerKey   string    `db:"player_key"`
	Name        string    `db:"name"`
	TeamID      string    `db:"team_id"`
	TeamName    string    `db:"team_name"`
	Nationality string    `db:"nationality"`
	NeedsReview bool      `db:"needs_review"`
	RunID       string    `db:"run_id"`
	BuiltAt     time.Time `db:"built_at"`
	Record      []byte    `db:"record"`
}
