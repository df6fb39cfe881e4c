package postgres

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
)

type enrichmentResultTableModel struct {
	PlayerKey string    `db:"player_key"`
	Source    string    `db:"source"`
	Success   bool      `db:"success"`
	SourceURL string    `db:"source_url"`
	FetchedAt time.Time `db:"fetched_at"`
	Hint      []byte    `db:"hint"`
	Fields    []byte    `db:"fields"`
}

func (m enrichmentResultTableModel) toResult() (enrichment.Result, error) {
	result := enrichment.Result{
		Source:    m.Source,
		Success:   m.Success,
		SourceURL: m.SourceURL,
		FetchedAt: m.FetchedAt,
	}
	if len(m.Hint) > 0 {
		if err := sonic.Unmarshal(m.Hint, &result.IdentityHint); err != nil {
			return enrichment.Result{}, fmt.Errorf("decode enrichment hint for %s: %w", m.PlayerKey, err)
		}
	}
	if len(m.Fields) > 0 {
		if err := sonic.Unmarshal(m.Fields, &result.Fields); err != nil {
			return enrichment.Result{}, fmt.Errorf("decode enrichment fields for %s: %w", m.PlayerKey, err)
		}
	}
	return result, nil
}
