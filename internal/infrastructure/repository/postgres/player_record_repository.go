package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/courtsidehq/courtside/internal/domain/unified"
	qb "github.com/courtsidehq/courtside/internal/platform/querybuilder"
)

// PlayerRecordRepository stores the published record set. The full
// per-player record travels as a JSONB document; the promoted columns
// exist for indexing and the review queue.
type PlayerRecordRepository struct {
	db *sqlx.DB
}

var playerRecordSelectColumns = []string{
	"identity_id",
	"player_key",
	"name",
	"team_id",
	"team_name",
	"nationality",
	"needs_review",
	"run_id",
	"built_at",
	"record",
}

func NewPlayerRecordRepository(db *sqlx.DB) *PlayerRecordRepository {
	return &PlayerRecordRepository{db: db}
}

// ReplaceAll swaps the record set inside one transaction, so readers
// see either the old run or the new one, never a mix.
func (r *PlayerRecordRepository) ReplaceAll(ctx context.Context, runID string, records []unified.PlayerRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace player records: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM player_records"); err != nil {
		return fmt.Errorf("clear player records: %w", err)
	}

	for _, rec := range records {
		payload, err := sonic.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode player record %s: %w", rec.IdentityID, err)
		}

		insertModel := playerRecordTableModel{
			IdentityID:  rec.IdentityID,
			PlayerKey:   rec.Key,
			Name:        rec.Name,
			TeamID:      rec.TeamID,
			TeamName:    rec.TeamName,
			Nationality: rec.Nationality,
			NeedsReview: rec.NeedsReview,
			RunID:       runID,
			BuiltAt:     rec.BuiltAt,
			Record:      payload,
		}

		query, args, err := qb.InsertModel("player_records", insertModel, "")
		if err != nil {
			return fmt.Errorf("build insert player record query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player record %s: %w", rec.IdentityID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace player records tx: %w", err)
	}
	return nil
}

func (r *PlayerRecordRepository) List(ctx context.Context) ([]unified.PlayerRecord, error) {
	query, args, err := qb.Select(playerRecordSelectColumns...).From("player_records").
		OrderBy("name", "identity_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player records query: %w", err)
	}
	return r.selectRecords(ctx, query, args)
}

func (r *PlayerRecordRepository) GetByIdentityID(ctx context.Context, identityID string) (unified.PlayerRecord, bool, error) {
	query, args, err := qb.Select(playerRecordSelectColumns...).From("player_records").
		Where(qb.Eq("identity_id", identityID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return unified.PlayerRecord{}, false, fmt.Errorf("build select player record query: %w", err)
	}

	var row playerRecordTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return unified.PlayerRecord{}, false, nil
		}
		return unified.PlayerRecord{}, false, fmt.Errorf("select player record %s: %w", identityID, err)
	}

	rec, err := decodeRecord(row)
	if err != nil {
		return unified.PlayerRecord{}, false, err
	}
	return rec, true, nil
}

func (r *PlayerRecordRepository) ListNeedingReview(ctx context.Context) ([]unified.PlayerRecord, error) {
	query, args, err := qb.Select(playerRecordSelectColumns...).From("player_records").
		Where(qb.Eq("needs_review", true)).
		OrderBy("name", "identity_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select review queue query: %w", err)
	}
	return r.selectRecords(ctx, query, args)
}

func (r *PlayerRecordRepository) selectRecords(ctx context.Context, query string, args []any) ([]unified.PlayerRecord, error) {
	var rows []playerRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player records: %w", err)
	}

	out := make([]unified.PlayerRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := decodeRecord(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeRecord(row playerRecordTableModel) (unified.PlayerRecord, error) {
	var rec unified.PlayerRecord
	if err := sonic.Unmarshal(row.Record, &rec); err != nil {
		return unified.PlayerRecord{}, fmt.Errorf("decode player record %s: %w", row.IdentityID, err)
	}
	return rec, nil
}
