package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	qb "github.com/courtsidehq/courtside/internal/platform/querybuilder"
)

// EnrichmentRepository is the durable lookup cache. One row per
// (player_key, source); inserts on an existing pair are dropped, so a
// recorded attempt can never be rewritten.
type EnrichmentRepository struct {
	db *sqlx.DB
}

var enrichmentSelectColumns = []string{
	"player_key",
	"source",
	"success",
	"source_url",
	"fetched_at",
	"hint",
	"fields",
}

func NewEnrichmentRepository(db *sqlx.DB) *EnrichmentRepository {
	return &EnrichmentRepository{db: db}
}

func (r *EnrichmentRepository) ListByKey(ctx context.Context, key string) ([]enrichment.Result, error) {
	query, args, err := qb.Select(enrichmentSelectColumns...).From("enrichment_results").
		Where(qb.Eq("player_key", key)).
		OrderBy("fetched_at").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select enrichment results query: %w", err)
	}

	var rows []enrichmentResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select enrichment results for %s: %w", key, err)
	}

	out := make([]enrichment.Result, 0, len(rows))
	for _, row := range rows {
		result, err := row.toResult()
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

func (r *EnrichmentRepository) Save(ctx context.Context, key string, result enrichment.Result) error {
	hint, err := sonic.Marshal(result.IdentityHint)
	if err != nil {
		return fmt.Errorf("encode enrichment hint for %s: %w", key, err)
	}
	fields, err := sonic.Marshal(result.Fields)
	if err != nil {
		return fmt.Errorf("encode enrichment fields for %s: %w", key, err)
	}

	insertModel := enrichmentResultTableModel{
		PlayerKey: key,
		Source:    result.Source,
		Success:   result.Success,
		SourceURL: result.SourceURL,
		FetchedAt: result.FetchedAt,
		Hint:      hint,
		Fields:    fields,
	}

	query, args, err := qb.InsertModel("enrichment_results", insertModel,
		"ON CONFLICT (player_key, source) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert enrichment result query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert enrichment result key=%s source=%s: %w", key, result.Source, err)
	}
	return nil
}
