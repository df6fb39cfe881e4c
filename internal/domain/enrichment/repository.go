package enrichment

import "context"

// Repository caches lookup attempts across runs so sources are not
// re-scraped for players already resolved. Recorded results are
// append-only; Save must not overwrite an existing (key, source) row.
type Repository interface {
	ListByKey(ctx context.Context, key string) ([]Result, error)
	Save(ctx context.Context, key string, result Result) error
}
