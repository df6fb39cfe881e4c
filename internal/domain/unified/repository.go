package unified

import "context"

// Repository describes unified-record persistence needs from use cases.
// A run's output replaces the previous run's wholesale.
type Repository interface {
	ReplaceAll(ctx context.Context, runID string, records []PlayerRecord) error
	List(ctx context.Context) ([]PlayerRecord, error)
	GetByIdentityID(ctx context.Context, identityID string) (PlayerRecord, bool, error)
	ListNeedingReview(ctx context.Context) ([]PlayerRecord, error)
}
