package memory

import (
	"context"
	"sync"

	"github.com/courtsidehq/courtside/internal/domain/unified"
)

// UnifiedRepository holds the published record set in memory. Used by
// tests and by deployments that rebuild from a snapshot on boot.
type UnifiedRepository struct {
	mu      sync.RWMutex
	runID   string
	records []unified.PlayerRecord
	byID    map[string]int
}

func NewUnifiedRepository() *UnifiedRepository {
	return &UnifiedRepository{byID: make(map[string]int)}
}

func (r *UnifiedRepository) ReplaceAll(_ context.Context, runID string, records []unified.PlayerRecord) error {
	byID := make(map[string]int, len(records))
	copied := make([]unified.PlayerRecord, len(records))
	copy(copied, records)
	for i, rec := range copied {
		byID[rec.IdentityID] = i
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runID = runID
	r.records = copied
	r.byID = byID
	return nil
}

func (r *UnifiedRepository) List(_ context.Context) ([]unified.PlayerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]unified.PlayerRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *UnifiedRepository) GetByIdentityID(_ context.Context, identityID string) (unified.PlayerRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[identityID]
	if !ok {
		return unified.PlayerRecord{}, false, nil
	}
	return r.records[i], true, nil
}

func (r *UnifiedRepository) ListNeedingReview(_ context.Context) ([]unified.PlayerRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []unified.PlayerRecord
	for _, rec := range r.records {
		if rec.NeedsReview {
			out = append(out, rec)
		}
	}
	return out, nil
}

// RunID reports which run published the current record set.
func (r *UnifiedRepository) RunID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.runID
}
