package memory

import (
	"context"
	"sync"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
)

// EnrichmentRepository is the in-memory lookup cache. Attempts are
// append-only: one row per (key, source), first write wins.
type EnrichmentRepository struct {
	mu    sync.RWMutex
	byKey map[string][]enrichment.Result
}

func NewEnrichmentRepository() *EnrichmentRepository {
	return &EnrichmentRepository{byKey: make(map[string][]enrichment.Result)}
}

func (r *EnrichmentRepository) ListByKey(_ context.Context, key string) ([]enrichment.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byKey[key]
	out := make([]enrichment.Result, 0, len(items))
	out = append(out, items...)
	return out, nil
}

func (r *EnrichmentRepository) Save(_ context.Context, key string, result enrichment.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byKey[key] {
		if existing.Source == result.Source {
			return nil
		}
	}
	r.byKey[key] = append(r.byKey[key], result)
	return nil
}
