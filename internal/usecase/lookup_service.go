package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/platform/logging"
	"github.com/courtsidehq/courtside/internal/platform/names"
)

const defaultLookupWorkers = 4

// HometownSource is one secondary biographical source (an encyclopedia
// or stats-site scraper). Lookup returns ErrNotFound-wrapped errors for
// players the source simply does not list; transport failures surface
// as other errors and are recorded as failed attempts.
type HometownSource interface {
	Name() string
	Lookup(ctx context.Context, hint identity.Hint) (enrichment.Fields, string, error)
}

// LookupService walks the roster, decides which players need a
// biographical lookup, and fans the per-player source chain out across
// a worker pool. Sources for one player run sequentially in priority
// order and stop as soon as one yields the required data; distinct
// players run concurrently.
type LookupService struct {
	sources []HometownSource
	cache   enrichment.Repository
	workers int
	logger  *logging.Logger
	now     func() time.Time
}

func NewLookupService(sources []HometownSource, cache enrichment.Repository, workers int, logger *logging.Logger) *LookupService {
	if workers <= 0 {
		workers = defaultLookupWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LookupService{
		sources: sources,
		cache:   cache,
		workers: workers,
		logger:  logger,
		now:     time.Now,
	}
}

// EnrichRoster looks up biographical data for every American player on
// the roster and returns all attempts, cached and fresh. The returned
// slice is non-nil even when no player qualified, so callers can tell
// "ran and found nothing" apart from "never ran".
func (s *LookupService) EnrichRoster(ctx context.Context, entries []roster.Entry) ([]enrichment.Result, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LookupService.EnrichRoster")
	defer span.End()

	if entries == nil {
		return nil, fmt.Errorf("%w: roster collection", ErrSourceMissing)
	}

	targets := lookupTargets(entries)
	results := make([][]enrichment.Result, len(targets))

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create lookup pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, target := range targets {
		i, target := i, target
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = s.enrichOne(ctx, target)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	flat := make([]enrichment.Result, 0, len(targets))
	for _, rs := range results {
		flat = append(flat, rs...)
	}
	return flat, nil
}

// lookupTargets picks one representative entry per normalized key,
// restricted to American players. Blank names are skipped here; the
// resolver still surfaces them for review.
func lookupTargets(entries []roster.Entry) []roster.Entry {
	seen := make(map[string]struct{}, len(entries))
	var targets []roster.Entry
	for _, entry := range entries {
		if !americanEntry(entry) {
			continue
		}
		key := names.Key(entry.DisplayName)
		if key == names.EmptyKey {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		targets = append(targets, entry)
	}
	return targets
}

func americanEntry(entry roster.Entry) bool {
	return isAmerican(entry.Nationality, entry.BirthCountry)
}

// enrichOne runs the source chain for one player. Cached attempts per
// source are honored first: a past attempt, successful or not, is never
// repeated. The chain stops early once the accumulated fields carry the
// required data.
func (s *LookupService) enrichOne(ctx context.Context, entry roster.Entry) []enrichment.Result {
	key := names.Key(entry.DisplayName)
	hint := identity.Hint{
		Name:     entry.DisplayName,
		SourceID: entry.SourcePlayerID,
		TeamID:   entry.TeamID,
	}

	cached := s.cachedResults(ctx, key)
	attempted := make(map[string]struct{}, len(cached))
	out := make([]enrichment.Result, 0, len(s.sources))
	for _, res := range cached {
		attempted[res.Source] = struct{}{}
		out = append(out, res)
	}

	for _, source := range s.sources {
		if satisfied(out) {
			break
		}
		if _, done := attempted[source.Name()]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}

		result := s.lookupOne(ctx, source, hint)
		out = append(out, result)

		if s.cache != nil {
			if err := s.cache.Save(ctx, key, result); err != nil {
				s.logger.WarnContext(ctx, "caching lookup result failed",
					"key", key,
					"source", source.Name(),
					"error", err,
				)
			}
		}
	}

	return out
}

func (s *LookupService) lookupOne(ctx context.Context, source HometownSource, hint identity.Hint) enrichment.Result {
	fields, sourceURL, err := source.Lookup(ctx, hint)
	result := enrichment.Result{
		IdentityHint: hint,
		Source:       source.Name(),
		SourceURL:    sourceURL,
		FetchedAt:    s.now().UTC(),
	}
	if err != nil {
		s.logger.InfoContext(ctx, "hometown lookup missed",
			"source", source.Name(),
			"player", hint.Name,
			"error", err,
		)
		return result
	}
	result.Success = true
	result.Fields = fields
	return result
}

func (s *LookupService) cachedResults(ctx context.Context, key string) []enrichment.Result {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.ListByKey(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "reading lookup cache failed",
			"key", key,
			"error", err,
		)
		return nil
	}
	return cached
}

// satisfied reports whether the attempts so far already carry the
// required biographical data.
func satisfied(results []enrichment.Result) bool {
	var fields enrichment.Fields
	for _, res := range results {
		if !res.Usable() {
			continue
		}
		for _, name := range enrichment.AllFieldNames {
			if fields.Get(name) == nil {
				fields.Set(name, res.Fields.Get(name))
			}
		}
	}
	return HasRequiredData(enrichment.Merged{Fields: fields})
}
