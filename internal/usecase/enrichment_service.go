package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
)

// DefaultSourcePriority orders the hometown sources by trust. Earlier
// wins every per-field conflict.
var DefaultSourcePriority = []string{
	"basketball_reference",
	"wikipedia",
	"grokepedia",
}

// EnrichmentService merges per-source lookup results into one field set
// per identity. The merge is per-field, not per-record: a lower-priority
// source fills any field a higher-priority source left blank, and an
// already-merged value is never overwritten by a later source. Manual
// override fields are applied last and always win.
type EnrichmentService struct {
	priority  map[string]int
	order     []string
	overrides identity.OverrideTable
}

func NewEnrichmentService(sourcePriority []string, overrides identity.OverrideTable) (*EnrichmentService, error) {
	if len(sourcePriority) == 0 {
		sourcePriority = DefaultSourcePriority
	}

	priority := make(map[string]int, len(sourcePriority))
	for i, source := range sourcePriority {
		source = strings.TrimSpace(source)
		if source == "" {
			return nil, fmt.Errorf("%w: empty source name in priority list", ErrInvalidInput)
		}
		if _, dup := priority[source]; dup {
			return nil, fmt.Errorf("%w: duplicate source %q in priority list", ErrInvalidInput, source)
		}
		priority[source] = i
	}

	return &EnrichmentService{
		priority:  priority,
		order:     sourcePriority,
		overrides: overrides,
	}, nil
}

// SourceOrder returns the configured priority order, highest trust first.
func (s *EnrichmentService) SourceOrder() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Merge ranks one identity's lookup results and folds them into a
// single field set with per-field provenance. Unusable results (failed
// lookups, empty field sets) are skipped. Sources absent from the
// configured priority list rank after every configured one, in source
// name order so the outcome is deterministic.
func (s *EnrichmentService) Merge(ctx context.Context, ident identity.Identity, results []enrichment.Result) enrichment.Merged {
	_, span := startUsecaseSpan(ctx, "usecase.EnrichmentService.Merge")
	defer span.End()

	merged := enrichment.Merged{Provenance: map[string]string{}}

	ranked := make([]enrichment.Result, 0, len(results))
	for _, res := range results {
		if res.Usable() {
			ranked = append(ranked, res)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := s.rank(ranked[i].Source), s.rank(ranked[j].Source)
		if ri != rj {
			return ri < rj
		}
		return ranked[i].Source < ranked[j].Source
	})

	for _, res := range ranked {
		for _, field := range enrichment.AllFieldNames {
			if merged.Fields.Get(field) != nil {
				continue
			}
			if value := res.Fields.Get(field); value != nil {
				merged.Fields.Set(field, value)
				merged.Provenance[field] = res.Source
			}
		}
	}

	s.applyOverride(ident, &merged)

	if len(merged.Provenance) == 0 {
		merged.Provenance = nil
	}
	return merged
}

func (s *EnrichmentService) applyOverride(ident identity.Identity, merged *enrichment.Merged) {
	override, ok := s.overrides.Lookup(ident.Key)
	if !ok || len(override.Fields) == 0 {
		return
	}

	fields := make([]string, 0, len(override.Fields))
	for field := range override.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		value := override.Fields[field]
		merged.Fields.Set(field, &value)
		merged.Provenance[field] = enrichment.SourceOverride
	}
}

func (s *EnrichmentService) rank(source string) int {
	if r, ok := s.priority[source]; ok {
		return r
	}
	return len(s.priority)
}

// HasRequiredData reports whether a merged field set carries enough
// biographical material to enrich a record: a hometown state or a high
// school name.
func HasRequiredData(merged enrichment.Merged) bool {
	if v := merged.Fields.HometownState; v != nil && strings.TrimSpace(*v) != "" {
		return true
	}
	if v := merged.Fields.HighSchool; v != nil && strings.TrimSpace(*v) != "" {
		return true
	}
	return false
}

// ResultsFor filters a result collection down to the ones referring to
// one identity, using the index for matching.
func ResultsFor(ix *IdentityIndex, ident identity.Identity, results []enrichment.Result) []enrichment.Result {
	var out []enrichment.Result
	for _, res := range results {
		if matched, ok := ix.Match(res.IdentityHint); ok && matched.ID == ident.ID {
			out = append(out, res)
		}
	}
	return out
}
