package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/platform/logging"
)

type fakeSource struct {
	name   string
	fields map[string]enrichment.Fields
	err    error

	mu    sync.Mutex
	calls []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(_ context.Context, hint identity.Hint) (enrichment.Fields, string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, hint.Name)
	f.mu.Unlock()

	if f.err != nil {
		return enrichment.Fields{}, "", f.err
	}
	fields, ok := f.fields[hint.Name]
	if !ok {
		return enrichment.Fields{}, "", ErrNotFound
	}
	return fields, "https://" + f.name + ".test/" + hint.Name, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeEnrichmentRepo struct {
	mu      sync.Mutex
	byKey   map[string][]enrichment.Result
	listErr error
}

func newFakeEnrichmentRepo() *fakeEnrichmentRepo {
	return &fakeEnrichmentRepo{byKey: map[string][]enrichment.Result{}}
}

func (r *fakeEnrichmentRepo) ListByKey(_ context.Context, key string) ([]enrichment.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.byKey[key], nil
}

func (r *fakeEnrichmentRepo) Save(_ context.Context, key string, result enrichment.Result) error {
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

func americanGuard(name string) roster.Entry {
	return roster.Entry{DisplayName: name, TeamID: "MAD", Position: "Guard", Nationality: "USA"}
}

func TestLookupService_EnrichRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("nil roster is a missing source", func(t *testing.T) {
		svc := NewLookupService(nil, newFakeEnrichmentRepo(), 2, logging.NewNop())
		_, err := svc.EnrichRoster(ctx, nil)
		if !errors.Is(err, ErrSourceMissing) {
			t.Fatalf("unexpected error: got=%v want=%v", err, ErrSourceMissing)
		}
	})

	t.Run("only american players are looked up", func(t *testing.T) {
		source := &fakeSource{name: "wikipedia", fields: map[string]enrichment.Fields{}}
		svc := NewLookupService([]HometownSource{source}, newFakeEnrichmentRepo(), 2, logging.NewNop())

		results, err := svc.EnrichRoster(ctx, []roster.Entry{
			americanGuard("Chris Jones"),
			{DisplayName: "Nikos Pappas", TeamID: "PAO", Nationality: "Greece"},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := source.callCount(); got != 1 {
			t.Fatalf("unexpected lookup count: got=%d want=1", got)
		}
		// The miss is still recorded as a failed attempt.
		if len(results) != 1 || results[0].Success {
			t.Fatalf("unexpected results: %+v", results)
		}
	})

	t.Run("chain stops once required data is found", func(t *testing.T) {
		first := &fakeSource{
			name: "basketball_reference",
			fields: map[string]enrichment.Fields{
				"Chris Jones": {HometownState: strPtr("Ohio")},
			},
		}
		second := &fakeSource{name: "wikipedia", fields: map[string]enrichment.Fields{}}
		svc := NewLookupService([]HometownSource{first, second}, newFakeEnrichmentRepo(), 2, logging.NewNop())

		results, err := svc.EnrichRoster(ctx, []roster.Entry{americanGuard("Chris Jones")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := second.callCount(); got != 0 {
			t.Fatalf("second source consulted %d times, want 0", got)
		}
		if len(results) != 1 || !results[0].Success {
			t.Fatalf("unexpected results: %+v", results)
		}
	})

	t.Run("chain continues past misses and failures", func(t *testing.T) {
		first := &fakeSource{name: "basketball_reference", fields: map[string]enrichment.Fields{}}
		second := &fakeSource{name: "wikipedia", err: errors.New("http 503")}
		third := &fakeSource{
			name: "grokepedia",
			fields: map[string]enrichment.Fields{
				"Chris Jones": {HighSchool: strPtr("Oak Hill Academy")},
			},
		}
		svc := NewLookupService([]HometownSource{first, second, third}, newFakeEnrichmentRepo(), 2, logging.NewNop())

		results, err := svc.EnrichRoster(ctx, []roster.Entry{americanGuard("Chris Jones")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("unexpected attempt count: got=%d want=3", len(results))
		}
		if results[0].Success || results[1].Success || !results[2].Success {
			t.Fatalf("unexpected success flags: %+v", results)
		}
	})

	t.Run("cached attempts are not repeated", func(t *testing.T) {
		source := &fakeSource{
			name: "wikipedia",
			fields: map[string]enrichment.Fields{
				"Chris Jones": {HometownState: strPtr("Ohio")},
			},
		}
		repo := newFakeEnrichmentRepo()
		svc := NewLookupService([]HometownSource{source}, repo, 2, logging.NewNop())

		if _, err := svc.EnrichRoster(ctx, []roster.Entry{americanGuard("Chris Jones")}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		results, err := svc.EnrichRoster(ctx, []roster.Entry{americanGuard("Chris Jones")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := source.callCount(); got != 1 {
			t.Fatalf("unexpected lookup count: got=%d want=1", got)
		}
		if len(results) != 1 || !results[0].Success {
			t.Fatalf("unexpected results: %+v", results)
		}
	})

	t.Run("duplicate name variants are looked up once", func(t *testing.T) {
		source := &fakeSource{name: "wikipedia", fields: map[string]enrichment.Fields{}}
		svc := NewLookupService([]HometownSource{source}, newFakeEnrichmentRepo(), 2, logging.NewNop())

		if _, err := svc.EnrichRoster(ctx, []roster.Entry{
			americanGuard("Smith, John"),
			americanGuard("John Smith"),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := source.callCount(); got != 1 {
			t.Fatalf("unexpected lookup count: got=%d want=1", got)
		}
	})

	t.Run("broken cache degrades to fresh lookups", func(t *testing.T) {
		source := &fakeSource{
			name: "wikipedia",
			fields: map[string]enrichment.Fields{
				"Chris Jones": {HometownState: strPtr("Ohio")},
			},
		}
		repo := newFakeEnrichmentRepo()
		repo.listErr = errors.New("disk gone")
		svc := NewLookupService([]HometownSource{source}, repo, 2, logging.NewNop())

		results, err := svc.EnrichRoster(ctx, []roster.Entry{americanGuard("Chris Jones")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || !results[0].Success {
			t.Fatalf("unexpected results: %+v", results)
		}
	})

	t.Run("empty roster returns empty non-nil results", func(t *testing.T) {
		svc := NewLookupService(nil, newFakeEnrichmentRepo(), 2, logging.NewNop())
		results, err := svc.EnrichRoster(ctx, []roster.Entry{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if results == nil {
			t.Fatal("results slice is nil")
		}
		if len(results) != 0 {
			t.Fatalf("unexpected results: %+v", results)
		}
	})
}
