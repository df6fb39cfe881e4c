package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/courtsidehq/courtside/internal/domain/enrichment"
	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/roster"
)

func strPtr(v string) *string { return &v }

func testIdentity() identity.Identity {
	return identity.Identity{
		ID:          "john_smith",
		Key:         "john_smith",
		DisplayName: "John Smith",
		TeamID:      "MAD",
		Resolution:  identity.ResolutionProbable,
	}
}

func TestNewEnrichmentService(t *testing.T) {
	t.Run("empty priority falls back to default order", func(t *testing.T) {
		svc, err := NewEnrichmentService(nil, identity.OverrideTable{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := svc.SourceOrder()
		if len(got) != 3 || got[0] != "basketball_reference" || got[1] != "wikipedia" || got[2] != "grokepedia" {
			t.Fatalf("unexpected source order: %v", got)
		}
	})

	t.Run("duplicate source is rejected", func(t *testing.T) {
		_, err := NewEnrichmentService([]string{"wikipedia", "wikipedia"}, identity.OverrideTable{})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidInput)
		}
	})

	t.Run("blank source is rejected", func(t *testing.T) {
		_, err := NewEnrichmentService([]string{"wikipedia", "  "}, identity.OverrideTable{})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidInput)
		}
	})
}

func TestEnrichmentService_Merge(t *testing.T) {
	ctx := context.Background()

	newService := func(t *testing.T, overrides identity.OverrideTable) *EnrichmentService {
		t.Helper()
		svc, err := NewEnrichmentService(nil, overrides)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return svc
	}

	t.Run("higher priority wins per field, lower fills gaps", func(t *testing.T) {
		svc := newService(t, identity.OverrideTable{})
		merged := svc.Merge(ctx, testIdentity(), []enrichment.Result{
			{
				Source:  "wikipedia",
				Success: true,
				Fields: enrichment.Fields{
					HometownCity:  strPtr("Chicago"),
					HometownState: strPtr("Illinois"),
					College:       strPtr("Duke"),
				},
			},
			{
				Source:  "basketball_reference",
				Success: true,
				Fields: enrichment.Fields{
					HometownCity: strPtr("Evanston"),
					HighSchool:   strPtr("Evanston Township"),
				},
			},
		})

		if got := *merged.Fields.HometownCity; got != "Evanston" {
			t.Fatalf("unexpected hometown city: got=%q want=%q", got, "Evanston")
		}
		if got := *merged.Fields.HometownState; got != "Illinois" {
			t.Fatalf("unexpected hometown state: got=%q want=%q", got, "Illinois")
		}
		if got := *merged.Fields.College; got != "Duke" {
			t.Fatalf("unexpected college: got=%q want=%q", got, "Duke")
		}
		if got := merged.SourceOf(enrichment.FieldHometownCity); got != "basketball_reference" {
			t.Fatalf("unexpected provenance: got=%q want=%q", got, "basketball_reference")
		}
		if got := merged.SourceOf(enrichment.FieldHometownState); got != "wikipedia" {
			t.Fatalf("unexpected provenance: got=%q want=%q", got, "wikipedia")
		}
	})

	t.Run("failed and empty results contribute nothing", func(t *testing.T) {
		svc := newService(t, identity.OverrideTable{})
		merged := svc.Merge(ctx, testIdentity(), []enrichment.Result{
			{
				Source:  "basketball_reference",
				Success: false,
				Fields:  enrichment.Fields{HometownCity: strPtr("Evanston")},
			},
			{Source: "wikipedia", Success: true},
			{
				Source:  "grokepedia",
				Success: true,
				Fields:  enrichment.Fields{HometownState: strPtr("Ohio")},
			},
		})

		if merged.Fields.HometownCity != nil {
			t.Fatalf("failed lookup leaked a field: %q", *merged.Fields.HometownCity)
		}
		if got := *merged.Fields.HometownState; got != "Ohio" {
			t.Fatalf("unexpected hometown state: got=%q want=%q", got, "Ohio")
		}
	})

	t.Run("no results merges to empty", func(t *testing.T) {
		svc := newService(t, identity.OverrideTable{})
		merged := svc.Merge(ctx, testIdentity(), nil)
		if !merged.Fields.Empty() {
			t.Fatal("expected an empty merge")
		}
		if merged.Provenance != nil {
			t.Fatalf("unexpected provenance: %v", merged.Provenance)
		}
	})

	t.Run("unknown source ranks after configured ones", func(t *testing.T) {
		svc := newService(t, identity.OverrideTable{})
		merged := svc.Merge(ctx, testIdentity(), []enrichment.Result{
			{
				Source:  "fan_wiki",
				Success: true,
				Fields:  enrichment.Fields{HometownState: strPtr("Texas")},
			},
			{
				Source:  "grokepedia",
				Success: true,
				Fields:  enrichment.Fields{HometownState: strPtr("Ohio")},
			},
		})

		if got := *merged.Fields.HometownState; got != "Ohio" {
			t.Fatalf("unexpected hometown state: got=%q want=%q", got, "Ohio")
		}
	})

	t.Run("override fields beat every source", func(t *testing.T) {
		overrides := NormalizeOverrideTable(identity.OverrideTable{
			Entries: map[string]identity.Override{
				"John Smith": {
					Name:   "John Smith",
					Fields: map[string]string{enrichment.FieldCollege: "Clemson"},
				},
			},
		})
		svc := newService(t, overrides)
		merged := svc.Merge(ctx, testIdentity(), []enrichment.Result{
			{
				Source:  "basketball_reference",
				Success: true,
				Fields:  enrichment.Fields{College: strPtr("Duke")},
			},
		})

		if got := *merged.Fields.College; got != "Clemson" {
			t.Fatalf("unexpected college: got=%q want=%q", got, "Clemson")
		}
		if got := merged.SourceOf(enrichment.FieldCollege); got != enrichment.SourceOverride {
			t.Fatalf("unexpected provenance: got=%q want=%q", got, enrichment.SourceOverride)
		}
	})
}

func TestHasRequiredData(t *testing.T) {
	tests := []struct {
		name   string
		merged enrichment.Merged
		want   bool
	}{
		{
			name:   "hometown state suffices",
			merged: enrichment.Merged{Fields: enrichment.Fields{HometownState: strPtr("Illinois")}},
			want:   true,
		},
		{
			name:   "high school suffices",
			merged: enrichment.Merged{Fields: enrichment.Fields{HighSchool: strPtr("Oak Hill Academy")}},
			want:   true,
		},
		{
			name:   "city alone does not",
			merged: enrichment.Merged{Fields: enrichment.Fields{HometownCity: strPtr("Chicago")}},
			want:   false,
		},
		{
			name:   "whitespace state does not",
			merged: enrichment.Merged{Fields: enrichment.Fields{HometownState: strPtr("  ")}},
			want:   false,
		},
		{
			name: "empty does not",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasRequiredData(tt.merged); got != tt.want {
				t.Fatalf("unexpected result: got=%v want=%v", got, tt.want)
			}
		})
	}
}

func TestResultsFor(t *testing.T) {
	svc := NewIdentityService(identity.OverrideTable{}, identity.TiebreakTeam)
	ix, err := svc.ResolveRoster(context.Background(), []roster.Entry{
		{SourcePlayerID: "P001", DisplayName: "John Smith", TeamID: "MAD"},
		{DisplayName: "José García", TeamID: "BAR"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := []enrichment.Result{
		{IdentityHint: identity.Hint{Name: "Smith, John"}, Source: "wikipedia", Success: true},
		{IdentityHint: identity.Hint{Name: "Jose Garcia"}, Source: "wikipedia", Success: true},
		{IdentityHint: identity.Hint{Name: "Someone Else"}, Source: "wikipedia", Success: true},
	}

	smith, ok := ix.Match(identity.Hint{SourceID: "P001"})
	if !ok {
		t.Fatal("expected a match")
	}
	got := ResultsFor(ix, smith, results)
	if len(got) != 1 {
		t.Fatalf("unexpected result count: got=%d want=1", len(got))
	}
	if got[0].IdentityHint.Name != "Smith, John" {
		t.Fatalf("unexpected result: %q", got[0].IdentityHint.Name)
	}
}
