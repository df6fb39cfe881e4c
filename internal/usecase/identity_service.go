package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/courtsidehq/courtside/internal/domain/identity"
	"github.com/courtsidehq/courtside/internal/domain/roster"
	"github.com/courtsidehq/courtside/internal/platform/names"
)

// birthYearTolerance absorbs off-by-one birth years between sources
// that disagree on timezone or list age instead of birth date.
const birthYearTolerance = 1

// IdentityService resolves raw records from independent sources onto
// stable player identities. Resolution order per record:
//
//  1. manual override table (always wins),
//  2. exact source-native id match (certain),
//  3. normalized-key match with a corroborating attribute (probable),
//  4. normalized-key match alone (flagged for review, never merged
//     speculatively).
//
// Two confirmed-distinct people sharing a key are kept as separate
// identities, never collapsed.
type IdentityService struct {
	overrides identity.OverrideTable
	tiebreak  identity.TiebreakPolicy
}

func NewIdentityService(overrides identity.OverrideTable, tiebreak identity.TiebreakPolicy) *IdentityService {
	if tiebreak == "" {
		tiebreak = identity.TiebreakTeam
	}
	return &IdentityService{
		overrides: overrides,
		tiebreak:  tiebreak,
	}
}

// IdentityIndex is the frozen outcome of roster resolution. Later
// pipeline stages are read-only consumers: they may look identities up
// but never add to or change the index.
type IdentityIndex struct {
	ordered    []string
	byID       map[string]*identity.Identity
	byKey      map[string][]*identity.Identity
	bySourceID map[string]*identity.Identity
	entriesFor map[string][]roster.Entry
}

func newIdentityIndex() *IdentityIndex {
	return &IdentityIndex{
		byID:       make(map[string]*identity.Identity),
		byKey:      make(map[string][]*identity.Identity),
		bySourceID: make(map[string]*identity.Identity),
		entriesFor: make(map[string][]roster.Entry),
	}
}

// Identities returns all resolved identities in first-seen order.
func (ix *IdentityIndex) Identities() []identity.Identity {
	out := make([]identity.Identity, 0, len(ix.ordered))
	for _, id := range ix.ordered {
		out = append(out, *ix.byID[id])
	}
	return out
}

// EntriesFor returns the roster entries assigned to one identity.
func (ix *IdentityIndex) EntriesFor(identityID string) []roster.Entry {
	return ix.entriesFor[identityID]
}

// Match finds the identity a secondary record (enrichment result, game
// line) refers to. A source id matches exactly; otherwise the
// normalized name key must select exactly one identity, with the team
// hint (when present) allowed to veto but not to disambiguate between
// review-flagged candidates. A key that matches nothing at all falls
// back to a near-miss name comparison gated on the team hint.
func (ix *IdentityIndex) Match(hint identity.Hint) (identity.Identity, bool) {
	if hint.SourceID != "" {
		if ident, ok := ix.bySourceID[hint.SourceID]; ok {
			return *ident, true
		}
	}

	key := names.Key(hint.Name)
	if key == names.EmptyKey {
		return identity.Identity{}, false
	}

	candidates := ix.byKey[key]
	if len(candidates) == 1 {
		ident := candidates[0]
		if hint.TeamID != "" && ident.TeamID != "" && hint.TeamID != ident.TeamID {
			return identity.Identity{}, false
		}
		return *ident, true
	}

	// Several people share this key: a team hint may single one out,
	// anything less stays unmatched.
	if len(candidates) > 1 && hint.TeamID != "" {
		var found *identity.Identity
		for _, cand := range candidates {
			if cand.TeamID == hint.TeamID {
				if found != nil {
					return identity.Identity{}, false
				}
				found = cand
			}
		}
		if found != nil {
			return *found, true
		}
	}

	if len(candidates) == 0 {
		return ix.nearMiss(hint)
	}

	return identity.Identity{}, false
}

// nearMissThreshold is the minimum name similarity for a fuzzy match.
// High enough that only spelling variants qualify, never different
// names that merely share a surname.
const nearMissThreshold = 0.93

// nearMiss recovers secondary records whose name key missed because a
// source spells the player differently ("Cris" for "Chris", a dropped
// accent the display form kept). The team hint must corroborate and
// exactly one identity may qualify; anything ambiguous stays unmatched.
func (ix *IdentityIndex) nearMiss(hint identity.Hint) (identity.Identity, bool) {
	if hint.TeamID == "" {
		return identity.Identity{}, false
	}

	var found *identity.Identity
	for _, id := range ix.ordered {
		cand := ix.byID[id]
		if cand.TeamID != hint.TeamID {
			continue
		}
		if names.Similarity(hint.Name, cand.DisplayName) < nearMissThreshold {
			continue
		}
		if found != nil {
			return identity.Identity{}, false
		}
		found = cand
	}

	if found == nil {
		return identity.Identity{}, false
	}
	return *found, true
}

// ResolveRoster builds the identity index for one run from the roster
// collection. The roster is treated as a read-only snapshot.
func (s *IdentityService) ResolveRoster(ctx context.Context, entries []roster.Entry) (*IdentityIndex, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IdentityService.ResolveRoster")
	defer span.End()
	_ = ctx

	if entries == nil {
		return nil, fmt.Errorf("%w: roster collection", ErrSourceMissing)
	}

	ix := newIdentityIndex()
	for _, entry := range entries {
		s.resolveEntry(ix, entry)
	}

	return ix, nil
}

func (s *IdentityService) resolveEntry(ix *IdentityIndex, entry roster.Entry) {
	key := names.Key(entry.DisplayName)

	if override, ok := s.overrides.Lookup(key); ok && override.IdentityID != "" {
		ident := ix.byID[override.IdentityID]
		if ident == nil {
			ident = s.register(ix, override.IdentityID, key, entry)
		}
		ident.Resolution = identity.ResolutionOverride
		ident.NeedsReview = false
		s.attach(ix, ident, entry)
		return
	}

	if entry.SourcePlayerID != "" {
		if ident, ok := ix.bySourceID[entry.SourcePlayerID]; ok {
			s.attach(ix, ident, entry)
			return
		}
	}

	if key == names.EmptyKey {
		// Unnamed rows are kept and surfaced, never silently dropped.
		ident := s.register(ix, s.newID(ix, entry, key), key, entry)
		ident.Resolution = identity.ResolutionReview
		ident.NeedsReview = true
		s.attach(ix, ident, entry)
		return
	}

	if ident, resolution, ok := s.findCandidate(ix.byKey[key], entry); ok {
		if ident.Resolution != identity.ResolutionCertain && ident.Resolution != identity.ResolutionOverride {
			ident.Resolution = resolution
		}
		s.attach(ix, ident, entry)
		return
	}

	// No candidate matched: either a fresh name, or confirmed-distinct
	// people behind one key, or a key-only match with no corroboration.
	ident := s.register(ix, s.newID(ix, entry, key), key, entry)
	siblings := ix.byKey[key]
	if len(siblings) > 1 {
		// Same key, different people (or undecidable): every identity
		// behind the key goes to review so nobody is merged by guess.
		for _, sibling := range siblings {
			sibling.Resolution = identity.ResolutionReview
			sibling.NeedsReview = true
		}
	}
	s.attach(ix, ident, entry)
}

// findCandidate picks the existing identity this entry corroborates.
// Contradictory birth years veto a candidate outright; when the team
// signal and the birth-year signal select different candidates, the
// configured tiebreak policy decides.
func (s *IdentityService) findCandidate(candidates []*identity.Identity, entry roster.Entry) (*identity.Identity, identity.Resolution, bool) {
	var teamMatch, yearMatch *identity.Identity

	entryYear := entry.BirthYear()
	for _, cand := range candidates {
		if contradictsBirthYear(cand.BirthYear, entryYear) {
			continue
		}
		if cand.TeamID != "" && entry.TeamID != "" && cand.TeamID == entry.TeamID {
			if teamMatch == nil {
				teamMatch = cand
			}
		}
		if corroboratesBirthYear(cand.BirthYear, entryYear) {
			if yearMatch == nil {
				yearMatch = cand
			}
		}
	}

	switch {
	case teamMatch != nil && yearMatch != nil && teamMatch != yearMatch:
		if s.tiebreak == identity.TiebreakBirthYear {
			return yearMatch, identity.ResolutionProbable, true
		}
		return teamMatch, identity.ResolutionProbable, true
	case teamMatch != nil:
		return teamMatch, identity.ResolutionProbable, true
	case yearMatch != nil:
		return yearMatch, identity.ResolutionProbable, true
	default:
		return nil, "", false
	}
}

func contradictsBirthYear(a, b *int) bool {
	if a == nil || b == nil {
		return false
	}
	return abs(*a-*b) > birthYearTolerance
}

func corroboratesBirthYear(a, b *int) bool {
	if a == nil || b == nil {
		return false
	}
	return abs(*a-*b) <= birthYearTolerance
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func (s *IdentityService) register(ix *IdentityIndex, id, key string, entry roster.Entry) *identity.Identity {
	resolution := identity.ResolutionProbable
	if entry.SourcePlayerID != "" {
		resolution = identity.ResolutionCertain
	}

	ident := &identity.Identity{
		ID:          id,
		Key:         key,
		SourceID:    entry.SourcePlayerID,
		DisplayName: names.Display(entry.DisplayName),
		TeamID:      entry.TeamID,
		BirthYear:   entry.BirthYear(),
		Resolution:  resolution,
	}

	ix.ordered = append(ix.ordered, ident.ID)
	ix.byID[ident.ID] = ident
	ix.byKey[key] = append(ix.byKey[key], ident)
	if ident.SourceID != "" {
		ix.bySourceID[ident.SourceID] = ident
	}

	return ident
}

func (s *IdentityService) attach(ix *IdentityIndex, ident *identity.Identity, entry roster.Entry) {
	ix.entriesFor[ident.ID] = append(ix.entriesFor[ident.ID], entry)

	// Fill identity attributes the first record left blank. Raw entries
	// themselves are never written to.
	if ident.SourceID == "" && entry.SourcePlayerID != "" {
		ident.SourceID = entry.SourcePlayerID
		ix.bySourceID[ident.SourceID] = ident
	}
	if ident.BirthYear == nil {
		ident.BirthYear = entry.BirthYear()
	}
	if ident.TeamID == "" {
		ident.TeamID = entry.TeamID
	}
	if ident.DisplayName == "" {
		ident.DisplayName = names.Display(entry.DisplayName)
	}
}

func (s *IdentityService) newID(ix *IdentityIndex, entry roster.Entry, key string) string {
	if entry.SourcePlayerID != "" {
		return entry.SourcePlayerID
	}

	candidate := key
	for n := 2; ; n++ {
		if _, taken := ix.byID[candidate]; !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s#%d", key, n)
	}
}

// Overrides exposes the table the service was configured with, so the
// merger applies the same version the resolver used.
func (s *IdentityService) Overrides() identity.OverrideTable {
	return s.overrides
}

// NormalizeOverrideTable re-keys an operator-entered table by
// normalized name, so "BOOKER, DEVIN" and "Devin Booker" address the
// same entry.
func NormalizeOverrideTable(table identity.OverrideTable) identity.OverrideTable {
	if len(table.Entries) == 0 {
		return table
	}

	entries := make(map[string]identity.Override, len(table.Entries))
	for rawKey, entry := range table.Entries {
		name := entry.Name
		if strings.TrimSpace(name) == "" {
			name = rawKey
		}
		entries[names.Key(name)] = entry
	}

	return identity.OverrideTable{Version: table.Version, Entries: entries}
}
