package identity

import "fmt"

// Resolution says how confident the resolver was when it assigned
// records to an identity.
type Resolution string

const (
	// ResolutionOverride means an operator forced the assignment.
	ResolutionOverride Resolution = "override"
	// ResolutionCertain means a source-native id matched exactly.
	ResolutionCertain Resolution = "certain"
	// ResolutionProbable means the normalized key matched plus at least
	// one corroborating attribute (team, or birth year within tolerance).
	ResolutionProbable Resolution = "probable"
	// ResolutionReview means the key matched with no corroboration, or
	// automatic signals contradicted each other. Records in this state
	// are held out of enrichment merging until an operator decides.
	ResolutionReview Resolution = "review"
)

// Identity is the resolved real-world player that one or more raw
// records refer to. Two records carrying the same identity ID are
// asserted to be the same person; the resolver never collapses two
// confirmed-distinct people behind one ID.
type Identity struct {
	// ID is stable within a run: the league source player id when the
	// roster carried one, otherwise the normalized key, suffixed when
	// distinct people share a key.
	ID          string
	Key         string
	SourceID    string
	DisplayName string
	TeamID      string
	BirthYear   *int
	Resolution  Resolution
	NeedsReview bool
}

// Hint carries whatever identifying material a secondary record has.
// Enrichment results usually have only a name; game lines usually have
// the source player id as well.
type Hint struct {
	Name     string
	SourceID string
	TeamID   string
}

// Override is one operator-entered row of the manual override table.
// Overrides win over every automatic resolution and merge decision.
type Override struct {
	Name       string            `json:"name" validate:"required"`
	IdentityID string            `json:"identity_id,omitempty"`
	Fields     map[string]string `json:"fields,omitempty" validate:"dive,keys,oneof=hometown_city hometown_state high_school high_school_city high_school_state college,endkeys,required"`
}

// OverrideTable is the versioned manual override configuration. It is
// loaded once per run and passed explicitly into the resolver and the
// merger; it is never module-level state.
type OverrideTable struct {
	Version string              `json:"version"`
	Entries map[string]Override `json:"entries"`
}

// Lookup finds the override for a normalized key, if any.
func (t OverrideTable) Lookup(key string) (Override, bool) {
	if len(t.Entries) == 0 {
		return Override{}, false
	}
	o, ok := t.Entries[key]
	return o, ok
}

func (t OverrideTable) Validate() error {
	for key, entry := range t.Entries {
		if key == "" {
			return fmt.Errorf("override table contains an empty key")
		}
		if entry.Name == "" {
			return fmt.Errorf("override for key %q is missing a name", key)
		}
	}
	return nil
}

// TiebreakPolicy decides which corroborating signal wins when team
// match and birth-year match point at different candidates.
type TiebreakPolicy string

const (
	TiebreakTeam      TiebreakPolicy = "team"
	TiebreakBirthYear TiebreakPolicy = "birth_year"
)

func ParseTiebreakPolicy(v string) (TiebreakPolicy, error) {
	switch TiebreakPolicy(v) {
	case TiebreakTeam, "":
		return TiebreakTeam, nil
	case TiebreakBirthYear:
		return TiebreakBirthYear, nil
	default:
		return "", fmt.Errorf("invalid identity tiebreak policy %q: valid values are %s, %s", v, TiebreakTeam, TiebreakBirthYear)
	}
}
