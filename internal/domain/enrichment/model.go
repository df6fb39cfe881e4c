package enrichment

import (
	"time"

	"github.com/courtsidehq/courtside/internal/domain/identity"
)

// Field names used in provenance maps and override tables.
const (
	FieldHometownCity    = "hometown_city"
	FieldHometownState   = "hometown_state"
	FieldHighSchool      = "high_school"
	FieldHighSchoolCity  = "high_school_city"
	FieldHighSchoolState = "high_school_state"
	FieldCollege         = "college"
	FieldPhotoURL        = "photo_url"
	FieldProfileURL      = "profile_url"
)

// Fields is the biographical data one lookup source can supply. Every
// field is optional: nil means the source did not have it, which merge
// logic must treat differently from an empty string.
type Fields struct {
	HometownCity    *string `json:"hometown_city,omitempty"`
	HometownState   *string `json:"hometown_state,omitempty"`
	HighSchool      *string `json:"high_school,omitempty"`
	HighSchoolCity  *string `json:"high_school_city,omitempty"`
	HighSchoolState *string `json:"high_school_state,omitempty"`
	College         *string `json:"college,omitempty"`
	PhotoURL        *string `json:"photo_url,omitempty"`
	ProfileURL      *string `json:"profile_url,omitempty"`
}

// Empty reports whether the source supplied no usable field at all. A
// lookup that "succeeded" but produced an empty field set counts as a
// failure when ranking sources.
func (f Fields) Empty() bool {
	return f.HometownCity == nil &&
		f.HometownState == nil &&
		f.HighSchool == nil &&
		f.HighSchoolCity == nil &&
		f.HighSchoolState == nil &&
		f.College == nil &&
		f.PhotoURL == nil &&
		f.ProfileURL == nil
}

// Get returns the value of a named field, nil when absent.
func (f Fields) Get(name string) *string {
	switch name {
	case FieldHometownCity:
		return f.HometownCity
	case FieldHometownState:
		return f.HometownState
	case FieldHighSchool:
		return f.HighSchool
	case FieldHighSchoolCity:
		return f.HighSchoolCity
	case FieldHighSchoolState:
		return f.HighSchoolState
	case FieldCollege:
		return f.College
	case FieldPhotoURL:
		return f.PhotoURL
	case FieldProfileURL:
		return f.ProfileURL
	default:
		return nil
	}
}

// Set assigns a named field. Unknown names are ignored.
func (f *Fields) Set(name string, value *string) {
	switch name {
	case FieldHometownCity:
		f.HometownCity = value
	case FieldHometownState:
		f.HometownState = value
	case FieldHighSchool:
		f.HighSchool = value
	case FieldHighSchoolCity:
		f.HighSchoolCity = value
	case FieldHighSchoolState:
		f.HighSchoolState = value
	case FieldCollege:
		f.College = value
	case FieldPhotoURL:
		f.PhotoURL = value
	case FieldProfileURL:
		f.ProfileURL = value
	}
}

// AllFieldNames lists every mergeable field in a fixed order so merge
// output is deterministic.
var AllFieldNames = []string{
	FieldHometownCity,
	FieldHometownState,
	FieldHighSchool,
	FieldHighSchoolCity,
	FieldHighSchoolState,
	FieldCollege,
	FieldPhotoURL,
	FieldProfileURL,
}

// Result is the outcome of one lookup attempt against one source for
// one player. Results are append-only: a recorded attempt is never
// overwritten, and several results per identity coexist (one per source
// attempted) to be ranked at merge time.
type Result struct {
	IdentityHint identity.Hint `json:"identity_hint"`
	Source       string        `json:"source"`
	Success      bool          `json:"success"`
	Fields       Fields        `json:"fields"`
	SourceURL    string        `json:"source_url,omitempty"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// Usable reports whether this result can contribute fields to a merge.
func (r Result) Usable() bool {
	return r.Success && !r.Fields.Empty()
}

// Merged is the per-identity outcome of the priority merge: the
// surviving field set plus, for auditability, which source supplied
// each surviving value. The provenance value for operator-forced fields
// is SourceOverride.
type Merged struct {
	Fields     Fields            `json:"fields"`
	Provenance map[string]string `json:"provenance,omitempty"`
}

// SourceOverride is the provenance marker for fields forced by the
// manual override table.
const SourceOverride = "manual_override"

// SourceOf returns which source supplied a merged field, "" if the
// field did not survive the merge.
func (m Merged) SourceOf(field string) string {
	if m.Provenance == nil {
		return ""
	}
	return m.Provenance[field]
}
