package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// EmptyKey is the join key produced for empty or whitespace-only names.
// The tilde cannot appear in a real key (the key alphabet is [a-z0-9_]),
// so it can never collide with a normalized name.
const EmptyKey = "~empty~"

var (
	keyDisallowed  = regexp.MustCompile(`[^a-z0-9_\s]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)

	foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	titleCaser     = cases.Title(language.English)
)

// Key produces the normalized join key for a player display name.
//
// The key is stable across sources that disagree on accents, casing,
// spacing and name order: diacritics are folded to base Latin, the result
// is lowercased, punctuation is dropped, whitespace runs collapse to a
// single underscore, and "LAST, FIRST" input is reordered to first-last
// before normalizing. Suffixes (Jr., III) stay in the key; stripping them
// would merge a parent and child with otherwise identical names.
//
// Key is idempotent: Key(Key(x)) == Key(x) for all x.
func Key(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || name == EmptyKey {
		return EmptyKey
	}

	name = reorderLastFirst(name)

	folded, _, err := transform.String(foldDiacritics, name)
	if err != nil {
		folded = name
	}

	key := strings.ToLower(folded)
	key = keyDisallowed.ReplaceAllString(key, "")
	key = whitespaceRuns.ReplaceAllString(strings.TrimSpace(key), " ")
	key = strings.ReplaceAll(key, " ", "_")
	if key == "" {
		return EmptyKey
	}

	return key
}

// Display cleans a roster display name for output: "LAST, FIRST" order is
// flipped and shouty all-caps source names are title-cased. Names that
// already look mixed-case pass through untouched.
func Display(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	reordered := reorderLastFirst(name)
	if reordered == name && name == strings.ToUpper(name) {
		// All-caps without comma reordering still needs case repair.
		return titleCaser.String(strings.ToLower(name))
	}
	if reordered != name {
		return titleCaser.String(strings.ToLower(reordered))
	}

	return name
}

func reorderLastFirst(name string) string {
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return name
	}
	first = strings.TrimSpace(first)
	last = strings.TrimSpace(last)
	if first == "" || last == "" {
		return name
	}

	return first + " " + last
}
