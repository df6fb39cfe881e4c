package names

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Similarity scores two display names in [0,1] using Jaro-Winkler over
// the normalized keys, so accents and name order do not depress the score.
func Similarity(a, b string) float64 {
	keyA := Key(a)
	keyB := Key(b)
	if keyA == EmptyKey || keyB == EmptyKey {
		return 0
	}
	if keyA == keyB {
		return 1
	}

	return matchr.JaroWinkler(spaced(keyA), spaced(keyB), false)
}

func spaced(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
