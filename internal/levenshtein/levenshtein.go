// Package levenshtein suggests near matches for misspelled names.
package levenshtein

import (
	"iter"
	"slices"

	"github.com/agnivade/levenshtein"
)

// ClosestStrings returns the candidates at the smallest edit distance from a,
// provided that distance is at most maxDistance. The result is sorted.
func ClosestStrings(maxDistance int, a string, candidates iter.Seq[string]) []string {
	closest := []string{}
	best := maxDistance + 1
	for c := range candidates {
		d := levenshtein.ComputeDistance(a, c)
		switch {
		case d < best:
			closest = []string{c}
			best = d
		case d == best:
			closest = append(closest, c)
		}
	}
	slices.Sort(closest)
	return closest
}
