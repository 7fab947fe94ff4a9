package charclass

import (
	"sort"
)

// Set returns a Matcher that matches any of the given runes.
//
// This is usually the best choice if the class is small and mostly made of
// non-consecutive runes.
//
func Set(given ...rune) Matcher {
	set := make(map[rune]struct{}, len(given))
	for _, r := range given {
		set[r] = struct{}{}
	}
	return &mSet{Set: set}
}

type mSet struct {
	Set map[rune]struct{}
}

var _ Matcher = (*mSet)(nil)

func (m *mSet) Match(r rune) bool {
	_, found := m.Set[r]
	return found
}

func (m *mSet) Optimize() Matcher {
	switch len(m.Set) {
	case 0:
		return None()
	case 1:
		for r := range m.Set {
			return Exactly(r)
		}
	}
	return m
}

func (m *mSet) String() string {
	return rangesString(coalesceRanges(m.asRanges()), false)
}

func (m *mSet) asRanges() []Range {
	sorted := make([]rune, 0, len(m.Set))
	for r := range m.Set {
		sorted = append(sorted, r)
	}
	sort.Sort(runeSlice(sorted))
	out := make([]Range, len(sorted))
	for i, r := range sorted {
		out[i] = Range{r, r}
	}
	return out
}
