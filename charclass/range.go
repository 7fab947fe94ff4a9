package charclass

import (
	"sort"
)

// Range represents a range of consecutive runes.
//
// If Lo < Hi, then this Range represents the runes Lo, Lo+1, ..., Hi-1, Hi.
//
// If Lo == Hi, then this Range represents the single rune Lo.
//
// If Lo > Hi, then this Range represents the null set.
//
type Range struct {
	Lo rune
	Hi rune
}

// Ranges returns a Matcher that matches any rune that falls in one of the
// given Range entries.
//
// This is usually the best choice if most of the runes in the class are
// consecutive, and the number of such ranges is small.
//
func Ranges(rs ...Range) Matcher {
	return makeRange(rs)
}

type mRange struct {
	Ranges []Range
}

var _ Matcher = (*mRange)(nil)

func (m *mRange) Match(r rune) bool {
	i := sort.Search(len(m.Ranges), func(i int) bool {
		return m.Ranges[i].Hi >= r
	})
	if i >= len(m.Ranges) {
		return false
	}
	x := m.Ranges[i]
	return x.Lo <= r && r <= x.Hi
}

func (m *mRange) Optimize() Matcher {
	switch {
	case len(m.Ranges) == 0:
		return None()
	case len(m.Ranges) == 1 && m.Ranges[0].Lo == m.Ranges[0].Hi:
		return Exactly(m.Ranges[0].Lo)
	}
	return m
}

func (m *mRange) String() string {
	return rangesString(m.Ranges, false)
}

func (m *mRange) asRanges() []Range {
	return m.Ranges
}

func makeRange(rs []Range) *mRange {
	return &mRange{Ranges: coalesceRanges(rs)}
}

func coalesceRanges(a []Range) []Range {
	// (*mRange).Match binary searches on Hi, so the result must have
	// Lo <= Hi for every entry, no overlaps, and be sorted by Lo.
	// Adjacent entries are merged as well.

	b := make([]Range, 0, len(a))
	for _, r := range a {
		if r.Hi >= r.Lo {
			b = append(b, r)
		}
	}
	sort.Sort(rangeSlice(b))

	if len(b) < 2 {
		return b
	}

	// Entries are sorted by Lo ascending, which leaves four cases:
	//
	// 1. Disjoint:      [a..b] [c..d], b+1 < c    → keep both
	// 2. Adjacent:      [a..b][c..d],  b+1 == c   → [a..d]
	// 3. Overlapping:   [a..[c..b]..d]            → [a..d]
	// 4. Contained:     [a..[c..d]..b]            → [a..b]
	//
	c := make([]Range, 0, len(b))
	var lastHi rune
	var have bool
	for _, r := range b {
		switch {
		case have && lastHi >= r.Hi:
			// Case 4
		case have && lastHi+1 >= r.Lo:
			// Cases 2 & 3
			c[len(c)-1].Hi = r.Hi
			lastHi = r.Hi
		default:
			// Case 1
			c = append(c, r)
			lastHi = r.Hi
			have = true
		}
	}
	return c
}

// complementRanges returns the ranges of runes, within [0, MaxRune], that are
// not in rs. The input must already be coalesced.
func complementRanges(rs []Range) []Range {
	out := make([]Range, 0, len(rs)+1)
	next := rune(0)
	for _, r := range rs {
		if r.Lo > next {
			out = append(out, Range{next, r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= maxRune {
		out = append(out, Range{next, maxRune})
	}
	return out
}
