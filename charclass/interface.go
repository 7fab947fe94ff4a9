// Package charclass implements predicates over runes, used as the leaf
// matchers of character-level grammars and lexer channels.
package charclass

// Matcher is a predicate that returns true for certain runes.
//
// Implementations of Matcher must *not* change their state on a call to
// Match; a single Matcher is shared by every parse of a grammar.
//
type Matcher interface {
	// Match returns true iff rune r is in the class.
	Match(r rune) bool

	// Optimize returns a Matcher that matches the same set of runes, but
	// possibly in a more efficient way. If no better implementation can be
	// found, returns this matcher.
	Optimize() Matcher

	// String returns a string representation of the class, in the same
	// bracket syntax accepted by Parse where possible.
	String() string
}

type asRanger interface {
	asRanges() []Range
}

// Runes appends each rune matched by m in [lo, hi] to out, then returns the
// updated slice.
func Runes(m Matcher, lo, hi rune, out []rune) []rune {
	for r := lo; r <= hi; r++ {
		if m.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// rangesOf returns the explicit ranges of m, if m is made only of explicit
// runes and ranges.
func rangesOf(m Matcher) ([]Range, bool) {
	if mx, ok := m.(asRanger); ok {
		return mx.asRanges(), true
	}
	return nil, false
}
