package charclass

// Not returns a Matcher that inverts the given Matcher.
func Not(m Matcher) Matcher {
	return &mNegation{Inner: m}
}

type mNegation struct {
	Inner Matcher
}

var _ Matcher = (*mNegation)(nil)

func (m *mNegation) Match(r rune) bool {
	return !m.Inner.Match(r)
}

func (m *mNegation) Optimize() Matcher {
	inner := m.Inner.Optimize()
	switch sub := inner.(type) {
	case *mAll:
		return None()
	case *mNone:
		return All()
	case *mNegation:
		return sub.Inner
	}
	if rs, ok := rangesOf(inner); ok {
		return &mRange{Ranges: complementRanges(coalesceRanges(rs))}
	}
	return &mNegation{Inner: inner}
}

func (m *mNegation) String() string {
	if rs, ok := rangesOf(m.Inner); ok {
		return rangesString(coalesceRanges(rs), true)
	}
	return "!" + m.Inner.String()
}
