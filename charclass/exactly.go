package charclass

// Exactly returns a Matcher that matches one specific rune.
func Exactly(r rune) Matcher {
	return &mExact{Rune: r}
}

type mExact struct{ Rune rune }

var _ Matcher = (*mExact)(nil)

func (m *mExact) Match(r rune) bool {
	return r == m.Rune
}

func (m *mExact) Optimize() Matcher {
	return m
}

func (m *mExact) String() string {
	return rangesString(m.asRanges(), false)
}

func (m *mExact) asRanges() []Range {
	return []Range{{m.Rune, m.Rune}}
}
