package charclass

// None returns a Matcher that never matches.
func None() Matcher { return singletonNone }

type mNone struct{}

var _ Matcher = (*mNone)(nil)
var singletonNone = &mNone{}

func (m *mNone) Match(r rune) bool { return false }
func (m *mNone) Optimize() Matcher { return singletonNone }
func (m *mNone) String() string    { return "!." }
func (m *mNone) asRanges() []Range { return nil }
