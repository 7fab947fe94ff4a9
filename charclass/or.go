package charclass

import (
	"strings"
)

// Or returns a Matcher that matches iff any of the given Matchers match.
func Or(ms ...Matcher) Matcher {
	l := make([]Matcher, len(ms))
	copy(l, ms)
	return &mUnion{List: l}
}

type mUnion struct {
	List []Matcher
}

var _ Matcher = (*mUnion)(nil)

func (m *mUnion) Match(r rune) bool {
	for _, sub := range m.List {
		if sub.Match(r) {
			return true
		}
	}
	return false
}

func (m *mUnion) Optimize() Matcher {
	switch len(m.List) {
	case 0:
		return None()
	case 1:
		return m.List[0].Optimize()
	}

	list := make([]Matcher, 0, len(m.List))
	var merged []Range
	for _, sub := range m.List {
		sub = sub.Optimize()
		switch sub.(type) {
		case *mAll:
			return All()
		case *mNone:
			continue
		}
		if rs, ok := rangesOf(sub); ok {
			merged = append(merged, rs...)
			continue
		}
		list = append(list, sub)
	}
	if len(merged) != 0 {
		list = append(list, makeRange(merged).Optimize())
	}
	if len(list) == 1 {
		return list[0]
	}
	return &mUnion{List: list}
}

func (m *mUnion) String() string {
	if rs, ok := m.asRangesChecked(); ok {
		return rangesString(coalesceRanges(rs), false)
	}
	parts := make([]string, len(m.List))
	for i, sub := range m.List {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, "|") + ")"
}

func (m *mUnion) asRangesChecked() ([]Range, bool) {
	var out []Range
	for _, sub := range m.List {
		rs, ok := rangesOf(sub)
		if !ok {
			return nil, false
		}
		out = append(out, rs...)
	}
	return out, true
}
