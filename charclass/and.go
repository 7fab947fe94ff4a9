package charclass

import (
	"strings"
)

// And returns a Matcher that matches iff all of the given Matchers match.
func And(ms ...Matcher) Matcher {
	l := make([]Matcher, len(ms))
	copy(l, ms)
	return &mIntersection{List: l}
}

type mIntersection struct {
	List []Matcher
}

var _ Matcher = (*mIntersection)(nil)

func (m *mIntersection) Match(r rune) bool {
	for _, sub := range m.List {
		if !sub.Match(r) {
			return false
		}
	}
	return true
}

func (m *mIntersection) Optimize() Matcher {
	switch len(m.List) {
	case 0:
		return All()
	case 1:
		return m.List[0].Optimize()
	}
	list := make([]Matcher, 0, len(m.List))
	for _, sub := range m.List {
		sub = sub.Optimize()
		switch sub.(type) {
		case *mNone:
			return None()
		case *mAll:
			continue
		}
		list = append(list, sub)
	}
	switch len(list) {
	case 0:
		return All()
	case 1:
		return list[0]
	}
	return &mIntersection{List: list}
}

func (m *mIntersection) String() string {
	parts := make([]string, len(m.List))
	for i, sub := range m.List {
		parts[i] = sub.String()
	}
	return "(" + strings.Join(parts, "&") + ")"
}
