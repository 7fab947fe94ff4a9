package charclass

import (
	"unicode"
)

// Unicode returns a Matcher for a Unicode category or script table, such as
// unicode.Letter. The name is only used by String.
func Unicode(name string, table *unicode.RangeTable) Matcher {
	return &mTable{Name: name, Table: table}
}

type mTable struct {
	Name  string
	Table *unicode.RangeTable
}

var _ Matcher = (*mTable)(nil)

func (m *mTable) Match(r rune) bool {
	return unicode.Is(m.Table, r)
}

func (m *mTable) Optimize() Matcher {
	return m
}

func (m *mTable) String() string {
	return `\p{` + m.Name + `}`
}

// lookupTable finds a category or script by name, e.g. "L", "Lu", "Greek".
func lookupTable(name string) (*unicode.RangeTable, bool) {
	if t, ok := unicode.Categories[name]; ok {
		return t, true
	}
	if t, ok := unicode.Scripts[name]; ok {
		return t, true
	}
	return nil, false
}
