package pegvm

import (
	"sort"
)

// Label names a code address. Public labels mark rule entry points; private
// labels (names starting with '.') mark jump targets inside a rule.
type Label struct {
	Offset int
	Public bool
	Name   string
}

// Labels is an implementation of sort.Interface for *Label slices.
type Labels []*Label

var _ sort.Interface = (Labels)(nil)

func (x Labels) Len() int {
	return len(x)
}

func (x Labels) Less(i, j int) bool {
	a, b := x[i], x[j]
	if a.Offset != b.Offset {
		return a.Offset < b.Offset
	}
	if a.Public != b.Public {
		return a.Public
	}
	return a.Name < b.Name
}

func (x Labels) Swap(i, j int) {
	x[i], x[j] = x[j], x[i]
}
