package main

import (
	"fmt"
	"slices"
	"strings"
)

// enumFlag is a pflag.Value restricted to a fixed set of strings.
type enumFlag struct {
	value string
	vs    []string
}

func newEnumFlag(defaultValue string, vs ...string) *enumFlag {
	return &enumFlag{value: defaultValue, vs: vs}
}

func (f *enumFlag) String() string {
	return f.value
}

func (f *enumFlag) Set(s string) error {
	if !slices.Contains(f.vs, s) {
		return fmt.Errorf("must be one of {%s}", strings.Join(f.vs, ","))
	}
	f.value = s
	return nil
}

func (f *enumFlag) Type() string {
	return "{" + strings.Join(f.vs, ",") + "}"
}
