package pegvm

import (
	"bytes"
	"fmt"
)

// Op is a single instruction.
type Op struct {
	// Code is this instruction's opcode.
	Code OpCode

	// Offset is the jump distance for control instructions, relative to
	// the address of this instruction.
	Offset int

	// Arg is an index into the Program table named by Code.Meta().Table.
	Arg int

	// Matcher is an index into Program.Matchers, or -1.
	Matcher int
}

// String provides a programmer-friendly debugging string for the Op.
func (op Op) String() string {
	var buf bytes.Buffer
	meta := op.Code.Meta()
	buf.WriteString(meta.Name)
	buf.WriteByte('<')
	first := true
	f := func(format string, v int) {
		if !first {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, format, v)
		first = false
	}
	if meta.HasOffset {
		f("%+d", op.Offset)
	}
	if meta.Table != TableNone {
		f("#%d", op.Arg)
	}
	if meta.HasMatcher && op.Matcher >= 0 {
		f("m%d", op.Matcher)
	}
	buf.WriteByte('>')
	return buf.String()
}
