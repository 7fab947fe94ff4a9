package pegvm

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Program is a grammar that has been compiled to instructions. It is never
// modified after Assembler.Finish returns it.
type Program struct {
	// Ops is the code to execute. Execution starts at address 0.
	Ops []Op

	// Mode is the kind of input the program runs on: CharMode or TokenMode.
	Mode Mode

	// Literals is referenced by LIT.
	Literals []string

	// Patterns is referenced by REGEXP.
	Patterns []*Pattern

	// Classes is referenced by CLASS.
	Classes []charclass.Matcher

	// TokenTypes is referenced by TTYPE.
	TokenTypes []token.Type

	// Matchers is referenced by CALL and by all leaf instructions.
	Matchers []*Matcher

	// Labels is an auxiliary list of program labels, sorted by offset.
	Labels []*Label

	// LabelsByName is an index from Label.Name to Label.
	LabelsByName map[string]*Label
}

// FindLabel returns the best available label for the given code address. If no
// labels are defined for that code address, then a synthetic local label is
// returned.
func (p *Program) FindLabel(addr int) *Label {
	i := sort.Search(len(p.Labels), func(i int) bool {
		return p.Labels[i].Offset >= addr
	})
	if i < len(p.Labels) && p.Labels[i].Offset == addr {
		return p.Labels[i]
	}
	return &Label{
		Offset: addr,
		Public: false,
		Name:   fmt.Sprintf(".ANON@%x", addr),
	}
}

// Entry returns the address of the public label with the given name.
func (p *Program) Entry(name string) (int, bool) {
	label := p.LabelsByName[name]
	if label == nil || !label.Public {
		return 0, false
	}
	return label.Offset, true
}

// Disassemble writes a listing of the program's tables and instructions.
func (p *Program) Disassemble(w io.Writer) (int, error) {
	var buf bytes.Buffer
	var total int

	flush := func() error {
		n, err := w.Write(buf.Bytes())
		total += n
		buf.Reset()
		return err
	}

	for i, literal := range p.Literals {
		fmt.Fprintf(&buf, "%%literal %d %q\n", i, literal)
	}
	for i, pattern := range p.Patterns {
		fmt.Fprintf(&buf, "%%pattern %d %q\n", i, pattern.Source)
	}
	for i, class := range p.Classes {
		fmt.Fprintf(&buf, "%%class %d %s\n", i, class.String())
	}
	for i, typ := range p.TokenTypes {
		fmt.Fprintf(&buf, "%%type %d %s\n", i, typ.Name())
	}
	buf.WriteByte('\n')
	if err := flush(); err != nil {
		return total, err
	}

	// First pass: identify code offsets that need labels
	labelNeeded := make(map[int]struct{})
	for _, label := range p.Labels {
		if label.Public {
			labelNeeded[label.Offset] = struct{}{}
		}
	}
	for addr, op := range p.Ops {
		if op.Code.Meta().HasOffset {
			labelNeeded[addr+op.Offset] = struct{}{}
		}
	}

	// Second pass: generate actual disassembly listing
	for addr := range p.Ops {
		if _, yes := labelNeeded[addr]; yes {
			label := p.FindLabel(addr)
			buf.WriteString(label.Name)
			buf.WriteByte(':')
			buf.WriteByte('\n')
		}
		buf.WriteByte('\t')
		p.writeOp(&buf, addr)
		buf.WriteByte('\n')
		if err := flush(); err != nil {
			return total, err
		}
	}
	return total, nil
}

func (p *Program) writeOp(buf *bytes.Buffer, addr int) {
	op := p.Ops[addr]
	meta := op.Code.Meta()
	buf.WriteString(meta.Name)

	if meta.HasOffset {
		label := p.FindLabel(addr + op.Offset)
		fmt.Fprintf(buf, " %s <.%+d>", label.Name, op.Offset)
	}

	switch meta.Table {
	case TableLiteral:
		fmt.Fprintf(buf, " %d", op.Arg)
		if op.Arg < len(p.Literals) {
			fmt.Fprintf(buf, " %q", p.Literals[op.Arg])
		} else {
			buf.WriteString(" <bad-literal>")
		}

	case TablePattern:
		fmt.Fprintf(buf, " %d", op.Arg)
		if op.Arg >= len(p.Patterns) {
			buf.WriteString(" <bad-pattern>")
		}

	case TableClass:
		fmt.Fprintf(buf, " %d", op.Arg)
		if op.Arg < len(p.Classes) {
			buf.WriteByte(' ')
			buf.WriteString(p.Classes[op.Arg].String())
		} else {
			buf.WriteString(" <bad-class>")
		}

	case TableTokenType:
		fmt.Fprintf(buf, " %d", op.Arg)
		if op.Arg < len(p.TokenTypes) {
			buf.WriteByte(' ')
			buf.WriteString(p.TokenTypes[op.Arg].Name())
		} else {
			buf.WriteString(" <bad-type>")
		}
	}

	if op.Code == OpCall {
		switch {
		case op.Matcher < 0 || op.Matcher >= len(p.Matchers):
			buf.WriteString(" <bad-matcher>")
		case p.Matchers[op.Matcher].Kind != RuleMatcher:
			fmt.Fprintf(buf, " [%s]", p.Matchers[op.Matcher])
		}
	}
}

// String returns a one-line summary of the program.
func (p *Program) String() string {
	return fmt.Sprintf("Program{%d ops, %d rules, mode %s}", len(p.Ops), p.countPublic(), p.Mode)
}

func (p *Program) countPublic() int {
	n := 0
	for _, label := range p.Labels {
		if label.Public {
			n++
		}
	}
	return n
}

// ExecString prepares a Machine that runs the program over text. The
// program must be in CharMode.
func (p *Program) ExecString(text string) *Machine {
	assert(p.Mode == CharMode, "ExecString on a %s program", p.Mode)
	m := p.newMachine(len(text))
	m.text = text
	return m
}

// ExecTokens prepares a Machine that runs the program over tokens. The
// program must be in TokenMode.
func (p *Program) ExecTokens(tokens []*token.Token) *Machine {
	assert(p.Mode == TokenMode, "ExecTokens on a %s program", p.Mode)
	m := p.newMachine(len(tokens))
	m.tokens = tokens
	return m
}

func (p *Program) newMachine(length int) *Machine {
	calls := make([]int, len(p.Ops))
	for i := range calls {
		calls[i] = -1
	}
	bottom := &frame{index: -1, address: -1, sentinel: true}
	return &Machine{
		P:        p,
		length:   length,
		stack:    bottom,
		bottom:   bottom,
		calls:    calls,
		memos:    make([]*ParseNode, length+1),
		furthest: -1,
	}
}
