package pegvm

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Assembler turns sequences of instructions into Program objects.
//
// Jump targets are named by labels, which may be used before they are
// emitted; Finish patches every offset once all labels are known.
type Assembler struct {
	// Ops is the list of instructions assembled so far.
	Ops []Op

	// Mode is the kind of input the future Program runs on.
	Mode Mode

	// LabelsByName indexes every label ever grabbed.
	LabelsByName map[string]*AsmLabel

	literals   []string
	patterns   []*Pattern
	classes    []charclass.Matcher
	tokenTypes []token.Type
	matchers   []*Matcher

	literalIdx map[string]int
	patternIdx map[string]int
	classIdx   map[string]int
	typeIdx    map[token.Type]int
	matcherIdx map[*Matcher]int

	labels []*AsmLabel
	fixups []fixup
	anon   int
}

// AsmLabel is a code address that may not be known yet.
type AsmLabel struct {
	Name   string
	Public bool
	Bound  bool
	Offset int
}

type fixup struct {
	at    int
	label *AsmLabel
}

// NewAssembler returns an empty Assembler for the given input mode.
func NewAssembler(mode Mode) *Assembler {
	assert(mode != AnyMode, "assembler needs a concrete mode")
	return &Assembler{
		Mode:         mode,
		LabelsByName: make(map[string]*AsmLabel),
		literalIdx:   make(map[string]int),
		patternIdx:   make(map[string]int),
		classIdx:     make(map[string]int),
		typeIdx:      make(map[token.Type]int),
		matcherIdx:   make(map[*Matcher]int),
	}
}

// Len returns the address of the next instruction to be emitted.
func (a *Assembler) Len() int {
	return len(a.Ops)
}

// GrabLabel returns the label with the given name, creating it if needed.
// Names starting with '.' are private.
func (a *Assembler) GrabLabel(name string) *AsmLabel {
	if l := a.LabelsByName[name]; l != nil {
		return l
	}
	assert(len(name) != 0, "empty label name")
	l := &AsmLabel{Name: name, Public: name[0] != '.'}
	a.LabelsByName[name] = l
	a.labels = append(a.labels, l)
	return l
}

// NewLabel returns a fresh private label.
func (a *Assembler) NewLabel() *AsmLabel {
	name := fmt.Sprintf(".L%d", a.anon)
	a.anon++
	return a.GrabLabel(name)
}

// EmitLabel binds l to the address of the next instruction.
func (a *Assembler) EmitLabel(l *AsmLabel) error {
	if l.Bound {
		return &AssembleError{Err: ErrLabelRebound, Label: l.Name}
	}
	l.Bound = true
	l.Offset = len(a.Ops)
	return nil
}

// Emit appends an instruction without operands.
func (a *Assembler) Emit(code OpCode) {
	meta := code.Meta()
	assert(!meta.Illegal, "illegal opcode %d", code)
	assert(!meta.HasOffset && !meta.HasMatcher && meta.Table == TableNone, "%s needs operands", meta.Name)
	a.Ops = append(a.Ops, Op{Code: code, Matcher: -1})
}

// EmitJump appends a control instruction whose offset points at target. The
// matcher is required for OpCall and must be nil otherwise.
func (a *Assembler) EmitJump(code OpCode, target *AsmLabel, m *Matcher) {
	meta := code.Meta()
	assert(meta.HasOffset, "%s takes no offset", meta.Name)
	assert(meta.HasMatcher == (m != nil), "%s: matcher mismatch", meta.Name)
	op := Op{Code: code, Matcher: -1}
	if m != nil {
		op.Matcher = a.declareMatcher(m)
	}
	a.fixups = append(a.fixups, fixup{at: len(a.Ops), label: target})
	a.Ops = append(a.Ops, op)
}

// EmitLeaf appends a leaf instruction. arg indexes the table named by the
// opcode's metadata and is ignored for opcodes without a table.
func (a *Assembler) EmitLeaf(code OpCode, arg int, m *Matcher) {
	meta := code.Meta()
	assert(meta.Leaf, "%s is not a leaf", meta.Name)
	assert(meta.Mode == AnyMode || meta.Mode == a.Mode, "%s does not run on %s", meta.Name, a.Mode)
	assert(m != nil && m.Kind == LeafMatcher, "%s needs a leaf matcher", meta.Name)
	if meta.Table == TableNone {
		arg = 0
	}
	a.Ops = append(a.Ops, Op{Code: code, Arg: arg, Matcher: a.declareMatcher(m)})
}

// DeclareLiteral interns a literal and returns its table index.
func (a *Assembler) DeclareLiteral(s string) int {
	if i, found := a.literalIdx[s]; found {
		return i
	}
	i := len(a.literals)
	a.literals = append(a.literals, s)
	a.literalIdx[s] = i
	return i
}

// DeclarePattern compiles and interns a regular expression.
func (a *Assembler) DeclarePattern(src string) (int, error) {
	if i, found := a.patternIdx[src]; found {
		return i, nil
	}
	p, err := CompilePattern(src)
	if err != nil {
		return 0, err
	}
	i := len(a.patterns)
	a.patterns = append(a.patterns, p)
	a.patternIdx[src] = i
	return i, nil
}

// DeclareClass interns a character class.
func (a *Assembler) DeclareClass(m charclass.Matcher) int {
	m = m.Optimize()
	key := m.String()
	if i, found := a.classIdx[key]; found {
		return i
	}
	i := len(a.classes)
	a.classes = append(a.classes, m)
	a.classIdx[key] = i
	return i
}

// DeclareTokenType interns a token type.
func (a *Assembler) DeclareTokenType(t token.Type) int {
	if i, found := a.typeIdx[t]; found {
		return i
	}
	i := len(a.tokenTypes)
	a.tokenTypes = append(a.tokenTypes, t)
	a.typeIdx[t] = i
	return i
}

func (a *Assembler) declareMatcher(m *Matcher) int {
	if i, found := a.matcherIdx[m]; found {
		return i
	}
	i := len(a.matchers)
	a.matchers = append(a.matchers, m)
	a.matcherIdx[m] = i
	return i
}

// Finish patches all jump offsets and returns the Program. It fails if any
// label was used but never emitted.
func (a *Assembler) Finish() (*Program, error) {
	for _, fx := range a.fixups {
		if !fx.label.Bound {
			return nil, &AssembleError{Err: ErrUnboundLabel, Label: fx.label.Name}
		}
		a.Ops[fx.at].Offset = fx.label.Offset - fx.at
	}
	a.fixups = nil

	p := &Program{
		Ops:          a.Ops,
		Mode:         a.Mode,
		Literals:     a.literals,
		Patterns:     a.patterns,
		Classes:      a.classes,
		TokenTypes:   a.tokenTypes,
		Matchers:     a.matchers,
		LabelsByName: make(map[string]*Label, len(a.labels)),
	}
	for _, l := range a.labels {
		if !l.Bound {
			continue
		}
		label := &Label{Offset: l.Offset, Public: l.Public, Name: l.Name}
		p.Labels = append(p.Labels, label)
		p.LabelsByName[label.Name] = label
	}
	sort.Sort(Labels(p.Labels))
	return p, nil
}

// Pattern is a regular expression anchored at the current input index.
type Pattern struct {
	Source string
	re     *regexp.Regexp
}

// CompilePattern compiles src so that it only matches at the start of its
// input.
func CompilePattern(src string) (*Pattern, error) {
	if _, err := regexp.Compile(src); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(`^(?:` + src + `)`)
	if err != nil {
		return nil, err
	}
	return &Pattern{Source: src, re: re}, nil
}

// MatchLen returns the length of the match at the start of s, or -1.
func (p *Pattern) MatchLen(s string) int {
	loc := p.re.FindStringIndex(s)
	if loc == nil {
		return -1
	}
	return loc[1]
}
