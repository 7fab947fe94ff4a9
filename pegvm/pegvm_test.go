package pegvm

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lithammer/dedent"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/chronos-tachyon/go-pegtree/token"
)

var reNL = regexp.MustCompile(`(?m)^`)

func diff(l, r string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(l, r, false)
	pretty := dmp.DiffPrettyText(diffs)
	return reNL.ReplaceAllLiteralString(pretty, "\t")
}

func rule(name string) *Matcher {
	return &Matcher{Kind: RuleMatcher, Name: name}
}

func lit(a *Assembler, s string) {
	a.EmitLeaf(OpLiteral, a.DeclareLiteral(s), &Matcher{Kind: LeafMatcher, Name: strconv.Quote(s)})
}

func leafOp(a *Assembler, code OpCode, arg int, name string) {
	a.EmitLeaf(code, arg, &Matcher{Kind: LeafMatcher, Name: name})
}

func mustEmitLabel(a *Assembler, l *AsmLabel) {
	if err := a.EmitLabel(l); err != nil {
		panic(err)
	}
}

func mustFinish(a *Assembler) *Program {
	p, err := a.Finish()
	if err != nil {
		panic(err)
	}
	return p
}

// entry emits "CALL main; END" and binds the main label.
func entry(a *Assembler, name string) *AsmLabel {
	main := a.GrabLabel(name)
	a.EmitJump(OpCall, main, rule(name))
	a.Emit(OpEnd)
	mustEmitLabel(a, main)
	return main
}

// main <- "a" / "b"
func choiceProgram() *Program {
	a := NewAssembler(CharMode)
	entry(a, "main")
	l0, l1 := a.NewLabel(), a.NewLabel()
	a.EmitJump(OpChoice, l0, nil)
	lit(a, "a")
	a.EmitJump(OpCommit, l1, nil)
	mustEmitLabel(a, l0)
	lit(a, "b")
	mustEmitLabel(a, l1)
	a.Emit(OpRet)
	return mustFinish(a)
}

// main <- "a"* !.
func repeatProgram() *Program {
	a := NewAssembler(CharMode)
	entry(a, "main")
	loop, done := a.NewLabel(), a.NewLabel()
	mustEmitLabel(a, loop)
	a.EmitJump(OpChoice, done, nil)
	lit(a, "a")
	a.EmitJump(OpCommitVerify, loop, nil)
	mustEmitLabel(a, done)
	leafOp(a, OpEndOfInput, 0, "EOI")
	a.Emit(OpRet)
	return mustFinish(a)
}

// main <- ""*
func emptyRepeatProgram() *Program {
	a := NewAssembler(CharMode)
	entry(a, "main")
	loop, done := a.NewLabel(), a.NewLabel()
	mustEmitLabel(a, loop)
	a.EmitJump(OpChoice, done, nil)
	lit(a, "")
	a.EmitJump(OpCommitVerify, loop, nil)
	mustEmitLabel(a, done)
	a.Emit(OpRet)
	return mustFinish(a)
}

// main <- main "a" / "a"
func leftRecursiveProgram() *Program {
	a := NewAssembler(CharMode)
	main := entry(a, "main")
	l0, l1 := a.NewLabel(), a.NewLabel()
	a.EmitJump(OpChoice, l0, nil)
	a.EmitJump(OpCall, main, rule("main"))
	lit(a, "a")
	a.EmitJump(OpCommit, l1, nil)
	mustEmitLabel(a, l0)
	lit(a, "a")
	mustEmitLabel(a, l1)
	a.Emit(OpRet)
	return mustFinish(a)
}

// main <- &"a" "a" !"b"
func lookaheadProgram() *Program {
	a := NewAssembler(CharMode)
	entry(a, "main")
	l0, l1, l2 := a.NewLabel(), a.NewLabel(), a.NewLabel()
	a.EmitJump(OpPredicateChoice, l0, nil)
	lit(a, "a")
	a.EmitJump(OpBackCommit, l1, nil)
	mustEmitLabel(a, l0)
	a.Emit(OpBacktrack)
	mustEmitLabel(a, l1)
	lit(a, "a")
	a.EmitJump(OpPredicateChoice, l2, nil)
	lit(a, "b")
	a.Emit(OpFailTwice)
	mustEmitLabel(a, l2)
	a.Emit(OpRet)
	return mustFinish(a)
}

// main <- T "x" / T "y"
// T    <- "a"
func memoProgram(memoize bool) *Program {
	a := NewAssembler(CharMode)
	entry(a, "main")
	tm := &Matcher{Kind: TokenMatcher, Name: "T", Memoize: memoize}
	tl := a.GrabLabel("T")
	l0, l1 := a.NewLabel(), a.NewLabel()
	a.EmitJump(OpChoice, l0, nil)
	a.EmitJump(OpCall, tl, tm)
	lit(a, "x")
	a.EmitJump(OpCommit, l1, nil)
	mustEmitLabel(a, l0)
	a.EmitJump(OpCall, tl, tm)
	lit(a, "y")
	mustEmitLabel(a, l1)
	a.Emit(OpRet)
	mustEmitLabel(a, tl)
	lit(a, "a")
	a.Emit(OpRet)
	return mustFinish(a)
}

func TestProgram_Disassemble(t *testing.T) {
	type testrow struct {
		Program  *Program
		Expected string
	}

	data := []testrow{
		{
			Program: choiceProgram(),
			Expected: `
			%literal 0 "a"
			%literal 1 "b"

				CALL main <.+2>
				END
			main:
				CHOICE .L0 <.+3>
				LIT 0 "a"
				COMMIT .L1 <.+2>
			.L0:
				LIT 1 "b"
			.L1:
				RET
			`,
		},
		{
			Program: repeatProgram(),
			Expected: `
			%literal 0 "a"

				CALL main <.+2>
				END
			main:
				CHOICE .L1 <.+3>
				LIT 0 "a"
				COMMITV main <.-2>
			.L1:
				EOI
				RET
			`,
		},
		{
			Program: memoProgram(true),
			Expected: `
			%literal 0 "x"
			%literal 1 "y"
			%literal 2 "a"

				CALL main <.+2>
				END
			main:
				CHOICE .L0 <.+4>
				CALL T <.+6> [token T]
				LIT 0 "x"
				COMMIT .L1 <.+3>
			.L0:
				CALL T <.+3> [token T]
				LIT 1 "y"
			.L1:
				RET
			T:
				LIT 2 "a"
				RET
			`,
		},
	}

	for i, row := range data {
		var buf bytes.Buffer
		_, err := row.Program.Disassemble(&buf)
		if err != nil {
			t.Errorf("%s/%03d: unexpected error: %v", t.Name(), i, err)
			continue
		}
		actual := buf.String()
		expected := dedent.Dedent(row.Expected)[1:]
		if expected != actual {
			t.Errorf("%s/%03d: wrong output:\n%s", t.Name(), i, diff(expected, actual))
		}
	}
}

func TestMachine_Run(t *testing.T) {
	type testrow struct {
		Program  *Program
		Input    string
		Success  bool
		Tree     string
		Furthest int
	}

	choice := choiceProgram()
	repeat := repeatProgram()
	lookahead := lookaheadProgram()

	data := []testrow{
		{choice, "a", true, `(main 0:1 ("a" 0:1))`, -1},
		{choice, "b", true, `(main 0:1 ("b" 0:1))`, 0},
		{choice, "ab", true, `(main 0:1 ("a" 0:1))`, -1},
		{choice, "c", false, "", 0},
		{choice, "", false, "", 0},
		{repeat, "", true, `(main 0:0 (EOI 0:0))`, 0},
		{repeat, "aaa", true, `(main 0:3 ("a" 0:1) ("a" 1:2) ("a" 2:3) (EOI 3:3))`, 3},
		{repeat, "aab", false, "", 2},
		{lookahead, "a", true, `(main 0:1 ("a" 0:1))`, -1},
		{lookahead, "ab", false, "", -1},
		{lookahead, "b", false, "", 0},
		{memoProgram(true), "ay", true, `(main 0:2 (T 0:1 ("a" 0:1)) ("y" 1:2))`, 1},
	}

	for i, row := range data {
		m := row.Program.ExecString(row.Input)
		if err := m.Run(); err != nil {
			t.Errorf("%s/%03d: %q: unexpected error: %v", t.Name(), i, row.Input, err)
			continue
		}
		success := m.R == SuccessState
		if success != row.Success {
			t.Errorf("%s/%03d: %q: expected success=%v, got %v", t.Name(), i, row.Input, row.Success, success)
			continue
		}
		if success {
			if actual := m.Root().String(); actual != row.Tree {
				t.Errorf("%s/%03d: %q: expected tree %s, got %s", t.Name(), i, row.Input, row.Tree, actual)
			}
		} else if m.Root() != nil {
			t.Errorf("%s/%03d: %q: failed run has a root", t.Name(), i, row.Input)
		}
		if actual := m.FurthestFailure(); actual != row.Furthest {
			t.Errorf("%s/%03d: %q: expected furthest failure %d, got %d", t.Name(), i, row.Input, row.Furthest, actual)
		}
	}
}

func TestMachine_Memoization(t *testing.T) {
	for i, row := range []struct {
		Memoize bool
		Steps   int
	}{
		{true, 10},
		{false, 12},
	} {
		m := memoProgram(row.Memoize).ExecString("ay")
		if err := m.Run(); err != nil {
			t.Fatalf("%s/%03d: unexpected error: %v", t.Name(), i, err)
		}
		if m.R != SuccessState {
			t.Errorf("%s/%03d: expected success, got %v", t.Name(), i, m.R)
		}
		if m.Steps != row.Steps {
			t.Errorf("%s/%03d: expected %d steps, got %d", t.Name(), i, row.Steps, m.Steps)
		}
	}
}

func TestMachine_GrammarErrors(t *testing.T) {
	type testrow struct {
		Program *Program
		Input   string
		Err     error
		Rule    string
	}

	data := []testrow{
		{emptyRepeatProgram(), "abc", ErrEmptyRepetition, "main"},
		{leftRecursiveProgram(), "aaa", ErrLeftRecursion, "main"},
	}

	for i, row := range data {
		for attempt := 0; attempt < 2; attempt++ {
			m := row.Program.ExecString(row.Input)
			err := m.Run()
			if !errors.Is(err, row.Err) {
				t.Errorf("%s/%03d: expected %v, got %v", t.Name(), i, row.Err, err)
				continue
			}
			var ge *GrammarError
			if !errors.As(err, &ge) || ge.Rule != row.Rule {
				t.Errorf("%s/%03d: expected a GrammarError for rule %q, got %#v", t.Name(), i, row.Rule, err)
			}
			if m.R != ErrorState {
				t.Errorf("%s/%03d: expected error state, got %v", t.Name(), i, m.R)
			}
			if err := m.Step(); err != ErrExecutionHalted {
				t.Errorf("%s/%03d: expected ErrExecutionHalted, got %v", t.Name(), i, err)
			}
		}
	}
}

func TestMachine_Tokens(t *testing.T) {
	num := token.Named("NUMBER")
	a := NewAssembler(TokenMode)
	entry(a, "main")
	leafOp(a, OpTokenType, a.DeclareTokenType(num), "NUMBER")
	lit(a, "+")
	leafOp(a, OpAnyToken, 0, "ANYTOK")
	leafOp(a, OpTillNewLine, 0, "TILLNL")
	leafOp(a, OpAnyToken, 0, "ANYTOK")
	leafOp(a, OpTokenType, a.DeclareTokenType(token.EOF), "EOF")
	leafOp(a, OpEndOfInput, 0, "EOI")
	a.Emit(OpRet)
	p := mustFinish(a)

	tokens := []*token.Token{
		{Type: num, Value: "1", Line: 1},
		{Type: token.Literal, Value: "+", Line: 1},
		{Type: token.Identifier, Value: "x", Line: 1},
		{Type: token.Identifier, Value: "y", Line: 1},
		{Type: token.Identifier, Value: "z", Line: 2},
		{Type: token.EOF, Line: 2},
	}

	m := p.ExecTokens(tokens)
	if err := m.Run(); err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}
	expected := `(main 0:6 (NUMBER 0:1) ("+" 1:2) (ANYTOK 2:3) (TILLNL 3:4) (ANYTOK 4:5) (EOF 5:6) (EOI 6:6))`
	if m.R != SuccessState {
		t.Fatalf("%s: expected success, got %v", t.Name(), m.R)
	}
	if actual := m.Root().String(); actual != expected {
		t.Errorf("%s: expected %s, got %s", t.Name(), expected, actual)
	}

	m = p.ExecTokens(tokens[:1])
	if err := m.Run(); err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}
	if m.R != FailureState || m.FurthestFailure() != 1 {
		t.Errorf("%s: expected failure at 1, got %v at %d", t.Name(), m.R, m.FurthestFailure())
	}
}

func TestMachine_RuntimeError(t *testing.T) {
	p := &Program{
		Mode: CharMode,
		Ops:  []Op{{Code: OpJump, Offset: 5, Matcher: -1}},
	}
	m := p.ExecString("")
	err := m.Run()
	var re *RuntimeError
	if !errors.As(err, &re) || !errors.Is(err, ErrAddressRange) {
		t.Fatalf("%s: expected RuntimeError(ErrAddressRange), got %v", t.Name(), err)
	}
	if re.Address != 5 {
		t.Errorf("%s: expected address 5, got %d", t.Name(), re.Address)
	}
}

func TestAssembler_Errors(t *testing.T) {
	a := NewAssembler(CharMode)
	a.EmitJump(OpJump, a.GrabLabel("nowhere"), nil)
	_, err := a.Finish()
	var ae *AssembleError
	if !errors.As(err, &ae) || !errors.Is(err, ErrUnboundLabel) || ae.Label != "nowhere" {
		t.Errorf("%s: expected unbound label error, got %v", t.Name(), err)
	}

	l := a.NewLabel()
	if err := a.EmitLabel(l); err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}
	if err := a.EmitLabel(l); !errors.Is(err, ErrLabelRebound) {
		t.Errorf("%s: expected ErrLabelRebound, got %v", t.Name(), err)
	}

	if _, err := a.DeclarePattern("a)(b"); err == nil {
		t.Errorf("%s: expected pattern error", t.Name())
	}
	i, err := a.DeclarePattern("[0-9]+")
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}
	if j, _ := a.DeclarePattern("[0-9]+"); j != i {
		t.Errorf("%s: patterns are not interned: %d != %d", t.Name(), i, j)
	}
}

func TestPattern_MatchLen(t *testing.T) {
	type testrow struct {
		Pattern  string
		Input    string
		Expected int
	}

	data := []testrow{
		{"[0-9]+", "123abc", 3},
		{"[0-9]+", "abc123", -1},
		{"a|ab", "abc", 1},
		{"x*", "abc", 0},
	}

	for i, row := range data {
		p, err := CompilePattern(row.Pattern)
		if err != nil {
			t.Errorf("%s/%03d: unexpected error: %v", t.Name(), i, err)
			continue
		}
		if actual := p.MatchLen(row.Input); actual != row.Expected {
			t.Errorf("%s/%03d: %q on %q: expected %d, got %d", t.Name(), i, row.Pattern, row.Input, row.Expected, actual)
		}
	}
}

func TestMachine_Expected(t *testing.T) {
	type testrow struct {
		Program  *Program
		Input    string
		Expected []string
	}

	data := []testrow{
		{choiceProgram(), "c", []string{`"a"`, `"b"`}},
		{choiceProgram(), "a", nil},
		{repeatProgram(), "aab", []string{`"a"`, "EOI"}},
		{lookaheadProgram(), "b", nil},
		{memoProgram(true), "b", []string{"T"}},
		{memoProgram(true), "az", []string{`"x"`, `"y"`}},
	}

	for i, row := range data {
		m := row.Program.ExecString(row.Input)
		if err := m.Run(); err != nil {
			t.Errorf("%s/%03d: unexpected error: %v", t.Name(), i, err)
			continue
		}
		if diff := cmp.Diff(row.Expected, m.Expected(), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s/%03d: %q: wrong expected set (-want +got):\n%s", t.Name(), i, row.Input, diff)
		}
	}
}
