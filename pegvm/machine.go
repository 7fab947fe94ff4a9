package pegvm

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/chronos-tachyon/go-pegtree/token"
)

// RunState is the lifecycle state of a Machine.
type RunState uint8

const (
	RunningState RunState = iota
	SuccessState
	FailureState
	ErrorState
)

var runStateNames = [...]string{
	RunningState: "running",
	SuccessState: "success",
	FailureState: "failure",
	ErrorState:   "error",
}

func (s RunState) String() string {
	return runStateNames[s]
}

// Machine is the state of one parse in progress. A Machine is not safe for
// concurrent use, but any number of Machines may share a Program.
type Machine struct {
	// P is the program to run.
	P *Program

	// R is the current run state.
	R RunState

	// Steps counts executed instructions.
	Steps int

	// Backtracks counts executed BACKTRACK operations, explicit or not.
	Backtracks int

	text   string
	tokens []*token.Token
	length int

	index   int
	address int

	stack  *frame
	bottom *frame

	ignoreErrors bool
	calls        []int
	memos        []*ParseNode
	furthest     int
	expected     []string
	expectedAt   int
}

// Index returns the current input index.
func (m *Machine) Index() int {
	return m.index
}

// FurthestFailure returns the largest input index at which a failure was
// recorded, or -1 if no failure was recorded.
func (m *Machine) FurthestFailure() int {
	return m.furthest
}

// Expected returns the names of the leaf matchers that failed at the
// furthest failure index, in the order they were tried. A leaf that failed
// inside a token is reported under the token's name.
func (m *Machine) Expected() []string {
	if m.furthest < 0 || m.expectedAt != m.furthest {
		return nil
	}
	return m.expected
}

// Root returns the node produced by a successful run.
func (m *Machine) Root() *ParseNode {
	if m.R != SuccessState || len(m.bottom.children) == 0 {
		return nil
	}
	return m.bottom.children[0]
}

// Run steps the machine until it halts. The returned error is a
// *GrammarError if the grammar turned out to be faulty, or a *RuntimeError
// if the program is corrupt. Input that does not match is not an error: R
// is FailureState and FurthestFailure tells where the input went wrong.
func (m *Machine) Run() error {
	for m.R == RunningState {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	if m.R != RunningState {
		return ErrExecutionHalted
	}
	if m.address < 0 || m.address >= len(m.P.Ops) {
		return m.runtimeError(ErrAddressRange, nil)
	}

	op := &m.P.Ops[m.address]
	m.Steps++
	switch op.Code {
	case OpJump:
		m.address += op.Offset

	case OpCall:
		return m.call(op)

	case OpRet:
		m.ret()

	case OpChoice:
		m.pushBacktrack(m.address + op.Offset)
		m.address++

	case OpPredicateChoice:
		m.pushBacktrack(m.address + op.Offset)
		m.ignoreErrors = true
		m.address++

	case OpCommit:
		m.commit()
		m.address += op.Offset

	case OpCommitVerify:
		if m.index == m.stack.index {
			return m.grammarError(ErrEmptyRepetition, m.currentRule(), "")
		}
		m.commit()
		m.address += op.Offset

	case OpBacktrack:
		m.backtrack()

	case OpBackCommit:
		fr := m.pop()
		assert(!fr.isCall(), "BCOMMIT on call frame")
		m.index = fr.index
		m.ignoreErrors = fr.ignoreErrors
		m.address += op.Offset

	case OpFailTwice:
		fr := m.pop()
		assert(!fr.isCall(), "FAIL2X on call frame")
		m.index = fr.index
		m.backtrack()

	case OpIgnoreErrors:
		m.ignoreErrors = true
		m.address++

	case OpEnd:
		m.R = SuccessState

	case OpLiteral, OpPattern, OpClass, OpAnyChar, OpEndOfInput, OpNothing,
		OpTokenType, OpAnyToken, OpTillNewLine:
		if n, ok := m.matchLeaf(op); ok {
			m.leaf(op, n)
		} else {
			m.expect(op)
			m.backtrack()
		}

	default:
		return m.runtimeError(ErrUnknownOpcode, op)
	}
	return nil
}

func (m *Machine) call(op *Op) error {
	matcher := m.P.Matchers[op.Matcher]
	if matcher.Memoize {
		if memo := m.memos[m.index]; memo != nil && memo.Matcher == matcher {
			m.stack.children = append(m.stack.children, memo)
			m.index = memo.End
			m.address++
			return nil
		}
	}

	target := m.address + op.Offset
	if m.calls[target] == m.index {
		return m.grammarError(ErrLeftRecursion, matcher.Name, "")
	}
	m.stack = &frame{
		parent:        m.stack,
		index:         m.index,
		address:       m.address + 1,
		matcher:       matcher,
		ignoreErrors:  m.ignoreErrors,
		calledAddress: target,
		previousCall:  m.calls[target],
	}
	m.calls[target] = m.index
	m.address = target
	return nil
}

func (m *Machine) ret() {
	fr := m.popCall()
	node := &ParseNode{
		Matcher:  fr.matcher,
		Start:    fr.index,
		End:      m.index,
		Children: fr.children,
	}
	m.stack.children = append(m.stack.children, node)
	if fr.matcher.Memoize {
		m.memos[fr.index] = node
	}
	m.ignoreErrors = fr.ignoreErrors
	m.address = fr.address
}

func (m *Machine) pushBacktrack(fallback int) {
	m.stack = &frame{
		parent:       m.stack,
		index:        m.index,
		address:      fallback,
		ignoreErrors: m.ignoreErrors,
	}
}

func (m *Machine) pop() *frame {
	fr := m.stack
	assert(!fr.sentinel, "pop of the bottom frame")
	m.stack = fr.parent
	return fr
}

func (m *Machine) popCall() *frame {
	fr := m.pop()
	assert(fr.isCall(), "RET on backtrack frame")
	m.calls[fr.calledAddress] = fr.previousCall
	return fr
}

func (m *Machine) commit() {
	fr := m.pop()
	assert(!fr.isCall(), "COMMIT on call frame")
	m.stack.children = append(m.stack.children, fr.children...)
}

func (m *Machine) backtrack() {
	m.Backtracks++
	if !m.ignoreErrors && m.index > m.furthest {
		m.furthest = m.index
	}
	for m.stack.isCall() {
		fr := m.popCall()
		m.ignoreErrors = fr.ignoreErrors
	}
	if m.stack.sentinel {
		m.R = FailureState
		m.address = -1
		return
	}
	fr := m.pop()
	m.index = fr.index
	m.address = fr.address
	m.ignoreErrors = fr.ignoreErrors
}

func (m *Machine) expect(op *Op) {
	if m.ignoreErrors || m.index < m.furthest {
		return
	}
	if m.index > m.furthest || m.expectedAt != m.index {
		m.expected = m.expected[:0]
		m.expectedAt = m.index
	}
	name := m.P.Matchers[op.Matcher].Name
	if tm := m.currentToken(); tm != nil {
		name = tm.Name
	}
	if !slices.Contains(m.expected, name) {
		m.expected = append(m.expected, name)
	}
}

func (m *Machine) leaf(op *Op, n int) {
	node := &ParseNode{
		Matcher: m.P.Matchers[op.Matcher],
		Start:   m.index,
		End:     m.index + n,
	}
	m.stack.children = append(m.stack.children, node)
	m.index += n
	m.address++
}

// matchLeaf returns the length of the input matched by a leaf instruction.
func (m *Machine) matchLeaf(op *Op) (int, bool) {
	if m.P.Mode == TokenMode {
		return m.matchTokenLeaf(op)
	}

	rest := m.text[m.index:]
	switch op.Code {
	case OpLiteral:
		lit := m.P.Literals[op.Arg]
		return len(lit), strings.HasPrefix(rest, lit)

	case OpPattern:
		n := m.P.Patterns[op.Arg].MatchLen(rest)
		return n, n >= 0

	case OpClass:
		r, size := utf8.DecodeRuneInString(rest)
		return size, size > 0 && m.P.Classes[op.Arg].Match(r)

	case OpAnyChar:
		_, size := utf8.DecodeRuneInString(rest)
		return size, size > 0

	case OpEndOfInput:
		return 0, rest == ""

	case OpNothing:
		return 0, false
	}
	assert(false, "%s on characters", op.Code)
	return 0, false
}

func (m *Machine) matchTokenLeaf(op *Op) (int, bool) {
	if op.Code == OpEndOfInput {
		return 0, m.index >= m.length || m.tokens[m.index].Type == token.EOF
	}
	if m.index >= m.length {
		return 0, false
	}
	tok := m.tokens[m.index]
	switch op.Code {
	case OpLiteral:
		return 1, tok.Value == m.P.Literals[op.Arg]

	case OpTokenType:
		return 1, tok.Type == m.P.TokenTypes[op.Arg]

	case OpAnyToken:
		return 1, tok.Type != token.EOF

	case OpTillNewLine:
		line := 1
		if m.index > 0 {
			line = m.tokens[m.index-1].Line
		}
		n := 0
		for i := m.index; i < m.length; i++ {
			t := m.tokens[i]
			if t.Type == token.EOF || t.Line != line {
				break
			}
			n++
		}
		return n, true

	case OpNothing:
		return 0, false
	}
	assert(false, "%s on tokens", op.Code)
	return 0, false
}

// currentToken returns the matcher of the innermost token being matched, or
// nil outside of any token.
func (m *Machine) currentToken() *Matcher {
	for fr := m.stack; fr != nil; fr = fr.parent {
		if fr.isCall() && fr.matcher.Kind == TokenMatcher {
			return fr.matcher
		}
	}
	return nil
}

// currentRule returns the name of the innermost rule being executed.
func (m *Machine) currentRule() string {
	for fr := m.stack; fr != nil; fr = fr.parent {
		if fr.isCall() && fr.matcher.Kind == RuleMatcher {
			return fr.matcher.Name
		}
	}
	return ""
}

func (m *Machine) grammarError(err error, rule, detail string) error {
	m.R = ErrorState
	return &GrammarError{Err: err, Rule: rule, Detail: detail}
}

func (m *Machine) runtimeError(err error, op *Op) error {
	m.R = ErrorState
	return &RuntimeError{Err: err, Address: m.address, Index: m.index, Op: op}
}
