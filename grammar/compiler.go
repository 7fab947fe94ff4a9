package grammar

import (
	"fmt"
	"strings"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/internal/levenshtein"
	"github.com/chronos-tachyon/go-pegtree/pegvm"
)

const maxSuggestionDistance = 2

type compiler struct {
	asm      *pegvm.Assembler
	rules    map[RuleKey]*Rule
	rule     *Rule
	labels   map[RuleKey]*pegvm.AsmLabel
	matchers map[Expression]*pegvm.Matcher
	errs     []error
}

func newCompiler(mode pegvm.Mode, rules map[RuleKey]*Rule) *compiler {
	return &compiler{
		asm:      pegvm.NewAssembler(mode),
		rules:    rules,
		labels:   make(map[RuleKey]*pegvm.AsmLabel, len(rules)),
		matchers: make(map[Expression]*pegvm.Matcher),
	}
}

// program compiles the whole grammar. The prologue calls the root rule and
// halts; each rule follows as "label; body; RET".
func (c *compiler) program(root *Rule, order []RuleKey) (*pegvm.Program, []error) {
	c.asm.EmitJump(pegvm.OpCall, c.label(root.Key), root.matcher)
	c.asm.Emit(pegvm.OpEnd)

	for _, key := range order {
		r := c.rules[key]
		c.rule = r
		c.emitLabel(c.label(key))
		r.Expr.compile(c)
		c.asm.Emit(pegvm.OpRet)
	}
	c.rule = nil

	if len(c.errs) != 0 {
		return nil, c.errs
	}
	p, err := c.asm.Finish()
	if err != nil {
		return nil, []error{err}
	}
	return p, nil
}

func (c *compiler) label(key RuleKey) *pegvm.AsmLabel {
	if l := c.labels[key]; l != nil {
		return l
	}
	l := c.asm.GrabLabel(string(key))
	c.labels[key] = l
	return l
}

func (c *compiler) emitLabel(l *pegvm.AsmLabel) {
	if err := c.asm.EmitLabel(l); err != nil {
		c.errs = append(c.errs, err)
	}
}

func (c *compiler) fail(err error, detail string, args ...any) {
	ge := &pegvm.GrammarError{Err: err}
	if c.rule != nil {
		ge.Rule = string(c.rule.Key)
	}
	if len(args) != 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	ge.Detail = detail
	c.errs = append(c.errs, ge)
}

// requireMode records an error if e cannot run on this grammar's input.
func (c *compiler) requireMode(e Expression, mode pegvm.Mode) bool {
	if c.asm.Mode == mode {
		return true
	}
	c.fail(pegvm.ErrWrongMode, "%s needs %s, grammar runs on %s", e, mode, c.asm.Mode)
	return false
}

// matcher returns the one Matcher that stands for e in this program.
func (c *compiler) matcher(e Expression, kind pegvm.MatcherKind, name string) *pegvm.Matcher {
	if m := c.matchers[e]; m != nil {
		return m
	}
	m := &pegvm.Matcher{
		Kind:    kind,
		Name:    name,
		Memoize: kind == pegvm.TokenMatcher || kind == pegvm.TriviaMatcher,
		Payload: e,
	}
	c.matchers[e] = m
	return m
}

func (c *compiler) leaf(e Expression, code pegvm.OpCode, arg int) {
	c.asm.EmitLeaf(code, arg, c.matcher(e, pegvm.LeafMatcher, e.String()))
}

// subroutine compiles "CALL start; JUMP end; start: [IGNERR] body; RET; end:".
func (c *compiler) subroutine(m *pegvm.Matcher, body Expression, ignoreErrors bool) {
	start, end := c.asm.NewLabel(), c.asm.NewLabel()
	c.asm.EmitJump(pegvm.OpCall, start, m)
	c.asm.EmitJump(pegvm.OpJump, end, nil)
	c.emitLabel(start)
	if ignoreErrors {
		c.asm.Emit(pegvm.OpIgnoreErrors)
	}
	body.compile(c)
	c.asm.Emit(pegvm.OpRet)
	c.emitLabel(end)
}

func (c *compiler) suggest(key RuleKey) string {
	candidates := func(yield func(string) bool) {
		for k := range c.rules {
			if !yield(string(k)) {
				return
			}
		}
	}
	closest := levenshtein.ClosestStrings(maxSuggestionDistance, string(key), candidates)
	switch len(closest) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf("; did you mean %q?", closest[0])
	default:
		quoted := make([]string, len(closest))
		for i, s := range closest {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "; did you mean one of " + strings.Join(quoted, ", ") + "?"
	}
}

func (e *SequenceExpr) compile(c *compiler) {
	for _, x := range e.Exprs {
		x.compile(c)
	}
}

func (e *FirstOfExpr) compile(c *compiler) {
	end := c.asm.NewLabel()
	last := len(e.Alternatives) - 1
	for i, alt := range e.Alternatives {
		if i == last {
			alt.compile(c)
			break
		}
		next := c.asm.NewLabel()
		c.asm.EmitJump(pegvm.OpChoice, next, nil)
		alt.compile(c)
		c.asm.EmitJump(pegvm.OpCommit, end, nil)
		c.emitLabel(next)
	}
	c.emitLabel(end)
}

func (e *OptionalExpr) compile(c *compiler) {
	end := c.asm.NewLabel()
	c.asm.EmitJump(pegvm.OpChoice, end, nil)
	e.Expr.compile(c)
	c.asm.EmitJump(pegvm.OpCommit, end, nil)
	c.emitLabel(end)
}

func compileLoop(c *compiler, body Expression) {
	loop, end := c.asm.NewLabel(), c.asm.NewLabel()
	c.emitLabel(loop)
	c.asm.EmitJump(pegvm.OpChoice, end, nil)
	body.compile(c)
	c.asm.EmitJump(pegvm.OpCommitVerify, loop, nil)
	c.emitLabel(end)
}

func (e *ZeroOrMoreExpr) compile(c *compiler) {
	compileLoop(c, e.Expr)
}

func (e *OneOrMoreExpr) compile(c *compiler) {
	e.Expr.compile(c)
	compileLoop(c, e.Expr)
}

func (e *NextExpr) compile(c *compiler) {
	l0, l1 := c.asm.NewLabel(), c.asm.NewLabel()
	c.asm.EmitJump(pegvm.OpPredicateChoice, l0, nil)
	e.Expr.compile(c)
	c.asm.EmitJump(pegvm.OpBackCommit, l1, nil)
	c.emitLabel(l0)
	c.asm.Emit(pegvm.OpBacktrack)
	c.emitLabel(l1)
}

func (e *NextNotExpr) compile(c *compiler) {
	l0 := c.asm.NewLabel()
	c.asm.EmitJump(pegvm.OpPredicateChoice, l0, nil)
	e.Expr.compile(c)
	c.asm.Emit(pegvm.OpFailTwice)
	c.emitLabel(l0)
}

func (e *LiteralExpr) compile(c *compiler) {
	c.leaf(e, pegvm.OpLiteral, c.asm.DeclareLiteral(e.Value))
}

func (e *PatternExpr) compile(c *compiler) {
	if !c.requireMode(e, pegvm.CharMode) {
		return
	}
	i, err := c.asm.DeclarePattern(e.Source)
	if err != nil {
		c.fail(pegvm.ErrInvalidPattern, "%q: %v", e.Source, err)
		return
	}
	c.leaf(e, pegvm.OpPattern, i)
}

func (e *ClassExpr) compile(c *compiler) {
	if !c.requireMode(e, pegvm.CharMode) {
		return
	}
	m := e.Matcher
	if m == nil {
		var err error
		m, err = charclass.Parse(e.Source)
		if err != nil {
			c.fail(pegvm.ErrInvalidPattern, "%q: %v", e.Source, err)
			return
		}
	}
	c.leaf(e, pegvm.OpClass, c.asm.DeclareClass(m))
}

func (e *AnyCharExpr) compile(c *compiler) {
	if c.requireMode(e, pegvm.CharMode) {
		c.leaf(e, pegvm.OpAnyChar, 0)
	}
}

func (e *EndOfInputExpr) compile(c *compiler) {
	c.leaf(e, pegvm.OpEndOfInput, 0)
}

func (e *NothingExpr) compile(c *compiler) {
	c.leaf(e, pegvm.OpNothing, 0)
}

func (e *TokenExpr) compile(c *compiler) {
	if !c.requireMode(e, pegvm.CharMode) {
		return
	}
	m := c.matcher(e, pegvm.TokenMatcher, e.Type.Name())
	c.subroutine(m, e.Expr, false)
}

func (e *TriviaExpr) compile(c *compiler) {
	if !c.requireMode(e, pegvm.CharMode) {
		return
	}
	m := c.matcher(e, pegvm.TriviaMatcher, e.Kind.String())
	c.subroutine(m, e.Expr, true)
}

func (e *RuleRefExpr) compile(c *compiler) {
	r := c.rules[e.Key]
	if r == nil {
		c.fail(pegvm.ErrUndefinedRule, "%s%s", e.Key, c.suggest(e.Key))
		return
	}
	c.asm.EmitJump(pegvm.OpCall, c.label(e.Key), r.matcher)
}

func (e *TokenTypeExpr) compile(c *compiler) {
	if c.requireMode(e, pegvm.TokenMode) {
		c.leaf(e, pegvm.OpTokenType, c.asm.DeclareTokenType(e.Type))
	}
}

func (e *AnyTokenExpr) compile(c *compiler) {
	if c.requireMode(e, pegvm.TokenMode) {
		c.leaf(e, pegvm.OpAnyToken, 0)
	}
}

func (e *TillNewLineExpr) compile(c *compiler) {
	if c.requireMode(e, pegvm.TokenMode) {
		c.leaf(e, pegvm.OpTillNewLine, 0)
	}
}
