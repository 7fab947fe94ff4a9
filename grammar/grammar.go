// Package grammar defines PEG grammars: expressions, rules, and the builder
// that checks a set of rules and compiles it for the pegvm package.
package grammar

import (
	"bytes"
	"io"

	"github.com/chronos-tachyon/go-pegtree/pegvm"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// RuleKey names a rule. It doubles as a token.Type, so that a syntax tree
// node can be typed by the rule that produced it.
type RuleKey string

func (k RuleKey) Name() string   { return string(k) }
func (k RuleKey) String() string { return string(k) }

var _ token.Type = RuleKey("")

// Rule is a named expression.
type Rule struct {
	Key  RuleKey
	Expr Expression

	// Skip decides whether this rule's nodes are left out of the syntax
	// tree. It is never nil in a built Grammar.
	Skip SkipPolicy

	matcher *pegvm.Matcher
}

// Matcher returns the matcher identifying this rule's parse nodes.
func (r *Rule) Matcher() *pegvm.Matcher {
	return r.matcher
}

func (r *Rule) String() string {
	return string(r.Key) + " <- " + r.Expr.String()
}

// Grammar is a compiled set of rules. A Grammar is immutable and safe for
// concurrent use.
type Grammar struct {
	mode    pegvm.Mode
	root    *Rule
	rules   map[RuleKey]*Rule
	order   []RuleKey
	program *pegvm.Program
}

// Mode returns the kind of input the grammar parses.
func (g *Grammar) Mode() pegvm.Mode {
	return g.mode
}

// Lexerful returns true iff the grammar parses tokens rather than text.
func (g *Grammar) Lexerful() bool {
	return g.mode == pegvm.TokenMode
}

// Root returns the rule that a parse starts with.
func (g *Grammar) Root() *Rule {
	return g.root
}

// Rule returns the rule with the given key, or nil.
func (g *Grammar) Rule(key RuleKey) *Rule {
	return g.rules[key]
}

// Rules returns every rule in definition order.
func (g *Grammar) Rules() []*Rule {
	out := make([]*Rule, len(g.order))
	for i, key := range g.order {
		out[i] = g.rules[key]
	}
	return out
}

// Program returns the compiled form of the grammar.
func (g *Grammar) Program() *pegvm.Program {
	return g.program
}

// Disassemble writes a listing of the compiled program.
func (g *Grammar) Disassemble(w io.Writer) (int, error) {
	return g.program.Disassemble(w)
}

// String lists the rules, one per line, root first.
func (g *Grammar) String() string {
	var buf bytes.Buffer
	buf.WriteString(g.root.String())
	buf.WriteByte('\n')
	for _, key := range g.order {
		if key == g.root.Key {
			continue
		}
		buf.WriteString(g.rules[key].String())
		buf.WriteByte('\n')
	}
	return buf.String()
}

// Extend returns a Builder preloaded with this grammar's rules and root.
// Rules may be replaced with RuleBuilder.Override.
func (g *Grammar) Extend() *Builder {
	b := newBuilder(g.mode)
	for _, key := range g.order {
		r := g.rules[key]
		b.rules[key] = &Rule{Key: key, Expr: r.Expr, Skip: r.Skip}
		b.order = append(b.order, key)
	}
	b.root = g.root.Key
	return b
}

// RuleFor returns the rule behind a parse node's matcher, or nil if the
// matcher does not belong to a rule.
func RuleFor(m *pegvm.Matcher) *Rule {
	if m == nil || m.Kind != pegvm.RuleMatcher {
		return nil
	}
	r, _ := m.Payload.(*Rule)
	return r
}

// TokenTypeFor returns the token type declared by a token matcher, or nil.
func TokenTypeFor(m *pegvm.Matcher) token.Type {
	if m == nil || m.Kind != pegvm.TokenMatcher {
		return nil
	}
	if e, ok := m.Payload.(*TokenExpr); ok {
		return e.Type
	}
	return nil
}

// TriviaKindFor returns the trivia kind declared by a trivia matcher.
func TriviaKindFor(m *pegvm.Matcher) (token.TriviaKind, bool) {
	if m == nil || m.Kind != pegvm.TriviaMatcher {
		return 0, false
	}
	if e, ok := m.Payload.(*TriviaExpr); ok {
		return e.Kind, true
	}
	return 0, false
}
