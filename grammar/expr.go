package grammar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Expression is the body of a rule, or a part of it. Expressions are
// immutable; the same Expression may appear in several rules and grammars.
//
// The set of implementations is closed: the compiler knows how to compile
// each of them.
type Expression interface {
	String() string
	compile(c *compiler)
}

// SequenceExpr matches each of Exprs in order.
type SequenceExpr struct {
	Exprs []Expression
}

// FirstOfExpr tries each of Alternatives in order and commits to the first
// one that matches.
type FirstOfExpr struct {
	Alternatives []Expression
}

// OptionalExpr matches Expr or nothing.
type OptionalExpr struct {
	Expr Expression
}

// ZeroOrMoreExpr matches Expr as many times as possible, including none.
// Expr must not match the empty string.
type ZeroOrMoreExpr struct {
	Expr Expression
}

// OneOrMoreExpr matches Expr as many times as possible, at least once.
// Expr must not match the empty string.
type OneOrMoreExpr struct {
	Expr Expression
}

// NextExpr succeeds iff Expr matches, without consuming input.
type NextExpr struct {
	Expr Expression
}

// NextNotExpr succeeds iff Expr does not match, without consuming input.
type NextNotExpr struct {
	Expr Expression
}

// LiteralExpr matches the exact text Value. On tokens, it matches one token
// whose Value is Value.
type LiteralExpr struct {
	Value string
}

// PatternExpr matches the regular expression Source at the current position.
type PatternExpr struct {
	Source string
}

// ClassExpr matches one rune of a character class. If Matcher is nil, the
// class is parsed from Source when the grammar is built.
type ClassExpr struct {
	Source  string
	Matcher charclass.Matcher
}

// AnyCharExpr matches any one rune.
type AnyCharExpr struct{}

// EndOfInputExpr matches only at the end of the input.
type EndOfInputExpr struct{}

// NothingExpr never matches.
type NothingExpr struct{}

// TokenExpr declares that the text matched by Expr is a single token of the
// given Type. Its matches are memoized.
type TokenExpr struct {
	Type token.Type
	Expr Expression
}

// TriviaExpr declares that the text matched by Expr is trivia of the given
// Kind. Its matches are memoized, and failures inside it are not reported.
type TriviaExpr struct {
	Kind token.TriviaKind
	Expr Expression
}

// RuleRefExpr matches the rule named by Key.
type RuleRefExpr struct {
	Key RuleKey
}

// TokenTypeExpr matches one token of the given Type.
type TokenTypeExpr struct {
	Type token.Type
}

// AnyTokenExpr matches any one token except EOF.
type AnyTokenExpr struct{}

// TillNewLineExpr matches every remaining token on the line of the previous
// token. It never fails.
type TillNewLineExpr struct{}

func joinExprs(list []Expression, sep string) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = e.String()
	}
	return strings.Join(parts, sep)
}

func (e *SequenceExpr) String() string   { return "(" + joinExprs(e.Exprs, " ") + ")" }
func (e *FirstOfExpr) String() string    { return "(" + joinExprs(e.Alternatives, " / ") + ")" }
func (e *OptionalExpr) String() string   { return e.Expr.String() + "?" }
func (e *ZeroOrMoreExpr) String() string { return e.Expr.String() + "*" }
func (e *OneOrMoreExpr) String() string  { return e.Expr.String() + "+" }
func (e *NextExpr) String() string       { return "&" + e.Expr.String() }
func (e *NextNotExpr) String() string    { return "!" + e.Expr.String() }
func (e *LiteralExpr) String() string    { return strconv.Quote(e.Value) }
func (e *PatternExpr) String() string    { return "regexp(" + strconv.Quote(e.Source) + ")" }
func (e *AnyCharExpr) String() string    { return "." }
func (e *EndOfInputExpr) String() string { return "EOI" }
func (e *NothingExpr) String() string    { return "NOTHING" }
func (e *RuleRefExpr) String() string    { return string(e.Key) }
func (e *TokenTypeExpr) String() string  { return e.Type.Name() }
func (e *AnyTokenExpr) String() string   { return "ANY_TOKEN" }

func (e *TillNewLineExpr) String() string { return "TILL_NEWLINE" }

func (e *ClassExpr) String() string {
	if e.Matcher != nil {
		return e.Matcher.String()
	}
	return e.Source
}

func (e *TokenExpr) String() string {
	return fmt.Sprintf("token(%s, %s)", e.Type.Name(), e.Expr)
}

func (e *TriviaExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind, e.Expr)
}
