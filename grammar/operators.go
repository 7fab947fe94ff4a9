package grammar

import (
	"fmt"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Convert turns a combinator argument into an Expression:
//
//   Expression         itself
//   RuleKey            a reference to that rule
//   string             a literal (on tokens: a token with that value)
//   token.Type         a token of that type
//   charclass.Matcher  one rune of that class
//
// Anything else is a programming error and panics.
func Convert(e any) Expression {
	switch x := e.(type) {
	case Expression:
		return x
	case RuleKey:
		return &RuleRefExpr{Key: x}
	case string:
		return &LiteralExpr{Value: x}
	case token.Type:
		return &TokenTypeExpr{Type: x}
	case charclass.Matcher:
		return &ClassExpr{Matcher: x}
	case nil:
		panic("grammar: nil expression")
	default:
		panic(fmt.Errorf("grammar: cannot use %T as an expression", e))
	}
}

func convertAll(es []any) []Expression {
	out := make([]Expression, len(es))
	for i, e := range es {
		out[i] = Convert(e)
	}
	return out
}

// Seq matches each argument in order. A single argument is returned as is.
func Seq(e ...any) Expression {
	if len(e) == 1 {
		return Convert(e[0])
	}
	return &SequenceExpr{Exprs: convertAll(e)}
}

// FirstOf tries each argument in order. A single argument is returned as is.
func FirstOf(e ...any) Expression {
	if len(e) == 0 {
		panic("grammar: FirstOf needs at least one alternative")
	}
	if len(e) == 1 {
		return Convert(e[0])
	}
	return &FirstOfExpr{Alternatives: convertAll(e)}
}

// Optional matches the sequence of its arguments, or nothing.
func Optional(e ...any) Expression {
	return &OptionalExpr{Expr: Seq(e...)}
}

// ZeroOrMore matches the sequence of its arguments any number of times.
func ZeroOrMore(e ...any) Expression {
	return &ZeroOrMoreExpr{Expr: Seq(e...)}
}

// OneOrMore matches the sequence of its arguments at least once.
func OneOrMore(e ...any) Expression {
	return &OneOrMoreExpr{Expr: Seq(e...)}
}

// Next succeeds iff the sequence of its arguments matches, consuming nothing.
func Next(e ...any) Expression {
	return &NextExpr{Expr: Seq(e...)}
}

// NextNot succeeds iff the sequence of its arguments does not match,
// consuming nothing.
func NextNot(e ...any) Expression {
	return &NextNotExpr{Expr: Seq(e...)}
}

// Regexp matches a regular expression. Errors in src are reported when the
// grammar is built.
func Regexp(src string) Expression {
	return &PatternExpr{Source: src}
}

// Chars matches one rune of a character class written in charclass.Parse
// syntax. Errors in src are reported when the grammar is built.
func Chars(src string) Expression {
	return &ClassExpr{Source: src}
}

// Class matches one rune of m.
func Class(m charclass.Matcher) Expression {
	return &ClassExpr{Matcher: m}
}

// AnyChar matches any one rune.
func AnyChar() Expression {
	return &AnyCharExpr{}
}

// EndOfInput matches only at the end of the input.
func EndOfInput() Expression {
	return &EndOfInputExpr{}
}

// Nothing never matches.
func Nothing() Expression {
	return &NothingExpr{}
}

// Token declares the text matched by its arguments to be one token of type t.
func Token(t token.Type, e ...any) Expression {
	return &TokenExpr{Type: t, Expr: Seq(e...)}
}

// CommentTrivia declares the text matched by its arguments to be a comment.
func CommentTrivia(e ...any) Expression {
	return &TriviaExpr{Kind: token.CommentTrivia, Expr: Seq(e...)}
}

// SkippedTrivia declares the text matched by its arguments to be skipped
// text, such as whitespace.
func SkippedTrivia(e ...any) Expression {
	return &TriviaExpr{Kind: token.SkippedTextTrivia, Expr: Seq(e...)}
}

// Ref refers to a rule.
func Ref(key RuleKey) Expression {
	return &RuleRefExpr{Key: key}
}

// Type matches one token of type t.
func Type(t token.Type) Expression {
	return &TokenTypeExpr{Type: t}
}

// Value matches one token whose value is s.
func Value(s string) Expression {
	return &LiteralExpr{Value: s}
}

// AnyToken matches any one token except EOF.
func AnyToken() Expression {
	return &AnyTokenExpr{}
}

// TillNewLine matches the rest of the tokens on the current line.
func TillNewLine() Expression {
	return &TillNewLineExpr{}
}
