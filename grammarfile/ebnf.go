package grammarfile

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/grammar"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Names that stand for built-in expressions when no production defines
// them.
const (
	builtinEOI         = "EOI"
	builtinAny         = "ANY"
	builtinNothing     = "NOTHING"
	builtinTillNewLine = "TILL_NEWLINE"
)

// isLexical reports whether name is a lexical production, following the
// EBNF convention of a lower-case first letter.
func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsLower(r)
}

type converter struct {
	m        *Manifest
	lexerful bool
	prods    ebnf.Grammar
	tokens   map[string]bool
}

// productions returns the productions in source order.
func productions(g ebnf.Grammar) []*ebnf.Production {
	out := make([]*ebnf.Production, 0, len(g))
	for _, p := range g {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *ebnf.Production) int {
		return a.Pos().Offset - b.Pos().Offset
	})
	return out
}

// compileEBNF parses src and registers one rule per production with b.
func compileEBNF(b *grammar.Builder, m *Manifest, name string, src []byte) error {
	prods, err := ebnf.Parse(name, bytes.NewReader(src))
	if err != nil {
		return err
	}
	for pname := range m.Patterns {
		if _, found := prods[pname]; found {
			return invalid("pattern %q is also an EBNF production", pname)
		}
	}

	c := &converter{
		m:        m,
		lexerful: m.Lexerful(),
		prods:    prods,
	}
	c.findTokens()

	ordered := productions(prods)
	for _, p := range ordered {
		key := grammar.RuleKey(p.Name.String)
		var body grammar.Expression
		if p.Expr == nil {
			body = grammar.Seq()
		} else if body, err = c.convert(p.Expr); err != nil {
			return err
		}
		c.register(b, key, body)
	}
	for _, pname := range sortedKeys(m.Patterns) {
		c.register(b, grammar.RuleKey(pname), grammar.Regexp(m.Patterns[pname]))
	}

	root := m.Root
	if root == "" && len(ordered) != 0 {
		root = ordered[0].Name.String
	}
	if root != "" {
		b.SetRoot(grammar.RuleKey(root))
	}

	for _, s := range m.Skip {
		if !c.defined(s) {
			return invalid("skip: no rule named %q", s)
		}
		b.Rule(grammar.RuleKey(s)).Skip()
	}
	for _, s := range m.SkipIfOneChild {
		if !c.defined(s) {
			return invalid("skipIfOneChild: no rule named %q", s)
		}
		b.Rule(grammar.RuleKey(s)).SkipIfOneChild()
	}
	return nil
}

func (c *converter) defined(name string) bool {
	if _, found := c.prods[name]; found {
		return true
	}
	_, found := c.m.Patterns[name]
	return found
}

// register adds a rule for one production. In lexerless grammars lexical
// productions are always skipped, and those used by syntactic productions
// are wrapped as tokens or trivia.
func (c *converter) register(b *grammar.Builder, key grammar.RuleKey, body grammar.Expression) {
	rb := b.Rule(key)
	name := key.Name()
	if c.lexerful || !isLexical(name) {
		rb.Is(body)
		return
	}
	switch {
	case slices.Contains(c.m.Spacing, name):
		body = grammar.SkippedTrivia(body)
	case slices.Contains(c.m.Comment, name):
		body = grammar.CommentTrivia(body)
	case c.tokens[name]:
		body = grammar.Token(c.tokenType(name), body)
	}
	rb.Is(body).Skip()
}

func (c *converter) tokenType(name string) token.Type {
	if alias, found := c.m.Tokens[name]; found {
		return token.Lookup(alias)
	}
	return token.Named(strings.ToUpper(name))
}

// findTokens marks the lexical productions referenced directly from
// syntactic ones. Lexical productions used only by other lexical
// productions are fragments of a token.
func (c *converter) findTokens() {
	c.tokens = make(map[string]bool)
	for name, p := range c.prods {
		if isLexical(name) || p.Expr == nil {
			continue
		}
		walkNames(p.Expr, func(ref string) {
			if isLexical(ref) {
				c.tokens[ref] = true
			}
		})
	}
}

func walkNames(e ebnf.Expression, fn func(string)) {
	switch x := e.(type) {
	case ebnf.Alternative:
		for _, y := range x {
			walkNames(y, fn)
		}
	case ebnf.Sequence:
		for _, y := range x {
			walkNames(y, fn)
		}
	case *ebnf.Group:
		walkNames(x.Body, fn)
	case *ebnf.Option:
		walkNames(x.Body, fn)
	case *ebnf.Repetition:
		walkNames(x.Body, fn)
	case *ebnf.Name:
		fn(x.String)
	}
}

func (c *converter) convertAll(es []ebnf.Expression) ([]any, error) {
	out := make([]any, len(es))
	for i, e := range es {
		x, err := c.convert(e)
		if err != nil {
			return nil, err
		}
		out[i] = x
	}
	return out, nil
}

func (c *converter) convert(e ebnf.Expression) (grammar.Expression, error) {
	switch x := e.(type) {
	case ebnf.Alternative:
		alts, err := c.convertAll(x)
		if err != nil {
			return nil, err
		}
		return grammar.FirstOf(alts...), nil

	case ebnf.Sequence:
		items, err := c.convertAll(x)
		if err != nil {
			return nil, err
		}
		return grammar.Seq(items...), nil

	case *ebnf.Group:
		return c.convert(x.Body)

	case *ebnf.Option:
		body, err := c.convert(x.Body)
		if err != nil {
			return nil, err
		}
		return grammar.Optional(body), nil

	case *ebnf.Repetition:
		body, err := c.convert(x.Body)
		if err != nil {
			return nil, err
		}
		return grammar.ZeroOrMore(body), nil

	case *ebnf.Token:
		return grammar.Value(x.String), nil

	case *ebnf.Range:
		if utf8.RuneCountInString(x.Begin.String) != 1 || utf8.RuneCountInString(x.End.String) != 1 {
			return nil, fmt.Errorf("%s: range bounds must be single characters", x.Pos())
		}
		lo, _ := utf8.DecodeRuneInString(x.Begin.String)
		hi, _ := utf8.DecodeRuneInString(x.End.String)
		return grammar.Class(charclass.Ranges(charclass.Range{Lo: lo, Hi: hi})), nil

	case *ebnf.Name:
		return c.name(x.String), nil

	default:
		return nil, fmt.Errorf("%s: unsupported EBNF expression %T", e.Pos(), e)
	}
}

func (c *converter) name(name string) grammar.Expression {
	if c.defined(name) {
		return grammar.Ref(grammar.RuleKey(name))
	}
	switch name {
	case builtinEOI:
		return grammar.EndOfInput()
	case builtinNothing:
		return grammar.Nothing()
	case builtinAny:
		if c.lexerful {
			return grammar.AnyToken()
		}
		return grammar.AnyChar()
	case builtinTillNewLine:
		return grammar.TillNewLine()
	}
	if c.lexerful {
		if alias, found := c.m.Tokens[name]; found {
			return grammar.Type(token.Lookup(alias))
		}
		return grammar.Type(token.Lookup(name))
	}
	return grammar.Ref(grammar.RuleKey(name))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
