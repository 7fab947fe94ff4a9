package grammar

import (
	"errors"

	"github.com/chronos-tachyon/go-pegtree/pegvm"
)

// Builder collects rules and turns them into a Grammar. Mistakes are
// remembered and reported together by Build.
type Builder struct {
	mode  pegvm.Mode
	rules map[RuleKey]*Rule
	order []RuleKey
	root  RuleKey
	built bool
	errs  []error
}

// NewLexerless returns a Builder for a grammar that parses text directly.
func NewLexerless() *Builder {
	return newBuilder(pegvm.CharMode)
}

// NewLexerful returns a Builder for a grammar that parses tokens produced by
// a lexer.
func NewLexerful() *Builder {
	return newBuilder(pegvm.TokenMode)
}

func newBuilder(mode pegvm.Mode) *Builder {
	return &Builder{mode: mode, rules: make(map[RuleKey]*Rule)}
}

// RuleBuilder configures one rule of a Builder.
type RuleBuilder struct {
	b    *Builder
	rule *Rule
}

// Rule returns a RuleBuilder for the rule with the given key.
func (b *Builder) Rule(key RuleKey) *RuleBuilder {
	r := b.rules[key]
	if r == nil {
		r = &Rule{Key: key, Skip: Never}
		b.rules[key] = r
		b.order = append(b.order, key)
	}
	return &RuleBuilder{b: b, rule: r}
}

// SetRoot names the rule that a parse starts with.
func (b *Builder) SetRoot(key RuleKey) *Builder {
	b.root = key
	return b
}

// Is defines the rule as the sequence of its arguments. See Convert for the
// accepted argument types. Defining a rule twice is an error.
func (rb *RuleBuilder) Is(e ...any) *RuleBuilder {
	if rb.rule.Expr != nil {
		rb.b.errs = append(rb.b.errs, &pegvm.GrammarError{
			Err:  pegvm.ErrRuleRedefined,
			Rule: string(rb.rule.Key),
		})
		return rb
	}
	rb.rule.Expr = Seq(e...)
	return rb
}

// Override defines the rule, replacing any earlier definition.
func (rb *RuleBuilder) Override(e ...any) *RuleBuilder {
	rb.rule.Expr = Seq(e...)
	return rb
}

// Skip leaves the rule's nodes out of the syntax tree.
func (rb *RuleBuilder) Skip() *RuleBuilder {
	return rb.SkipWith(Always)
}

// SkipIfOneChild leaves the rule's nodes out of the syntax tree when they
// have exactly one child.
func (rb *RuleBuilder) SkipIfOneChild() *RuleBuilder {
	return rb.SkipWith(IfOneChild)
}

// SkipWith sets the rule's skip policy.
func (rb *RuleBuilder) SkipWith(p SkipPolicy) *RuleBuilder {
	if p == nil {
		p = Never
	}
	rb.rule.Skip = p
	return rb
}

// Build checks and compiles the rules. All problems found are returned
// together; each is a *pegvm.GrammarError.
func (b *Builder) Build() (*Grammar, error) {
	if b.built {
		return nil, &pegvm.GrammarError{Err: pegvm.ErrAlreadyBuilt}
	}
	b.built = true

	errs := append([]error(nil), b.errs...)

	rules := make(map[RuleKey]*Rule, len(b.rules))
	order := make([]RuleKey, 0, len(b.order))
	for _, key := range b.order {
		r := b.rules[key]
		if r.Expr == nil {
			errs = append(errs, &pegvm.GrammarError{
				Err:    pegvm.ErrUndefinedRule,
				Rule:   string(key),
				Detail: "rule is configured but has no expression",
			})
			continue
		}
		copied := &Rule{Key: key, Expr: r.Expr, Skip: r.Skip}
		copied.matcher = &pegvm.Matcher{
			Kind:    pegvm.RuleMatcher,
			Name:    string(key),
			Payload: copied,
		}
		rules[key] = copied
		order = append(order, key)
	}

	var root *Rule
	switch {
	case b.root == "":
		errs = append(errs, &pegvm.GrammarError{Err: pegvm.ErrNoRoot})
	case rules[b.root] == nil:
		errs = append(errs, &pegvm.GrammarError{
			Err:    pegvm.ErrNoRoot,
			Rule:   string(b.root),
			Detail: "root rule is not defined",
		})
	default:
		root = rules[b.root]
	}
	if len(errs) != 0 {
		return nil, errors.Join(errs...)
	}

	c := newCompiler(b.mode, rules)
	program, cerrs := c.program(root, order)
	if len(cerrs) != 0 {
		return nil, errors.Join(cerrs...)
	}
	return &Grammar{
		mode:    b.mode,
		root:    root,
		rules:   rules,
		order:   order,
		program: program,
	}, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Grammar {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
