package ast

import (
	"github.com/chronos-tachyon/go-pegtree/grammar"
	"github.com/chronos-tachyon/go-pegtree/pegvm"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Input is what a parse ran over. Exactly one of Text and Tokens is used:
// Tokens if it is non-nil, Text otherwise.
type Input struct {
	Name   string
	Text   string
	Tokens []*token.Token
}

type proto struct {
	typ      token.Type
	tok      *token.Token
	from, to int
	kids     []*proto
}

type builder struct {
	in       Input
	lexerful bool
	lines    *token.Lines
	pending  []*token.Trivia
	tokens   []*token.Token
}

// Build converts the root of a successful parse into a Tree.
//
// Rule nodes become inner nodes unless the rule's skip policy says
// otherwise, in which case their children take their place. The root is
// never skipped. On text, token and bare leaf matches become leaves owning
// new tokens, and comments become trivia of the next token. On tokens, each
// matched input token becomes a leaf.
func Build(root *pegvm.ParseNode, in Input) *Tree {
	b := &builder{in: in, lexerful: in.Tokens != nil}
	if !b.lexerful {
		b.lines = token.NewLines(in.Text)
	}

	t := &Tree{Source: in.Name, Lexerful: b.lexerful}
	if root == nil {
		return t
	}
	protos := b.visit(root, true)
	t.tokens = b.tokens
	t.trailing = b.pending
	if len(protos) == 1 {
		t.add(protos[0], None, 0)
	}
	return t
}

func (b *builder) children(pn *pegvm.ParseNode) []*proto {
	var out []*proto
	for _, child := range pn.Children {
		out = append(out, b.visit(child, false)...)
	}
	return out
}

func (b *builder) visit(pn *pegvm.ParseNode, root bool) []*proto {
	m := pn.Matcher
	switch m.Kind {
	case pegvm.RuleMatcher:
		kids := b.children(pn)
		r := grammar.RuleFor(m)
		if r == nil {
			return []*proto{{typ: grammar.RuleKey(m.Name), from: pn.Start, to: pn.End, kids: kids}}
		}
		if !root && r.Skip.Skip(len(kids)) {
			return kids
		}
		return []*proto{{typ: r.Key, from: pn.Start, to: pn.End, kids: kids}}

	case pegvm.TokenMatcher:
		typ := grammar.TokenTypeFor(m)
		if typ == nil {
			typ = token.Literal
		}
		return []*proto{b.textLeaf(typ, pn.Start, pn.End)}

	case pegvm.TriviaMatcher:
		if kind, _ := grammar.TriviaKindFor(m); kind == token.CommentTrivia {
			tok := b.textToken(token.Comment, pn.Start, pn.End)
			b.pending = append(b.pending, token.NewComment(tok))
		}
		return nil

	default:
		if b.lexerful {
			return b.tokenLeaves(pn.Start, pn.End)
		}
		if pn.Start == pn.End {
			return nil
		}
		return []*proto{b.textLeaf(token.Literal, pn.Start, pn.End)}
	}
}

func (b *builder) textToken(typ token.Type, start, end int) *token.Token {
	line, column := b.lines.Position(start)
	text := b.in.Text[start:end]
	return &token.Token{
		Type:          typ,
		Value:         text,
		OriginalValue: text,
		Source:        b.in.Name,
		Offset:        start,
		Line:          line,
		Column:        column,
	}
}

func (b *builder) textLeaf(typ token.Type, start, end int) *proto {
	tok := b.textToken(typ, start, end)
	tok.Trivia = b.pending
	b.pending = nil
	b.tokens = append(b.tokens, tok)
	return &proto{typ: typ, tok: tok, from: start, to: end}
}

func (b *builder) tokenLeaves(start, end int) []*proto {
	out := make([]*proto, 0, end-start)
	for i := start; i < end; i++ {
		tok := b.in.Tokens[i]
		b.tokens = append(b.tokens, tok)
		out = append(out, &proto{typ: tok.Type, tok: tok, from: i, to: i + 1})
	}
	return out
}

// add appends p and its descendants in preorder.
func (t *Tree) add(p *proto, parent NodeID, index int) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Type:       p.typ,
		Name:       p.typ.Name(),
		Token:      p.tok,
		Parent:     parent,
		ChildIndex: index,
		From:       p.from,
		To:         p.to,
	})

	var children []NodeID
	if len(p.kids) != 0 {
		children = make([]NodeID, len(p.kids))
	}
	for i, kid := range p.kids {
		children[i] = t.add(kid, id, i)
	}

	n := &t.nodes[id]
	n.Children = children
	if n.Token == nil {
		for _, child := range children {
			if tok := t.nodes[child].Token; tok != nil {
				n.Token = tok
				break
			}
		}
	}
	return id
}
