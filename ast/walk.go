package ast

import (
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Visitor is notified as Walk traverses a Tree.
type Visitor interface {
	// SubscribedTypes lists the node types passed to VisitNode and
	// LeaveNode. An empty list subscribes to every node.
	SubscribedTypes() []token.Type

	VisitFile(t *Tree)
	VisitNode(t *Tree, id NodeID)
	LeaveNode(t *Tree, id NodeID)
	LeaveFile(t *Tree)
}

// TokenVisitor is a Visitor that also wants every token, once, in source
// order.
type TokenVisitor interface {
	Visitor
	VisitToken(t *Tree, tok *token.Token)
}

// BaseVisitor implements Visitor with methods that do nothing. Embed it to
// implement only the methods you need.
type BaseVisitor struct{}

func (BaseVisitor) SubscribedTypes() []token.Type { return nil }
func (BaseVisitor) VisitFile(*Tree)               {}
func (BaseVisitor) VisitNode(*Tree, NodeID)       {}
func (BaseVisitor) LeaveNode(*Tree, NodeID)       {}
func (BaseVisitor) LeaveFile(*Tree)               {}

type walker struct {
	tree   *Tree
	all    []Visitor
	byType map[token.Type][]Visitor
	tokens []TokenVisitor
	last   *token.Token
}

// Walk traverses the tree depth first. VisitFile is called on every visitor
// in order before the traversal, and LeaveFile in reverse order after it.
// Each node is visited before its children and left after them; LeaveNode
// runs in the reverse order of VisitNode.
func Walk(t *Tree, visitors ...Visitor) {
	w := &walker{tree: t, byType: make(map[token.Type][]Visitor)}
	for _, v := range visitors {
		types := v.SubscribedTypes()
		if len(types) == 0 {
			w.all = append(w.all, v)
		}
		for _, typ := range types {
			w.byType[typ] = append(w.byType[typ], v)
		}
		if tv, ok := v.(TokenVisitor); ok {
			w.tokens = append(w.tokens, tv)
		}
	}

	for _, v := range visitors {
		v.VisitFile(t)
	}
	if root := t.Root(); root != None {
		w.visit(root)
	}
	for i := len(visitors) - 1; i >= 0; i-- {
		visitors[i].LeaveFile(t)
	}
}

func (w *walker) visit(id NodeID) {
	n := &w.tree.nodes[id]
	subscribed := w.subscribers(n.Type)
	for _, v := range subscribed {
		v.VisitNode(w.tree, id)
	}
	if n.Token != nil && n.Token != w.last && n.IsLeaf() {
		w.last = n.Token
		for _, tv := range w.tokens {
			tv.VisitToken(w.tree, n.Token)
		}
	}
	for _, child := range n.Children {
		w.visit(child)
	}
	for i := len(subscribed) - 1; i >= 0; i-- {
		subscribed[i].LeaveNode(w.tree, id)
	}
}

func (w *walker) subscribers(typ token.Type) []Visitor {
	specific := w.byType[typ]
	if len(w.all) == 0 {
		return specific
	}
	if len(specific) == 0 {
		return w.all
	}
	out := make([]Visitor, 0, len(w.all)+len(specific))
	out = append(out, w.all...)
	return append(out, specific...)
}
