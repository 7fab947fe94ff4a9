// Package ast turns the trace of a successful parse into a syntax tree.
//
// A Tree is an arena: nodes are addressed by NodeID, and parents are stored
// as IDs rather than pointers. Node 0 is the root; IDs are assigned in
// preorder.
package ast

import (
	"github.com/chronos-tachyon/go-pegtree/token"
)

// NodeID addresses a node within its Tree.
type NodeID int32

// None is the NodeID of no node, such as the root's parent.
const None NodeID = -1

// Node is one node of a Tree.
type Node struct {
	// Type is a grammar.RuleKey for rule nodes, or a token.Type for leaves.
	Type token.Type

	// Name is the display name of the node.
	Name string

	// Token is the leaf's own token, or for an inner node the token of its
	// first child that has one. It may be nil.
	Token *token.Token

	Parent     NodeID
	Children   []NodeID
	ChildIndex int

	// From and To delimit the input matched by the node: byte offsets for
	// text, token indices for tokens.
	From int
	To   int
}

// IsLeaf returns true iff the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Tree is an immutable syntax tree.
type Tree struct {
	// Source names where the input came from.
	Source string

	// Lexerful is true iff the tree was built from tokens.
	Lexerful bool

	nodes    []Node
	tokens   []*token.Token
	trailing []*token.Trivia
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the ID of the root node.
func (t *Tree) Root() NodeID {
	if len(t.nodes) == 0 {
		return None
	}
	return 0
}

// Node returns the node with the given ID, or nil.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Tokens returns every token of the tree's leaves, in source order.
func (t *Tree) Tokens() []*token.Token {
	return t.tokens
}

// TrailingTrivia returns the comments found after the last token.
func (t *Tree) TrailingTrivia() []*token.Trivia {
	return t.trailing
}

func matches(typ token.Type, types []token.Type) bool {
	if len(types) == 0 {
		return true
	}
	for _, want := range types {
		if typ == want {
			return true
		}
	}
	return false
}

// Is returns true iff the node has one of the given types.
func (t *Tree) Is(id NodeID, types ...token.Type) bool {
	n := t.Node(id)
	if n == nil || len(types) == 0 {
		return false
	}
	return matches(n.Type, types)
}

// Parent returns the parent of a node, or None.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return None
}

// Children returns the children of a node.
func (t *Tree) Children(id NodeID) []NodeID {
	if n := t.Node(id); n != nil {
		return n.Children
	}
	return nil
}

// ChildIndex returns the position of a node among its siblings.
func (t *Tree) ChildIndex(id NodeID) int {
	if n := t.Node(id); n != nil {
		return n.ChildIndex
	}
	return -1
}

func (t *Tree) sibling(id NodeID, delta int) NodeID {
	n := t.Node(id)
	if n == nil || n.Parent == None {
		return None
	}
	siblings := t.nodes[n.Parent].Children
	i := n.ChildIndex + delta
	if i < 0 || i >= len(siblings) {
		return None
	}
	return siblings[i]
}

// NextSibling returns the sibling after a node, or None.
func (t *Tree) NextSibling(id NodeID) NodeID {
	return t.sibling(id, 1)
}

// PreviousSibling returns the sibling before a node, or None.
func (t *Tree) PreviousSibling(id NodeID) NodeID {
	return t.sibling(id, -1)
}

// NextAstNode returns the next sibling of the node, or else the next
// sibling of its nearest ancestor that has one.
func (t *Tree) NextAstNode(id NodeID) NodeID {
	for id != None {
		if next := t.NextSibling(id); next != None {
			return next
		}
		id = t.Parent(id)
	}
	return None
}

// FirstChild returns the first child with one of the given types, or the
// first child if no types are given.
func (t *Tree) FirstChild(id NodeID, types ...token.Type) NodeID {
	for _, child := range t.Children(id) {
		if matches(t.nodes[child].Type, types) {
			return child
		}
	}
	return None
}

// LastChild returns the last child with one of the given types, or the last
// child if no types are given.
func (t *Tree) LastChild(id NodeID, types ...token.Type) NodeID {
	children := t.Children(id)
	for i := len(children) - 1; i >= 0; i-- {
		if matches(t.nodes[children[i]].Type, types) {
			return children[i]
		}
	}
	return None
}

// ChildrenOf returns the children with one of the given types.
func (t *Tree) ChildrenOf(id NodeID, types ...token.Type) []NodeID {
	var out []NodeID
	for _, child := range t.Children(id) {
		if matches(t.nodes[child].Type, types) {
			out = append(out, child)
		}
	}
	return out
}

// Descendants returns, in preorder, the descendants of a node that have one
// of the given types. The node itself is not included.
func (t *Tree) Descendants(id NodeID, types ...token.Type) []NodeID {
	var out []NodeID
	var visit func(NodeID)
	visit = func(id NodeID) {
		for _, child := range t.nodes[id].Children {
			if matches(t.nodes[child].Type, types) {
				out = append(out, child)
			}
			visit(child)
		}
	}
	if t.Node(id) != nil {
		visit(id)
	}
	return out
}

// FirstDescendant returns the first descendant, in preorder, with one of the
// given types.
func (t *Tree) FirstDescendant(id NodeID, types ...token.Type) NodeID {
	for _, child := range t.Children(id) {
		if matches(t.nodes[child].Type, types) {
			return child
		}
		if found := t.FirstDescendant(child, types...); found != None {
			return found
		}
	}
	return None
}

// HasAncestor returns true iff some proper ancestor of the node has one of
// the given types.
func (t *Tree) HasAncestor(id NodeID, types ...token.Type) bool {
	for p := t.Parent(id); p != None; p = t.Parent(p) {
		if t.Is(p, types...) {
			return true
		}
	}
	return false
}

// Token returns the token of a node, or nil.
func (t *Tree) Token(id NodeID) *token.Token {
	if n := t.Node(id); n != nil {
		return n.Token
	}
	return nil
}

// TokenValue returns the value of the node's token, or "".
func (t *Tree) TokenValue(id NodeID) string {
	if tok := t.Token(id); tok != nil {
		return tok.Value
	}
	return ""
}

// TokenOriginalValue returns the original value of the node's token, or "".
func (t *Tree) TokenOriginalValue(id NodeID) string {
	if tok := t.Token(id); tok != nil {
		return tok.OriginalValue
	}
	return ""
}

// TokenLine returns the line of the node's token, or 0.
func (t *Tree) TokenLine(id NodeID) int {
	if tok := t.Token(id); tok != nil {
		return tok.Line
	}
	return 0
}
