package pegvm

import (
	"bytes"
	"fmt"
)

// MatcherKind says what produced a ParseNode.
type MatcherKind uint8

const (
	// RuleMatcher nodes come from a grammar rule.
	RuleMatcher MatcherKind = iota

	// TokenMatcher nodes come from an expression that declares its match
	// to be a single token.
	TokenMatcher

	// TriviaMatcher nodes come from an expression that declares its match
	// to be a comment or skipped text.
	TriviaMatcher

	// LeafMatcher nodes come from a leaf instruction.
	LeafMatcher
)

var matcherKindNames = [...]string{
	RuleMatcher:   "rule",
	TokenMatcher:  "token",
	TriviaMatcher: "trivia",
	LeafMatcher:   "leaf",
}

func (k MatcherKind) String() string {
	if int(k) < len(matcherKindNames) {
		return matcherKindNames[k]
	}
	return fmt.Sprintf("MatcherKind(%d)", uint8(k))
}

// Matcher identifies the producer of a ParseNode. Matchers are compared by
// identity.
type Matcher struct {
	Kind MatcherKind
	Name string

	// Memoize enables caching of this matcher's nodes by input index.
	Memoize bool

	// Payload is the grammar-level object behind the matcher, for use by
	// tree builders. The VM never looks at it.
	Payload any
}

func (m *Matcher) String() string {
	return m.Kind.String() + " " + m.Name
}

// ParseNode is one node of the trace produced by a successful run. Start and
// End are input indices: byte offsets for strings, token indices for token
// slices.
type ParseNode struct {
	Matcher  *Matcher
	Start    int
	End      int
	Children []*ParseNode
}

// IsLeaf returns true iff the node was produced by a leaf instruction.
func (n *ParseNode) IsLeaf() bool {
	return n.Matcher.Kind == LeafMatcher
}

// String renders the node and its descendants as an s-expression of matcher
// names and spans, for debugging and tests.
func (n *ParseNode) String() string {
	var buf bytes.Buffer
	n.writeTo(&buf)
	return buf.String()
}

func (n *ParseNode) writeTo(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "(%s %d:%d", n.Matcher.Name, n.Start, n.End)
	for _, child := range n.Children {
		buf.WriteByte(' ')
		child.writeTo(buf)
	}
	buf.WriteByte(')')
}
