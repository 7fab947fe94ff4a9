package token

import (
	"fmt"
	"strings"
)

// Token is a single lexical unit.
//
// Line is 1-based. Column is 0-based and counts runes from the start of
// the line.
type Token struct {
	Type  Type
	Value string

	// OriginalValue is the text as it appeared in the source. It differs
	// from Value only when the lexer normalizes case.
	OriginalValue string

	Source string
	Offset int
	Line   int
	Column int

	// Trivia holds the comments and skipped text found between the
	// previous token and this one, in source order.
	Trivia []*Trivia

	// Generated is true for tokens that do not appear in the source, such
	// as tokens injected by a Hook.
	Generated bool

	// CopyBook is true for tokens that were relocated from another source,
	// e.g. by an include directive. CopyBookSource and CopyBookLine give
	// the position in that other source.
	CopyBook       bool
	CopyBookSource string
	CopyBookLine   int
}

// String returns a debugging representation of the token.
func (t *Token) String() string {
	return fmt.Sprintf("%s %q @ %d:%d", t.Type.Name(), t.Value, t.Line, t.Column)
}

// Is returns true iff the token's type is one of types.
func (t *Token) Is(types ...Type) bool {
	for _, typ := range types {
		if t.Type == typ {
			return true
		}
	}
	return false
}

// HasTrivia returns true iff any trivia is attached to the token.
func (t *Token) HasTrivia() bool {
	return len(t.Trivia) != 0
}

// Comments returns the comment trivia attached to the token.
func (t *Token) Comments() []*Trivia {
	var out []*Trivia
	for _, tr := range t.Trivia {
		if tr.Kind == CommentTrivia {
			out = append(out, tr)
		}
	}
	return out
}

// Clone returns a shallow copy of the token with its own trivia slice.
func (t *Token) Clone() *Token {
	dup := *t
	dup.Trivia = append([]*Trivia(nil), t.Trivia...)
	return &dup
}

// EndLine returns the line on which the token's original text ends.
func (t *Token) EndLine() int {
	return t.Line + strings.Count(t.OriginalValue, "\n")
}

// Reconstruct concatenates the trivia and original values of tokens, in order.
// Generated tokens contribute their trivia but not their text. For tokens
// produced by a lexer without hooks, the result is the original source.
func Reconstruct(tokens []*Token) string {
	var buf strings.Builder
	for _, t := range tokens {
		for _, tr := range t.Trivia {
			buf.WriteString(tr.Text())
		}
		if !t.Generated {
			buf.WriteString(t.OriginalValue)
		}
	}
	return buf.String()
}
