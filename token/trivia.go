package token

import (
	"fmt"
	"strings"
)

// TriviaKind says what a Trivia holds.
type TriviaKind uint8

const (
	CommentTrivia TriviaKind = iota
	PreprocessorTrivia
	SkippedTextTrivia
)

var triviaKindNames = [...]string{
	CommentTrivia:      "comment",
	PreprocessorTrivia: "preprocessor",
	SkippedTextTrivia:  "skipped",
}

func (k TriviaKind) String() string {
	if int(k) < len(triviaKindNames) {
		return triviaKindNames[k]
	}
	return fmt.Sprintf("TriviaKind(%d)", uint8(k))
}

// Trivia is non-grammatical material carried alongside tokens.
type Trivia struct {
	Kind   TriviaKind
	Tokens []*Token

	// Directive is the structured form of a preprocessor directive, if the
	// preprocessor produced one. It is nil for other kinds.
	Directive fmt.Stringer
}

// NewComment returns comment trivia holding one token.
func NewComment(t *Token) *Trivia {
	return &Trivia{Kind: CommentTrivia, Tokens: []*Token{t}}
}

// NewSkippedText returns skipped-text trivia holding the given tokens.
func NewSkippedText(ts ...*Token) *Trivia {
	return &Trivia{Kind: SkippedTextTrivia, Tokens: ts}
}

// NewPreprocessor returns preprocessor trivia with an optional directive.
func NewPreprocessor(directive fmt.Stringer, ts ...*Token) *Trivia {
	return &Trivia{Kind: PreprocessorTrivia, Tokens: ts, Directive: directive}
}

// Token returns the first token of the trivia.
func (tr *Trivia) Token() *Token {
	if len(tr.Tokens) == 0 {
		return nil
	}
	return tr.Tokens[0]
}

// Text returns the original text of the trivia.
func (tr *Trivia) Text() string {
	if len(tr.Tokens) == 1 {
		return tr.Tokens[0].OriginalValue
	}
	var buf strings.Builder
	for _, t := range tr.Tokens {
		buf.WriteString(t.OriginalValue)
	}
	return buf.String()
}

func (tr *Trivia) String() string {
	return fmt.Sprintf("%s %q", tr.Kind, tr.Text())
}
