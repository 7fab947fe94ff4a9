package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chronos-tachyon/go-pegtree/token"
)

var (
	// ErrSyntax is wrapped by a *RecognitionError when the input does not
	// match the grammar.
	ErrSyntax = errors.New("syntax error")

	// ErrNoTokens is wrapped by a *RecognitionError when a token-based
	// parse is given no tokens at all.
	ErrNoTokens = errors.New("no tokens to parse")

	// ErrNoLexer is returned when a lexerful grammar is asked to parse text
	// but the Parser was built without a lexer.
	ErrNoLexer = errors.New("lexerful grammar needs a lexer to parse text")
)

// RecognitionError reports input that the grammar does not accept.
//
// Offset is a byte offset into the text, or an index into the tokens for
// lexerful grammars. Line is 1-based; Column is 0-based.
type RecognitionError struct {
	Err      error
	Source   string
	Offset   int
	Line     int
	Column   int
	Message  string
	Expected []string

	// Context shows where the error is: the failing source line with a
	// caret under the column, or for tokens the surrounding token values.
	Context string
}

func (e *RecognitionError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %v: %s", src, e.Line, e.Column, e.Err, e.Message)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Format returns the error followed by its context, as shown to users.
func (e *RecognitionError) Format() string {
	if e.Context == "" {
		return e.Error()
	}
	return e.Error() + "\n\n" + e.Context
}

// CloseError reports a failure to close the input after a successful parse.
type CloseError struct {
	Source string
	Err    error
}

func (e *CloseError) Error() string {
	return fmt.Sprintf("close %s: %v", e.Source, e.Err)
}

func (e *CloseError) Unwrap() error {
	return e.Err
}

func expectedMessage(found string, expected []string) string {
	var sb strings.Builder
	sb.WriteString("unexpected ")
	sb.WriteString(found)
	switch len(expected) {
	case 0:
	case 1:
		sb.WriteString("; expected ")
		sb.WriteString(expected[0])
	default:
		sb.WriteString("; expected one of ")
		sb.WriteString(strings.Join(expected, ", "))
	}
	return sb.String()
}

func textError(name, text string, offset int, expected []string) *RecognitionError {
	lines := token.NewLines(text)
	line, column := lines.Position(offset)

	found := "end of input"
	if offset < len(text) {
		r, _ := utf8.DecodeRuneInString(text[offset:])
		found = strconv.QuoteRune(r)
	}

	src := lines.Line(line)
	prefix := strconv.Itoa(line) + ": "
	var caret strings.Builder
	caret.WriteString(strings.Repeat(" ", len(prefix)))
	col := 0
	for _, r := range src {
		if col >= column {
			break
		}
		if r == '\t' {
			caret.WriteByte('\t')
		} else {
			caret.WriteByte(' ')
		}
		col++
	}
	caret.WriteByte('^')

	return &RecognitionError{
		Err:      ErrSyntax,
		Source:   name,
		Offset:   offset,
		Line:     line,
		Column:   column,
		Message:  expectedMessage(found, expected),
		Expected: expected,
		Context:  prefix + src + "\n" + caret.String(),
	}
}

const tokenWindow = 3

func tokenError(name string, tokens []*token.Token, index int, expected []string) *RecognitionError {
	at := index
	if at >= len(tokens) {
		at = len(tokens) - 1
	}
	tok := tokens[at]

	found := "end of input"
	if index < len(tokens) && tok.Type != token.EOF {
		found = strconv.Quote(tok.Value)
	}

	lo := max(at-tokenWindow, 0)
	hi := min(at+tokenWindow+1, len(tokens))
	parts := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		v := tokens[i].Value
		if i == at {
			v = "-->" + v + "<--"
		}
		parts = append(parts, v)
	}

	if name == "" {
		name = tok.Source
	}
	return &RecognitionError{
		Err:      ErrSyntax,
		Source:   name,
		Offset:   index,
		Line:     tok.Line,
		Column:   tok.Column,
		Message:  expectedMessage(found, expected),
		Expected: expected,
		Context:  strings.Join(parts, " "),
	}
}
