package lexer

import (
	"unicode/utf8"

	"github.com/chronos-tachyon/go-pegtree/token"
)

// Reader is a cursor over the source text that tracks line and column.
// Channels inspect Rest and consume text with Token or Skip.
type Reader struct {
	src    string
	name   string
	pos    int
	line   int
	column int
}

func (r *Reader) reset(name, src string) {
	*r = Reader{src: src, name: name, line: 1}
}

// Pos returns the byte offset of the cursor.
func (r *Reader) Pos() int { return r.pos }

// Line returns the 1-based line of the cursor.
func (r *Reader) Line() int { return r.line }

// Column returns the 0-based rune column of the cursor.
func (r *Reader) Column() int { return r.column }

// EOF returns true iff no text remains.
func (r *Reader) EOF() bool { return r.pos >= len(r.src) }

// Rest returns the text that has not been consumed yet.
func (r *Reader) Rest() string { return r.src[r.pos:] }

// Peek returns the next rune and its size in bytes, or (utf8.RuneError, 0)
// at the end of the text.
func (r *Reader) Peek() (rune, int) {
	return utf8.DecodeRuneInString(r.src[r.pos:])
}

// Token consumes the next n bytes and returns them as a token of type typ.
func (r *Reader) Token(typ token.Type, n int) *token.Token {
	text := r.src[r.pos : r.pos+n]
	tok := &token.Token{
		Type:          typ,
		Value:         text,
		OriginalValue: text,
		Source:        r.name,
		Offset:        r.pos,
		Line:          r.line,
		Column:        r.column,
	}
	r.Skip(n)
	return tok
}

// Skip consumes the next n bytes.
func (r *Reader) Skip(n int) {
	for _, ch := range r.src[r.pos : r.pos+n] {
		if ch == '\n' {
			r.line++
			r.column = 0
		} else {
			r.column++
		}
	}
	r.pos += n
}

// Output collects the tokens and trivia produced by channels. Trivia added
// before a token is attached to it, in the order it was added.
type Output struct {
	tokens  []*token.Token
	pending []*token.Trivia
}

// AddTrivia buffers trivia for the next token.
func (o *Output) AddTrivia(tr *token.Trivia) {
	o.pending = append(o.pending, tr)
}

// AddToken appends a token, attaching any buffered trivia to it.
func (o *Output) AddToken(tok *token.Token) {
	if len(o.pending) != 0 {
		tok.Trivia = append(o.pending, tok.Trivia...)
		o.pending = nil
	}
	o.tokens = append(o.tokens, tok)
}

// Tokens returns the tokens added so far.
func (o *Output) Tokens() []*token.Token {
	return o.tokens
}

// Last returns the most recently added token, or nil.
func (o *Output) Last() *token.Token {
	if len(o.tokens) == 0 {
		return nil
	}
	return o.tokens[len(o.tokens)-1]
}

func (o *Output) reset() {
	o.tokens = nil
	o.pending = nil
}
