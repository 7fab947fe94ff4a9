// Package lexer splits source text into tokens using an ordered list of
// channels, then lets hooks rewrite the token stream.
package lexer

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/chronos-tachyon/go-pegtree/token"
)

var (
	// ErrNoChannel is wrapped by a *LexError when no channel accepts the
	// text at some position.
	ErrNoChannel = errors.New("no channel can consume the input")

	// ErrNoProgress is wrapped by a *LexError when a channel claims to
	// have consumed text but did not move the cursor.
	ErrNoProgress = errors.New("channel consumed nothing")
)

// LexError reports where lexing stopped.
type LexError struct {
	Err    error
	Source string
	Offset int
	Line   int
	Column int
	Char   rune
}

func (e *LexError) Error() string {
	src := e.Source
	if src == "" {
		src = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %v at %q", src, e.Line, e.Column, e.Err, e.Char)
}

func (e *LexError) Unwrap() error {
	return e.Err
}

// Lexer turns text into tokens. A Lexer may be reused for many inputs, but
// not concurrently; use a Pool to share lexers between goroutines.
type Lexer struct {
	channels        []Channel
	failIfNoChannel bool
	hooks           []Hook
	source          string

	r   Reader
	out Output
}

// Option configures a Lexer.
type Option func(*Lexer)

// WithChannels appends channels. The first channel that consumes text at a
// position wins.
func WithChannels(channels ...Channel) Option {
	return func(l *Lexer) { l.channels = append(l.channels, channels...) }
}

// WithFailIfNoChannel makes Lex fail, instead of emitting an UnknownChar
// token, when no channel consumes the text at some position.
func WithFailIfNoChannel(fail bool) Option {
	return func(l *Lexer) { l.failIfNoChannel = fail }
}

// WithHook appends a hook that rewrites the token stream after lexing.
func WithHook(h Hook) Option {
	return func(l *Lexer) { l.hooks = append(l.hooks, h) }
}

// WithSource sets the source name recorded in tokens by Lex.
func WithSource(name string) Option {
	return func(l *Lexer) { l.source = name }
}

// New returns a Lexer configured by opts.
func New(opts ...Option) *Lexer {
	l := &Lexer{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lex tokenizes src. The result always ends with an EOF token, which
// carries any trivia found after the last real token.
func (l *Lexer) Lex(src string) ([]*token.Token, error) {
	return l.LexSource(l.source, src)
}

// LexSource is like Lex but records name as the tokens' source.
func (l *Lexer) LexSource(name, src string) ([]*token.Token, error) {
	r, out := &l.r, &l.out
	r.reset(name, src)
	out.reset()
	defer out.reset()

	for !r.EOF() {
		if err := l.step(r, out); err != nil {
			return nil, err
		}
	}
	out.AddToken(&token.Token{
		Type:   token.EOF,
		Value:  "EOF",
		Source: name,
		Offset: r.Pos(),
		Line:   r.Line(),
		Column: r.Column(),
	})

	tokens := out.Tokens()
	if len(l.hooks) != 0 {
		tokens = rewrite(l.hooks, tokens)
	}
	return tokens, nil
}

func (l *Lexer) step(r *Reader, out *Output) error {
	start := r.Pos()
	for _, ch := range l.channels {
		if ch.Consume(r, out) {
			if r.Pos() == start {
				return l.lexError(ErrNoProgress, r)
			}
			return nil
		}
	}
	if l.failIfNoChannel {
		return l.lexError(ErrNoChannel, r)
	}
	_, size := r.Peek()
	out.AddToken(r.Token(token.UnknownChar, size))
	return nil
}

func (l *Lexer) lexError(err error, r *Reader) error {
	c, _ := utf8.DecodeRuneInString(r.Rest())
	return &LexError{
		Err:    err,
		Source: r.name,
		Offset: r.Pos(),
		Line:   r.Line(),
		Column: r.Column(),
		Char:   c,
	}
}
