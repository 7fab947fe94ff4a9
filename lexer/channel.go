package lexer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chronos-tachyon/go-pegtree/charclass"
	"github.com/chronos-tachyon/go-pegtree/pegvm"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Token types produced by the built-in channels.
var (
	WhitespaceType token.Type = token.Named("WHITESPACE")
	PunctuatorType token.Type = token.Named("PUNCTUATOR")
)

// Channel recognizes one kind of lexeme. Consume inspects the reader and,
// if the text at the cursor belongs to the channel, consumes it, adds
// tokens or trivia to out, and returns true. A channel that returns true
// must consume at least one byte.
type Channel interface {
	Consume(r *Reader, out *Output) bool
}

// ChannelFunc adapts a function to a Channel.
type ChannelFunc func(r *Reader, out *Output) bool

func (f ChannelFunc) Consume(r *Reader, out *Output) bool { return f(r, out) }

// Must panics if err is non-nil, and returns ch otherwise.
func Must(ch Channel, err error) Channel {
	if err != nil {
		panic(err)
	}
	return ch
}

func compile(src string) (*pegvm.Pattern, error) {
	p, err := pegvm.CompilePattern(src)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", src, err)
	}
	return p, nil
}

type regexpChannel struct {
	typ token.Type
	p   *pegvm.Pattern
}

// Regexp returns a channel that emits a token of type typ for each
// non-empty match of pattern.
func Regexp(typ token.Type, pattern string) (Channel, error) {
	p, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	return &regexpChannel{typ: typ, p: p}, nil
}

func (ch *regexpChannel) Consume(r *Reader, out *Output) bool {
	n := ch.p.MatchLen(r.Rest())
	if n <= 0 {
		return false
	}
	out.AddToken(r.Token(ch.typ, n))
	return true
}

type triviaChannel struct {
	kind token.TriviaKind
	typ  token.Type
	p    *pegvm.Pattern
}

// Comment returns a channel that turns matches of pattern into comment
// trivia.
func Comment(pattern string) (Channel, error) {
	p, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	return &triviaChannel{kind: token.CommentTrivia, typ: token.Comment, p: p}, nil
}

// Whitespace returns a channel that turns matches of pattern into
// skipped-text trivia. The text is kept so that the source can be
// reconstructed from the tokens.
func Whitespace(pattern string) (Channel, error) {
	p, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	return &triviaChannel{kind: token.SkippedTextTrivia, typ: WhitespaceType, p: p}, nil
}

func (ch *triviaChannel) Consume(r *Reader, out *Output) bool {
	n := ch.p.MatchLen(r.Rest())
	if n <= 0 {
		return false
	}
	tok := r.Token(ch.typ, n)
	out.AddTrivia(&token.Trivia{Kind: ch.kind, Tokens: []*token.Token{tok}})
	return true
}

type keywordChannel struct {
	p             *pegvm.Pattern
	ident         token.Type
	caseSensitive bool
	keywords      map[string]token.Type
}

// Keywords returns a channel for identifiers and keywords. Each match of
// pattern is looked up among keywords by name; if found the token takes
// that keyword's type, otherwise ident. Unless caseSensitive, lookup
// ignores case and the token's Value is upper-cased, while OriginalValue
// keeps the source text.
func Keywords(pattern string, ident token.Type, caseSensitive bool, keywords ...token.Type) (Channel, error) {
	p, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	ch := &keywordChannel{
		p:             p,
		ident:         ident,
		caseSensitive: caseSensitive,
		keywords:      make(map[string]token.Type, len(keywords)),
	}
	for _, kw := range keywords {
		ch.keywords[ch.normalize(kw.Name())] = kw
	}
	return ch, nil
}

func (ch *keywordChannel) normalize(s string) string {
	if ch.caseSensitive {
		return s
	}
	return strings.ToUpper(s)
}

func (ch *keywordChannel) Consume(r *Reader, out *Output) bool {
	n := ch.p.MatchLen(r.Rest())
	if n <= 0 {
		return false
	}
	tok := r.Token(ch.ident, n)
	tok.Value = ch.normalize(tok.OriginalValue)
	if kw, found := ch.keywords[tok.Value]; found {
		tok.Type = kw
	}
	out.AddToken(tok)
	return true
}

type punctuatorChannel struct {
	values []string
}

// Punctuators returns a channel that emits a PunctuatorType token for the
// longest of values found at the cursor.
func Punctuators(values ...string) Channel {
	sorted := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			sorted = append(sorted, v)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return &punctuatorChannel{values: sorted}
}

func (ch *punctuatorChannel) Consume(r *Reader, out *Output) bool {
	rest := r.Rest()
	for _, v := range ch.values {
		if strings.HasPrefix(rest, v) {
			out.AddToken(r.Token(PunctuatorType, len(v)))
			return true
		}
	}
	return false
}

type classChannel struct {
	typ token.Type
	m   charclass.Matcher
}

// Class returns a channel that emits a token of type typ for each maximal
// run of runes in m.
func Class(typ token.Type, m charclass.Matcher) Channel {
	return &classChannel{typ: typ, m: m.Optimize()}
}

func (ch *classChannel) Consume(r *Reader, out *Output) bool {
	rest := r.Rest()
	n := len(rest)
	for i, c := range rest {
		if !ch.m.Match(c) {
			n = i
			break
		}
	}
	if n == 0 {
		return false
	}
	out.AddToken(r.Token(ch.typ, n))
	return true
}

// UnknownChar returns a channel that emits any one rune as an UnknownChar
// token. Put it last.
func UnknownChar() Channel {
	return ChannelFunc(func(r *Reader, out *Output) bool {
		_, size := r.Peek()
		if size == 0 {
			return false
		}
		out.AddToken(r.Token(token.UnknownChar, size))
		return true
	})
}
