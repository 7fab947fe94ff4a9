package lexer

import (
	"github.com/chronos-tachyon/go-pegtree/token"
)

// Hook rewrites the token stream produced by a Lexer, one position at a
// time. It is how preprocessors plug into lexing.
type Hook interface {
	// Rewrite is offered tokens[i] with the whole stream as context. The
	// zero Action leaves the token alone.
	Rewrite(tokens []*token.Token, i int) Action
}

// HookFunc adapts a function to a Hook.
type HookFunc func(tokens []*token.Token, i int) Action

func (f HookFunc) Rewrite(tokens []*token.Token, i int) Action { return f(tokens, i) }

// Action says how a Hook rewrites the stream at one position.
//
// The Consumed tokens starting at the current one are removed; their trivia
// and Trivia are attached, in that order, to the next token emitted.
// Tokens are emitted in place of the removed ones. If Consumed is 0, the
// current token is emitted after Tokens. The final EOF token is never
// removed.
type Action struct {
	Consumed int
	Trivia   []*token.Trivia
	Tokens   []*token.Token
}

func (a Action) isZero() bool {
	return a.Consumed == 0 && len(a.Trivia) == 0 && len(a.Tokens) == 0
}

type rewriter struct {
	out     []*token.Token
	pending []*token.Trivia
}

func (w *rewriter) emit(tok *token.Token) {
	if len(w.pending) != 0 {
		tok = tok.Clone()
		tok.Trivia = append(w.pending, tok.Trivia...)
		w.pending = nil
	}
	w.out = append(w.out, tok)
}

// rewrite offers each token to the hooks in order. The first hook that
// returns a non-zero Action decides what happens at that position.
func rewrite(hooks []Hook, tokens []*token.Token) []*token.Token {
	w := &rewriter{out: make([]*token.Token, 0, len(tokens))}
	limit := len(tokens)
	if limit != 0 && tokens[limit-1].Type == token.EOF {
		limit--
	}

	i := 0
	for i < len(tokens) {
		var act Action
		for _, h := range hooks {
			if act = h.Rewrite(tokens, i); !act.isZero() {
				break
			}
		}

		consumed := min(max(act.Consumed, 0), limit-i)
		for _, tok := range tokens[i : i+consumed] {
			w.pending = append(w.pending, tok.Trivia...)
		}
		w.pending = append(w.pending, act.Trivia...)
		for _, tok := range act.Tokens {
			tok.Generated = true
			w.emit(tok)
		}
		if consumed == 0 {
			w.emit(tokens[i])
			i++
		} else {
			i += consumed
		}
	}

	if len(w.pending) != 0 && len(w.out) != 0 {
		last := w.out[len(w.out)-1].Clone()
		last.Trivia = append(last.Trivia, w.pending...)
		w.out[len(w.out)-1] = last
	}
	return w.out
}
