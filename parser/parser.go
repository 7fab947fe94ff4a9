// Package parser runs compiled grammars over text or tokens and builds
// syntax trees from the result.
package parser

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chronos-tachyon/go-pegtree/ast"
	"github.com/chronos-tachyon/go-pegtree/grammar"
	"github.com/chronos-tachyon/go-pegtree/lexer"
	"github.com/chronos-tachyon/go-pegtree/metrics"
	"github.com/chronos-tachyon/go-pegtree/pegvm"
	"github.com/chronos-tachyon/go-pegtree/token"
)

// ErrTokensNeedLexerful is returned when tokens are given to a grammar that
// matches characters.
var ErrTokensNeedLexerful = errors.New("grammar matches characters, not tokens")

// cancelCheckInterval is how many VM steps run between checks of the
// context.
const cancelCheckInterval = 4096

// Parser parses input with one grammar. It is safe for concurrent use as
// long as its lexers come from a Pool.
type Parser struct {
	g       *grammar.Grammar
	log     logrus.FieldLogger
	metrics metrics.Metrics
	pool    *lexer.Pool
	source  string
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger for per-parse debug messages.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Parser) { p.log = log }
}

// WithMetrics sets where timings and counts are recorded.
func WithMetrics(m metrics.Metrics) Option {
	return func(p *Parser) { p.metrics = m }
}

// WithLexerPool sets the lexers used to tokenize text for lexerful
// grammars.
func WithLexerPool(pool *lexer.Pool) Option {
	return func(p *Parser) { p.pool = pool }
}

// WithLexer is shorthand for WithLexerPool with a pool of one lexer.
func WithLexer(opts ...lexer.Option) Option {
	return WithLexerPool(lexer.NewPool(1, opts...))
}

// WithSource sets the source name used by Parse and ParseTokens.
func WithSource(name string) Option {
	return func(p *Parser) { p.source = name }
}

// New returns a Parser for g.
func New(g *grammar.Grammar, opts ...Option) *Parser {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	p := &Parser{
		g:       g,
		log:     discard,
		metrics: metrics.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Grammar returns the parser's grammar.
func (p *Parser) Grammar() *grammar.Grammar {
	return p.g
}

// Parse parses text.
func (p *Parser) Parse(text string) (*ast.Tree, error) {
	return p.ParseContext(context.Background(), p.source, text)
}

// ParseContext parses text, recording name as its source. Lexerful
// grammars tokenize it first with a lexer from the pool. The parse stops
// early with ctx.Err() if ctx is done.
func (p *Parser) ParseContext(ctx context.Context, name, text string) (*ast.Tree, error) {
	if p.g.Lexerful() {
		tokens, err := p.lex(ctx, name, text)
		if err != nil {
			p.metrics.Counter(metrics.FilesFailed).Incr()
			return nil, err
		}
		return p.ParseTokensContext(ctx, name, tokens)
	}

	m := p.g.Program().ExecString(text)
	if err := p.run(ctx, name, m); err != nil {
		return nil, err
	}
	if m.R != pegvm.SuccessState {
		p.metrics.Counter(metrics.FilesFailed).Incr()
		return nil, textError(name, text, failureIndex(m), m.Expected())
	}
	return p.build(m, ast.Input{Name: name, Text: text}), nil
}

// ParseTokens parses tokens with a lexerful grammar.
func (p *Parser) ParseTokens(tokens []*token.Token) (*ast.Tree, error) {
	return p.ParseTokensContext(context.Background(), p.source, tokens)
}

// ParseTokensContext is like ParseTokens but records name as the source and
// stops early if ctx is done.
func (p *Parser) ParseTokensContext(ctx context.Context, name string, tokens []*token.Token) (*ast.Tree, error) {
	if !p.g.Lexerful() {
		return nil, ErrTokensNeedLexerful
	}
	if len(tokens) == 0 {
		p.metrics.Counter(metrics.FilesFailed).Incr()
		return nil, &RecognitionError{
			Err:     ErrNoTokens,
			Source:  name,
			Line:    1,
			Message: "empty token stream",
		}
	}

	m := p.g.Program().ExecTokens(tokens)
	if err := p.run(ctx, name, m); err != nil {
		return nil, err
	}
	if m.R != pegvm.SuccessState {
		p.metrics.Counter(metrics.FilesFailed).Incr()
		return nil, tokenError(name, tokens, failureIndex(m), m.Expected())
	}
	return p.build(m, ast.Input{Name: name, Tokens: tokens}), nil
}

// ParseReader reads all of rc, closes it, and parses the contents. A
// failure to close is reported as a *CloseError, and only if the parse
// itself succeeded.
func (p *Parser) ParseReader(ctx context.Context, name string, rc io.ReadCloser) (*ast.Tree, error) {
	needClose := true
	defer func() {
		if needClose {
			_ = rc.Close()
		}
	}()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	tree, err := p.ParseContext(ctx, name, string(raw))

	needClose = false
	if closeErr := rc.Close(); closeErr != nil && err == nil {
		return nil, &CloseError{Source: name, Err: closeErr}
	}
	return tree, err
}

// ParseFile parses the file at path.
func (p *Parser) ParseFile(path string) (*ast.Tree, error) {
	return p.ParseFileContext(context.Background(), path)
}

// ParseFileContext is like ParseFile but stops early if ctx is done.
func (p *Parser) ParseFileContext(ctx context.Context, path string) (*ast.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return p.ParseReader(ctx, path, f)
}

func (p *Parser) lex(ctx context.Context, name, text string) ([]*token.Token, error) {
	if p.pool == nil {
		return nil, ErrNoLexer
	}
	lx, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.pool.Release(lx)

	start := time.Now()
	tokens, err := lx.LexSource(name, text)
	p.metrics.Histogram(metrics.Lex).Update(time.Since(start).Nanoseconds())
	if err != nil {
		p.log.WithField("source", name).WithError(err).Debug("lex failed")
		return nil, err
	}
	p.metrics.Histogram(metrics.LexTokens).Update(int64(len(tokens)))
	return tokens, nil
}

func (p *Parser) run(ctx context.Context, name string, m *pegvm.Machine) error {
	start := time.Now()
	var err error
	for m.R == pegvm.RunningState {
		if m.Steps%cancelCheckInterval == 0 {
			if err = ctx.Err(); err != nil {
				break
			}
		}
		if err = m.Step(); err != nil {
			break
		}
	}
	d := time.Since(start)

	p.metrics.Histogram(metrics.Parse).Update(d.Nanoseconds())
	p.metrics.Histogram(metrics.ParseSteps).Update(int64(m.Steps))
	p.metrics.Histogram(metrics.ParseBacktrack).Update(int64(m.Backtracks))

	log := p.log.WithFields(logrus.Fields{
		"source":     name,
		"duration":   d,
		"steps":      m.Steps,
		"backtracks": m.Backtracks,
	})
	switch {
	case err != nil:
		p.metrics.Counter(metrics.FilesFailed).Incr()
		log.WithError(err).Debug("parse aborted")
	case m.R == pegvm.SuccessState:
		log.Debug("parse succeeded")
	default:
		log.WithField("furthest", m.FurthestFailure()).Debug("parse failed")
	}
	return err
}

func (p *Parser) build(m *pegvm.Machine, in ast.Input) *ast.Tree {
	start := time.Now()
	tree := ast.Build(m.Root(), in)
	p.metrics.Histogram(metrics.BuildTree).Update(time.Since(start).Nanoseconds())
	p.metrics.Counter(metrics.FilesParsed).Incr()
	return tree
}

func failureIndex(m *pegvm.Machine) int {
	if i := m.FurthestFailure(); i >= 0 {
		return i
	}
	return m.Index()
}
