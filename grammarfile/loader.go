package grammarfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/chronos-tachyon/go-pegtree/grammar"
	"github.com/chronos-tachyon/go-pegtree/lexer"
	"github.com/chronos-tachyon/go-pegtree/metrics"
	"github.com/chronos-tachyon/go-pegtree/parser"
)

// Definition is a compiled grammar file. It is immutable and safe to share.
type Definition struct {
	Name     string
	Manifest *Manifest
	Grammar  *grammar.Grammar

	lexerOpts []lexer.Option
}

// HasLexer returns true iff the definition configures a lexer.
func (d *Definition) HasLexer() bool {
	return d.lexerOpts != nil
}

// LexerOptions returns the options that configure the definition's lexer,
// or nil if it has none.
func (d *Definition) LexerOptions() []lexer.Option {
	return d.lexerOpts
}

// NewLexerPool returns a pool of size lexers, or nil if the definition has
// no lexer.
func (d *Definition) NewLexerPool(size int) *lexer.Pool {
	if d.lexerOpts == nil {
		return nil
	}
	opts := append([]lexer.Option{lexer.WithSource(d.Name)}, d.lexerOpts...)
	return lexer.NewPool(size, opts...)
}

// NewParser returns a parser for the grammar. If the definition has a
// lexer, the parser gets a pool of that many lexers, which bounds how many
// parses can tokenize at once.
func (d *Definition) NewParser(lexers int, opts ...parser.Option) *parser.Parser {
	if pool := d.NewLexerPool(lexers); pool != nil {
		opts = append([]parser.Option{parser.WithLexerPool(pool)}, opts...)
	}
	return parser.New(d.Grammar, opts...)
}

// Compile builds a definition from a manifest and its EBNF text. name is
// used in error positions.
func Compile(name string, m *Manifest, src []byte) (*Definition, error) {
	var b *grammar.Builder
	if m.Lexerful() {
		b = grammar.NewLexerful()
	} else {
		b = grammar.NewLexerless()
	}
	if err := compileEBNF(b, m, name, src); err != nil {
		return nil, err
	}
	g, err := b.Build()
	if err != nil {
		return nil, err
	}

	d := &Definition{Name: name, Manifest: m, Grammar: g}
	if m.Lexer != nil {
		if d.lexerOpts, err = m.Lexer.build(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// files holds the raw bytes behind a definition.
type files struct {
	manifestPath string
	grammarPath  string
	manifest     *Manifest
	manifestRaw  []byte
	grammarRaw   []byte
}

func readFiles(path string) (*files, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f := &files{manifestPath: path, manifest: m, manifestRaw: raw}
	if m.Grammar == "" {
		f.grammarPath = path
		f.grammarRaw = []byte(m.Source)
		return f, nil
	}
	f.grammarPath = m.Grammar
	if !filepath.IsAbs(f.grammarPath) {
		f.grammarPath = filepath.Join(filepath.Dir(path), f.grammarPath)
	}
	if f.grammarRaw, err = os.ReadFile(f.grammarPath); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *files) compile() (*Definition, error) {
	d, err := Compile(f.grammarPath, f.manifest, f.grammarRaw)
	if err != nil {
		return nil, err
	}
	d.Name = f.manifestPath
	return d, nil
}

func (f *files) key() uint64 {
	h := xxhash.New()
	for _, b := range [][]byte{[]byte(f.manifestPath), f.manifestRaw, f.grammarRaw} {
		_, _ = h.Write(b)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Load reads and compiles the manifest at path and the grammar it names.
func Load(path string) (*Definition, error) {
	f, err := readFiles(path)
	if err != nil {
		return nil, err
	}
	return f.compile()
}

// Loader loads grammar files and keeps the most recently used compiled
// definitions. Files are reread on every Load; a definition is reused only
// if the manifest path and the contents of both files are unchanged.
type Loader struct {
	cache   *lru.Cache[uint64, *Definition]
	log     logrus.FieldLogger
	metrics metrics.Metrics
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger for cache and compile messages.
func WithLogger(log logrus.FieldLogger) LoaderOption {
	return func(l *Loader) { l.log = log }
}

// WithMetrics sets where cache hits, misses, and compile times are
// recorded.
func WithMetrics(m metrics.Metrics) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader returns a Loader that caches up to size definitions.
func NewLoader(size int, opts ...LoaderOption) (*Loader, error) {
	cache, err := lru.New[uint64, *Definition](size)
	if err != nil {
		return nil, err
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Loader{cache: cache, log: discard, metrics: metrics.NoOp()}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Load is like the package-level Load but consults the cache first.
func (l *Loader) Load(path string) (*Definition, error) {
	f, err := readFiles(path)
	if err != nil {
		return nil, err
	}

	key := f.key()
	log := l.log.WithFields(logrus.Fields{"manifest": path, "key": fmt.Sprintf("%016x", key)})
	if d, found := l.cache.Get(key); found {
		l.metrics.Counter(metrics.GrammarHit).Incr()
		log.Debug("grammar cache hit")
		return d, nil
	}
	l.metrics.Counter(metrics.GrammarMiss).Incr()

	start := time.Now()
	d, err := f.compile()
	elapsed := time.Since(start)
	l.metrics.Histogram(metrics.GrammarCompile).Update(elapsed.Nanoseconds())
	if err != nil {
		log.WithError(err).Debug("grammar compile failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"rules":    len(d.Grammar.Rules()),
		"duration": elapsed,
	}).Debug("grammar compiled")

	l.cache.Add(key, d)
	return d, nil
}

// Len returns the number of cached definitions.
func (l *Loader) Len() int {
	return l.cache.Len()
}

// Purge empties the cache.
func (l *Loader) Purge() {
	l.cache.Purge()
}
