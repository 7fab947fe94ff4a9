package parser

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lithammer/dedent"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/chronos-tachyon/go-pegtree/grammar"
	"github.com/chronos-tachyon/go-pegtree/lexer"
	"github.com/chronos-tachyon/go-pegtree/metrics"
	"github.com/chronos-tachyon/go-pegtree/token"
)

var reNL = regexp.MustCompile(`(?m)^`)

func diff(l, r string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(l, r, false)
	pretty := dmp.DiffPrettyText(diffs)
	return reNL.ReplaceAllLiteralString(pretty, "\t")
}

// Paren <- "(" Expr ")" EOI
// Expr  <- Num ("+" Num)*
// Num   <- token(CONSTANT, [0-9]+)   (always skipped)
func parenGrammar() *grammar.Grammar {
	b := grammar.NewLexerless()
	b.Rule("Paren").Is("(", grammar.RuleKey("Expr"), ")", grammar.EndOfInput())
	b.Rule("Expr").Is(grammar.RuleKey("Num"), grammar.ZeroOrMore("+", grammar.RuleKey("Num")))
	b.Rule("Num").Is(grammar.Token(token.Constant, grammar.OneOrMore(grammar.Chars(`[0-9]`)))).Skip()
	b.SetRoot("Paren")
	return b.MustBuild()
}

// Lines <- (Num "\n")* EOI
func linesGrammar() *grammar.Grammar {
	b := grammar.NewLexerless()
	b.Rule("Lines").Is(grammar.ZeroOrMore(grammar.RuleKey("Num"), "\n"), grammar.EndOfInput())
	b.Rule("Num").Is(grammar.Token(token.Constant, grammar.OneOrMore(grammar.Chars(`[0-9]`)))).Skip()
	b.SetRoot("Lines")
	return b.MustBuild()
}

// Paren <- "(" Expr ")" EOI
// Expr  <- CONSTANT ("+" CONSTANT)*
func tokenParenGrammar() *grammar.Grammar {
	b := grammar.NewLexerful()
	b.Rule("Paren").Is(grammar.Value("("), grammar.RuleKey("Expr"), grammar.Value(")"), grammar.EndOfInput())
	b.Rule("Expr").Is(token.Constant, grammar.ZeroOrMore(grammar.Value("+"), token.Constant))
	b.SetRoot("Paren")
	return b.MustBuild()
}

func lexerOptions() []lexer.Option {
	return []lexer.Option{
		lexer.WithChannels(
			lexer.Must(lexer.Whitespace(`\s+`)),
			lexer.Must(lexer.Regexp(token.Constant, `[0-9]+`)),
			lexer.Punctuators("(", ")", "+"),
		),
		lexer.WithFailIfNoChannel(true),
	}
}

func TestParser_Parse(t *testing.T) {
	type testrow struct {
		Grammar  *grammar.Grammar
		Input    string
		Expected string
	}

	paren := New(parenGrammar(), WithSource("test.txt"))
	tokens := New(tokenParenGrammar(), WithSource("test.txt"), WithLexer(lexerOptions()...))

	data := []testrow{
		{
			Input: "(1+2+3)",
			Expected: `
			Paren
			  LITERAL "(" 1:0
			  Expr
			    CONSTANT "1" 1:1
			    LITERAL "+" 1:2
			    CONSTANT "2" 1:3
			    LITERAL "+" 1:4
			    CONSTANT "3" 1:5
			  LITERAL ")" 1:6
			`,
		},
		{
			Input: "(42)",
			Expected: `
			Paren
			  LITERAL "(" 1:0
			  Expr
			    CONSTANT "42" 1:1
			  LITERAL ")" 1:3
			`,
		},
	}

	for i, row := range data {
		tree, err := paren.Parse(row.Input)
		if err != nil {
			t.Errorf("%s/%03d: %q: unexpected error: %v", t.Name(), i, row.Input, err)
			continue
		}
		expected := dedent.Dedent(row.Expected)[1:]
		if actual := tree.String(); actual != expected {
			t.Errorf("%s/%03d: %q: wrong tree:\n%s", t.Name(), i, row.Input, diff(expected, actual))
		}
		if tree.Source != "test.txt" {
			t.Errorf("%s/%03d: expected source %q, got %q", t.Name(), i, "test.txt", tree.Source)
		}
	}

	tree, err := tokens.Parse("( 1 + 2 )")
	if err != nil {
		t.Fatalf("%s: tokens: unexpected error: %v", t.Name(), err)
	}
	expected := dedent.Dedent(`
	Paren
	  PUNCTUATOR "(" 1:0
	  Expr
	    CONSTANT "1" 1:2
	    PUNCTUATOR "+" 1:4
	    CONSTANT "2" 1:6
	  PUNCTUATOR ")" 1:8
	`)[1:]
	if actual := tree.String(); actual != expected {
		t.Errorf("%s: tokens: wrong tree:\n%s", t.Name(), diff(expected, actual))
	}
	if !tree.Lexerful {
		t.Errorf("%s: tokens: expected a lexerful tree", t.Name())
	}
}

func TestParser_RecognitionError(t *testing.T) {
	type testrow struct {
		Parser   *Parser
		Input    string
		Offset   int
		Line     int
		Column   int
		Expected []string
		Error    string
		Context  string
	}

	paren := New(parenGrammar(), WithSource("test.txt"))
	lines := New(linesGrammar(), WithSource("test.txt"))
	tokens := New(tokenParenGrammar(), WithSource("test.txt"), WithLexer(lexerOptions()...))

	data := []testrow{
		{
			Parser:   paren,
			Input:    "(1+)",
			Offset:   3,
			Line:     1,
			Column:   3,
			Expected: []string{"CONSTANT"},
			Error:    `test.txt:1:3: syntax error: unexpected ')'; expected CONSTANT`,
			Context:  "1: (1+)\n      ^",
		},
		{
			Parser:   paren,
			Input:    "(1+é" + strings.Repeat("9", 4096) + ")",
			Offset:   3,
			Line:     1,
			Column:   3,
			Expected: []string{"CONSTANT"},
			Error:    `test.txt:1:3: syntax error: unexpected 'é'; expected CONSTANT`,
		},
		{
			Parser:   paren,
			Input:    "(1+",
			Offset:   3,
			Line:     1,
			Column:   3,
			Expected: []string{"CONSTANT"},
			Error:    `test.txt:1:3: syntax error: unexpected end of input; expected CONSTANT`,
			Context:  "1: (1+\n      ^",
		},
		{
			Parser:   lines,
			Input:    "1\n2\nx\n",
			Offset:   4,
			Line:     3,
			Column:   0,
			Expected: []string{"CONSTANT", "EOI"},
			Error:    `test.txt:3:0: syntax error: unexpected 'x'; expected one of CONSTANT, EOI`,
			Context:  "3: x\n   ^",
		},
		{
			Parser:   tokens,
			Input:    "(1 +)",
			Offset:   3,
			Line:     1,
			Column:   4,
			Expected: []string{"CONSTANT"},
			Error:    `test.txt:1:4: syntax error: unexpected ")"; expected CONSTANT`,
			Context:  `( 1 + -->)<-- EOF`,
		},
		{
			Parser:   tokens,
			Input:    "(1",
			Offset:   2,
			Line:     1,
			Column:   2,
			Expected: []string{`"+"`, `")"`},
			Error:    `test.txt:1:2: syntax error: unexpected end of input; expected one of "+", ")"`,
			Context:  `( 1 -->EOF<--`,
		},
	}

	for i, row := range data {
		_, err := row.Parser.Parse(row.Input)
		var re *RecognitionError
		if !errors.As(err, &re) {
			t.Errorf("%s/%03d: %q: expected *RecognitionError, got %T %v", t.Name(), i, row.Input, err, err)
			continue
		}
		if !errors.Is(err, ErrSyntax) {
			t.Errorf("%s/%03d: %q: expected ErrSyntax, got %v", t.Name(), i, row.Input, re.Err)
		}
		if re.Offset != row.Offset || re.Line != row.Line || re.Column != row.Column {
			t.Errorf("%s/%03d: %q: expected offset %d at %d:%d, got offset %d at %d:%d", t.Name(), i, row.Input, row.Offset, row.Line, row.Column, re.Offset, re.Line, re.Column)
		}
		if diff := cmp.Diff(row.Expected, re.Expected, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s/%03d: %q: wrong expected list (-want +got):\n%s", t.Name(), i, row.Input, diff)
		}
		if actual := re.Error(); actual != row.Error {
			t.Errorf("%s/%03d: %q: wrong message:\n\texpected: %s\n\tactual:   %s", t.Name(), i, row.Input, row.Error, actual)
		}
		if row.Context == "" {
			continue
		}
		if re.Context != row.Context {
			t.Errorf("%s/%03d: %q: wrong context:\n%s", t.Name(), i, row.Input, diff(row.Context, re.Context))
		}
		if !strings.HasSuffix(re.Format(), "\n\n"+row.Context) {
			t.Errorf("%s/%03d: %q: Format does not end with the context", t.Name(), i, row.Input)
		}
	}
}

func TestParser_Errors(t *testing.T) {
	text := New(parenGrammar())
	noLexer := New(tokenParenGrammar())

	if _, err := noLexer.Parse("(1)"); !errors.Is(err, ErrNoLexer) {
		t.Errorf("%s: expected ErrNoLexer, got %v", t.Name(), err)
	}

	_, err := noLexer.ParseTokens(nil)
	if !errors.Is(err, ErrNoTokens) {
		t.Errorf("%s: expected ErrNoTokens, got %v", t.Name(), err)
	}
	var re *RecognitionError
	if !errors.As(err, &re) || re.Source != "" || re.Line != 1 {
		t.Errorf("%s: expected a *RecognitionError at line 1, got %#v", t.Name(), err)
	}

	if _, err := text.ParseTokens([]*token.Token{{Type: token.EOF}}); !errors.Is(err, ErrTokensNeedLexerful) {
		t.Errorf("%s: expected ErrTokensNeedLexerful, got %v", t.Name(), err)
	}

	lexing := New(tokenParenGrammar(), WithLexer(lexerOptions()...))
	var le *lexer.LexError
	if _, err := lexing.Parse("(1 ? 2)"); !errors.As(err, &le) {
		t.Errorf("%s: expected *lexer.LexError, got %T %v", t.Name(), err, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := text.ParseContext(ctx, "x", "(1)"); !errors.Is(err, context.Canceled) {
		t.Errorf("%s: expected context.Canceled, got %v", t.Name(), err)
	}
}

func TestParser_ParseTokens(t *testing.T) {
	p := New(tokenParenGrammar(), WithSource("tokens"))
	punct := token.Named("P")
	tokens := []*token.Token{
		{Type: punct, Value: "(", Line: 1, Column: 0},
		{Type: token.Constant, Value: "7", Line: 1, Column: 1},
		{Type: punct, Value: ")", Line: 1, Column: 2},
		{Type: token.EOF, Value: "EOF", Line: 1, Column: 3},
	}
	tree, err := p.ParseTokens(tokens)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}
	expected := dedent.Dedent(`
	Paren
	  P "(" 1:0
	  Expr
	    CONSTANT "7" 1:1
	  P ")" 1:2
	`)[1:]
	if actual := tree.String(); actual != expected {
		t.Errorf("%s: wrong tree:\n%s", t.Name(), diff(expected, actual))
	}
	if tree.Source != "tokens" {
		t.Errorf("%s: expected source %q, got %q", t.Name(), "tokens", tree.Source)
	}
}

type closer struct {
	io.Reader
	err    error
	closed int
}

func (c *closer) Close() error {
	c.closed++
	return c.err
}

func TestParser_ParseReader(t *testing.T) {
	p := New(parenGrammar())
	closeErr := errors.New("disk on fire")

	good := &closer{Reader: strings.NewReader("(1)"), err: closeErr}
	_, err := p.ParseReader(context.Background(), "good", good)
	var ce *CloseError
	if !errors.As(err, &ce) || !errors.Is(err, closeErr) || ce.Source != "good" {
		t.Errorf("%s: expected *CloseError wrapping %v, got %v", t.Name(), closeErr, err)
	}
	if good.closed != 1 {
		t.Errorf("%s: expected 1 close, got %d", t.Name(), good.closed)
	}

	bad := &closer{Reader: strings.NewReader("(1"), err: closeErr}
	_, err = p.ParseReader(context.Background(), "bad", bad)
	if !errors.Is(err, ErrSyntax) || errors.As(err, &ce) {
		t.Errorf("%s: expected only a syntax error, got %v", t.Name(), err)
	}
	if bad.closed != 1 {
		t.Errorf("%s: expected 1 close, got %d", t.Name(), bad.closed)
	}

	clean := &closer{Reader: strings.NewReader("(1+2)")}
	if _, err := p.ParseReader(context.Background(), "clean", clean); err != nil {
		t.Errorf("%s: unexpected error: %v", t.Name(), err)
	}
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.txt")
	if err := os.WriteFile(path, []byte("(3+4)"), 0o666); err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}

	p := New(parenGrammar())
	tree, err := p.ParseFile(path)
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", t.Name(), err)
	}
	if tree.Source != path {
		t.Errorf("%s: expected source %q, got %q", t.Name(), path, tree.Source)
	}

	if _, err := p.ParseFile(filepath.Join(dir, "missing.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("%s: expected os.ErrNotExist, got %v", t.Name(), err)
	}
}

func TestParser_Metrics(t *testing.T) {
	m := metrics.New()
	p := New(tokenParenGrammar(), WithMetrics(m), WithLexer(lexerOptions()...))

	for _, input := range []string{"(1)", "(1+2)", "(1+"} {
		_, _ = p.Parse(input)
	}

	if n := m.Counter(metrics.FilesParsed).Uint64(); n != 2 {
		t.Errorf("%s: expected 2 files parsed, got %d", t.Name(), n)
	}
	if n := m.Counter(metrics.FilesFailed).Uint64(); n != 1 {
		t.Errorf("%s: expected 1 file failed, got %d", t.Name(), n)
	}
	for _, name := range []string{metrics.Lex, metrics.LexTokens, metrics.Parse, metrics.ParseSteps, metrics.ParseBacktrack} {
		if n := m.Histogram(name).Count(); n != 3 {
			t.Errorf("%s: %s: expected 3 samples, got %d", t.Name(), name, n)
		}
	}
	if n := m.Histogram(metrics.BuildTree).Count(); n != 2 {
		t.Errorf("%s: %s: expected 2 samples, got %d", t.Name(), metrics.BuildTree, n)
	}
}

func TestParser_Concurrent(t *testing.T) {
	defer leaktest.Check(t)()

	pool := lexer.NewPool(2, lexerOptions()...)
	p := New(tokenParenGrammar(), WithLexerPool(pool))

	inputs := []string{"(1)", "(1+2)", "(3+4+5)", "(6)", "(7+8)", "(9)", "(1+)", "(2+3)"}
	errs := make([]error, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = p.ParseContext(context.Background(), input, input)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		wantErr := inputs[i] == "(1+)"
		if (err != nil) != wantErr {
			t.Errorf("%s/%03d: %q: unexpected result: %v", t.Name(), i, inputs[i], err)
		}
	}
	if n := pool.InUse(); n != 0 {
		t.Errorf("%s: expected all lexers released, got %d in use", t.Name(), n)
	}
}

func TestParser_Deterministic(t *testing.T) {
	defer leaktest.Check(t)()

	type outcome struct {
		Tree   string
		Error  string
		Offset int
		Line   int
		Column int
	}

	// Offset is the failure offset, or -1 if the input parses.
	type testrow struct {
		Parser *Parser
		Input  string
		Offset int
	}

	paren := New(parenGrammar())
	lines := New(linesGrammar())
	tokens := New(tokenParenGrammar(), WithLexerPool(lexer.NewPool(2, lexerOptions()...)))

	data := []testrow{
		{paren, "(1+2+3)", -1},
		{paren, "(1+2+)", 5},
		{paren, "((1)", 1},
		{lines, "1\n22\n333\n", -1},
		{lines, "1\n2\nx\n", 4},
		{tokens, "( 1 + 2 )", -1},
		{tokens, "(1 + 2 +)", 5},
	}

	parse := func(p *Parser, input string) outcome {
		tree, err := p.Parse(input)
		if err == nil {
			return outcome{Tree: tree.String()}
		}
		var o outcome
		o.Error = err.Error()
		var re *RecognitionError
		if errors.As(err, &re) {
			o.Offset, o.Line, o.Column = re.Offset, re.Line, re.Column
		}
		return o
	}

	const repeat = 8
	for i, row := range data {
		first := parse(row.Parser, row.Input)
		if failed := first.Error != ""; failed != (row.Offset >= 0) {
			t.Errorf("%s/%03d: %q: unexpected result: %+v", t.Name(), i, row.Input, first)
			continue
		}
		if row.Offset >= 0 && first.Offset != row.Offset {
			t.Errorf("%s/%03d: %q: expected failure at offset %d, got %d", t.Name(), i, row.Input, row.Offset, first.Offset)
		}

		results := make([]outcome, 0, 2*repeat)
		for j := 0; j < repeat; j++ {
			results = append(results, parse(row.Parser, row.Input))
		}

		concurrent := make([]outcome, repeat)
		var wg sync.WaitGroup
		for j := range concurrent {
			wg.Add(1)
			go func() {
				defer wg.Done()
				concurrent[j] = parse(row.Parser, row.Input)
			}()
		}
		wg.Wait()
		results = append(results, concurrent...)

		for j, actual := range results {
			if diff := cmp.Diff(first, actual); diff != "" {
				t.Errorf("%s/%03d/%02d: %q: result differs from the first parse (-first +got):\n%s", t.Name(), i, j, row.Input, diff)
			}
		}
	}
}
