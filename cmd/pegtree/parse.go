package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/chronos-tachyon/go-pegtree/ast"
	"github.com/chronos-tachyon/go-pegtree/metrics"
	"github.com/chronos-tachyon/go-pegtree/parser"
)

const (
	formatText = "text"
	formatXML  = "xml"
	formatJSON = "json"
	formatYAML = "yaml"
)

type parseParams struct {
	format  *enumFlag
	jobs    int
	timeout time.Duration
	metrics bool
}

func newParseParams() *parseParams {
	return &parseParams{
		format: newEnumFlag(formatText, formatText, formatXML, formatJSON, formatYAML),
		jobs:   4,
	}
}

func (a *app) newParseCommand() *cobra.Command {
	params := newParseParams()
	cmd := &cobra.Command{
		Use:   "parse <manifest> <file>...",
		Short: "Parse files and print their syntax trees",
		Long: "Parse each file with the grammar of the manifest and print its syntax tree. " +
			"Files are parsed concurrently; trees are printed in argument order.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.parse(cmd.Context(), args[0], args[1:], params)
		},
	}
	cmd.Flags().VarP(params.format, "format", "f", "output format")
	cmd.Flags().IntVarP(&params.jobs, "jobs", "j", params.jobs, "number of files parsed at once")
	cmd.Flags().DurationVar(&params.timeout, "timeout", 0, "give up on a file after this long (0 means never)")
	cmd.Flags().BoolVar(&params.metrics, "metrics", false, "print timings and counts to stderr when done")
	return cmd
}

type parseResult struct {
	out []byte
	err error
}

func (a *app) parse(ctx context.Context, manifest string, paths []string, params *parseParams) error {
	if ctx == nil {
		ctx = context.Background()
	}
	jobs := max(params.jobs, 1)

	m := metrics.NoOp()
	if params.metrics {
		m = metrics.New()
	}
	total := m.Timer(metrics.Total)
	total.Start()

	d, err := a.load(manifest)
	if err != nil {
		return err
	}
	p := d.NewParser(jobs, parser.WithLogger(a.log), parser.WithMetrics(m))

	results := make([]parseResult, len(paths))
	work := make(chan int)
	var wg sync.WaitGroup
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results[i] = a.parseOne(ctx, p, paths[i], params)
			}
		}()
	}
	for i := range paths {
		work <- i
	}
	close(work)
	wg.Wait()
	total.Stop()

	failed := false
	for i, r := range results {
		if r.err != nil {
			failed = true
			a.reportParseError(paths[i], r.err)
			continue
		}
		_, _ = a.stdout.Write(r.out)
	}

	if params.metrics {
		raw, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stderr, "%s\n", raw)
	}
	if failed {
		return errReported
	}
	return nil
}

func (a *app) parseOne(ctx context.Context, p *parser.Parser, path string, params *parseParams) parseResult {
	if params.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.timeout)
		defer cancel()
	}
	tree, err := p.ParseFileContext(ctx, path)
	if err != nil {
		return parseResult{err: err}
	}
	var buf bytes.Buffer
	if err := writeTree(&buf, tree, params.format.String()); err != nil {
		return parseResult{err: err}
	}
	return parseResult{out: buf.Bytes()}
}

func (a *app) reportParseError(path string, err error) {
	var re *parser.RecognitionError
	switch {
	case errors.As(err, &re):
		fmt.Fprintf(a.stderr, "%s\n", re.Format())
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintf(a.stderr, "%s: timed out\n", path)
	default:
		fmt.Fprintf(a.stderr, "%s: %v\n", path, err)
	}
}

func writeTree(w io.Writer, tree *ast.Tree, format string) error {
	switch format {
	case formatXML:
		return tree.WriteXML(w)
	case formatJSON:
		raw, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return err
		}
		raw = append(raw, '\n')
		_, err = w.Write(raw)
		return err
	case formatYAML:
		e := yaml.NewEncoder(w)
		e.SetIndent(2)
		if err := e.Encode(tree); err != nil {
			return err
		}
		return e.Close()
	default:
		return tree.WriteText(w)
	}
}
