package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-pegtree/lexer"
	"github.com/chronos-tachyon/go-pegtree/token"
)

const maxTableFieldLen = 40

func (a *app) newLexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lex <manifest> <file>",
		Short: "Print the tokens of a file as a table",
		Long:  "Tokenize a file with the lexer of a lexerful grammar and print one row per token.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.lex(args[0], args[1])
		},
	}
}

func (a *app) lex(manifest, path string) error {
	d, err := a.load(manifest)
	if err != nil {
		return err
	}
	if !d.HasLexer() {
		return fmt.Errorf("%s: grammar has no lexer", manifest)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tokens, err := lexer.New(d.LexerOptions()...).LexSource(path, string(raw))
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(a.stdout)
	table.SetHeader([]string{"Line", "Column", "Type", "Value", "Trivia"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	for _, tok := range tokens {
		table.Append([]string{
			strconv.Itoa(tok.Line),
			strconv.Itoa(tok.Column),
			tok.Type.Name(),
			truncateStr(strconv.Quote(tok.OriginalValue)),
			truncateStr(triviaSummary(tok)),
		})
	}
	table.Render()
	return nil
}

func triviaSummary(tok *token.Token) string {
	parts := make([]string, len(tok.Trivia))
	for i, tr := range tok.Trivia {
		parts[i] = tr.String()
	}
	return strings.Join(parts, ", ")
}

func truncateStr(s string) string {
	if len(s) < maxTableFieldLen {
		return s
	}
	return s[:maxTableFieldLen] + "..."
}
