package main

import (
	"github.com/spf13/cobra"
)

func (a *app) newDisasmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <manifest>",
		Short: "Print the compiled program of a grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			d, err := a.load(args[0])
			if err != nil {
				return err
			}
			_, err = d.Grammar.Disassemble(a.stdout)
			return err
		},
	}
}
