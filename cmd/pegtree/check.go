package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <manifest>...",
		Short: "Load and compile grammar files",
		Long:  "Load each grammar manifest, compile its grammar, and report the number of rules.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.check(args)
		},
	}
}

func (a *app) check(paths []string) error {
	failed := false
	for _, path := range paths {
		d, err := a.load(path)
		if err != nil {
			fmt.Fprintf(a.stderr, "%s: %v\n", path, err)
			failed = true
			continue
		}
		g := d.Grammar
		fmt.Fprintf(a.stdout, "%s: ok: %d rules, root %s, %s\n", path, len(g.Rules()), g.Root().Key, g.Mode())
	}
	if failed {
		return errReported
	}
	return nil
}
