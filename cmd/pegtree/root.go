package main

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chronos-tachyon/go-pegtree/grammarfile"
	"github.com/chronos-tachyon/go-pegtree/internal/env"
	"github.com/chronos-tachyon/go-pegtree/internal/logging"
)

// errReported is returned by commands that have already written their
// errors to stderr.
var errReported = errors.New("errors were reported")

type app struct {
	stdout io.Writer
	stderr io.Writer

	logLevel  string
	logFormat string
	log       *logrus.Logger
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           env.GlobalPrefix,
		Short:         "PEG grammar tool",
		Long:          "Check, disassemble, and run PEG grammars described by EBNF files and YAML manifests.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := env.CheckEnvironmentVariables(cmd); err != nil {
				return err
			}
			if err := env.CheckPersistentFlags(cmd.Root()); err != nil {
				return err
			}
			return a.setupLogging()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text, json, or json-pretty")

	root.AddCommand(
		a.newCheckCommand(),
		a.newDisasmCommand(),
		a.newLexCommand(),
		a.newParseCommand(),
	)
	return root
}

func (a *app) setupLogging() error {
	log, err := logging.New(a.logLevel, a.logFormat, "")
	if err != nil {
		return err
	}
	log.SetOutput(a.stderr)
	a.log = log
	return nil
}

func (a *app) load(path string) (*grammarfile.Definition, error) {
	d, err := grammarfile.Load(path)
	if err != nil {
		a.log.WithField("manifest", path).WithError(err).Debug("load failed")
		return nil, err
	}
	return d, nil
}
