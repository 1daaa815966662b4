package main

import (
	stdlog "log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbosity  int
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "gqlc",
		Short:         "Compile shorthand GraphQL operations into batched documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().IntVarP(&opts.verbosity, "verbose", "v", 0, "log verbosity")
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")

	cmd.AddCommand(newCompileCmd(opts), newSendCmd(opts))
	return cmd
}

func newLogger(verbosity int) logr.Logger {
	stdr.SetVerbosity(verbosity)
	return stdr.New(stdlog.New(os.Stderr, "gqlc ", stdlog.LstdFlags))
}
