package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

type rootFlags struct {
	verbose   bool
	logFormat string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "lambda-deploy",
		Short:         "Deploy code and configuration to an AWS Lambda function",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "Log format: console or json")

	cmd.AddCommand(newDeployCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// newLogger builds the CLI logger. An empty format means console output.
func newLogger(w io.Writer, verbose bool, format string) (ports.Logger, error) {
	level := "info"
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Writer:        w,
		Level:         level,
		HumanReadable: format != "json",
		Layer:         "cli",
		Component:     "lambda-deploy",
	})
}
