package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/application/deploy"
	configinfra "github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/config"
)

type validateOptions struct {
	ConfigPath string
	Verbose    bool
	LogFormat  string
	Overrides  []configinfra.Override
}

var validateCmdRunner = runValidate

func newValidateCmd(root *rootFlags) *cobra.Command {
	opts := validateOptions{}
	fnFlags := &functionFlags{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a deployment document without contacting AWS",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.LogFormat = root.logFormat
			opts.Overrides = append(fnFlags.overrides(cmd), settingsOverrides(cmd, root)...)

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}
			if err := validateCmdRunner(cmd.Context(), cmd, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", opts.ConfigPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the deployment document")
	cmd.MarkFlagRequired("config") //nolint:errcheck
	fnFlags.register(cmd)

	return cmd
}

func runValidate(ctx context.Context, cmd *cobra.Command, opts validateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log, err := newLogger(cmd.ErrOrStderr(), opts.Verbose, opts.LogFormat)
	if err != nil {
		return err
	}

	loader := configinfra.NewYAMLLoader(log, opts.Overrides...)
	return deploy.NewPrepareUseCase(loader, log).Validate(ctx, opts.ConfigPath)
}

func validateConfigPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config file is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("config file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", abs)
	}

	return nil
}
