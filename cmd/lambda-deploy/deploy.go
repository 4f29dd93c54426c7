package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/application/deploy"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/artifact"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/awsconfig"
	configinfra "github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/config"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/events"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/gitinfo"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/lambda"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/metrics"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/outputs"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/tracing"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/tui"
)

type deployOptions struct {
	ConfigPath     string
	MetricsFile    string
	Verbose        bool
	LogFormat      string
	NonInteractive bool
	Overrides      []configinfra.Override
	Stdout         io.Writer
	Stderr         io.Writer
}

// storeFactory builds the FunctionStore for a loaded deployment. Tests
// replace it to avoid AWS.
type storeFactory func(ctx context.Context, d *ports.Deployment, logger ports.Logger) (ports.FunctionStore, error)

var deployCmdRunner = runDeploy

var newFunctionStore storeFactory = awsFunctionStore

func newDeployCmd(root *rootFlags) *cobra.Command {
	opts := deployOptions{}
	fnFlags := &functionFlags{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create or update a Lambda function to match a deployment document",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			opts.LogFormat = root.logFormat
			opts.NonInteractive = opts.NonInteractive || !term.IsTerminal(int(os.Stdout.Fd()))
			opts.Overrides = append(fnFlags.overrides(cmd), settingsOverrides(cmd, root)...)
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()

			if opts.ConfigPath != "" {
				if err := validateConfigPath(opts.ConfigPath); err != nil {
					return err
				}
			}

			return deployCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to the deployment document")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run")
	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false, "Print a plain summary instead of the live view")
	fnFlags.register(cmd)

	return cmd
}

func runDeploy(ctx context.Context, opts deployOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = ports.WithCorrelationID(ctx, ports.GenerateCorrelationID())

	log, err := newLogger(opts.Stderr, opts.Verbose, opts.LogFormat)
	if err != nil {
		return err
	}

	loader := configinfra.NewYAMLLoader(log, opts.Overrides...)
	d, err := deploy.NewPrepareUseCase(loader, log).Prepare(ctx, opts.ConfigPath)
	if err != nil {
		return err
	}

	if d.Settings.Verbose != opts.Verbose || d.Settings.LogFormat != opts.LogFormat {
		log, err = newLogger(opts.Stderr, d.Settings.Verbose, d.Settings.LogFormat)
		if err != nil {
			return err
		}
	}

	store, err := newFunctionStore(ctx, d, log)
	if err != nil {
		return err
	}

	collector := metrics.NewPrometheus(log)
	provider := tracing.NewProvider(log)
	defer func() {
		if shutdownErr := provider.Shutdown(context.Background()); shutdownErr != nil {
			log.Warn(ctx, "failed to shut down tracer provider", "error", shutdownErr)
		}
	}()
	tracer := tracing.NewTracer(provider.Tracer(tracing.InstrumentationName))
	publisher := events.NewLoggingPublisher(log, ports.EventConvergencePoll, ports.EventReconcilePhase)

	artifacts := artifact.NewZipStore(log)
	waiter := deploy.NewWaiter(store, log, publisher,
		deploy.WithPollInterval(time.Duration(d.Settings.PollIntervalSeconds)*time.Second),
		deploy.WithWaiterObservability(collector, tracer),
	)
	reconciler := deploy.NewReconciler(deploy.Dependencies{
		Store:     store,
		Artifacts: artifacts,
		Logger:    log,
		Events:    publisher,
		Metrics:   collector,
		Tracer:    tracer,
		Waiter:    waiter,
	})
	usecase := deploy.NewDeployUseCase(artifacts, reconciler, log, publisher)

	var outcome function.Outcome
	if opts.NonInteractive {
		outcome, _ = usecase.Deploy(ctx, d)
		fmt.Fprintln(opts.Stdout, tui.RenderSummary(d.Spec.Name, d.Spec.Region, outcome))
	} else {
		outcome, err = deployInteractive(ctx, cancel, usecase, d, publisher)
		if err != nil {
			return err
		}
	}

	if opts.MetricsFile != "" {
		if err := collector.WriteTextfile(opts.MetricsFile); err != nil {
			log.Warn(ctx, "failed to write metrics file", "path", opts.MetricsFile, "error", err)
		}
	}

	if !outcome.Succeeded() {
		return outcome.Err
	}
	return publishOutputs(ctx, log, d, outcome, opts.Stdout)
}

func deployInteractive(ctx context.Context, cancel context.CancelFunc, usecase *deploy.DeployUseCase, d *ports.Deployment, publisher ports.EventPublisher) (function.Outcome, error) {
	model := tui.NewModel(d.Spec.Name, d.Spec.Region, d.Settings.DryRun, tui.WithCancel(cancel))
	program := tea.NewProgram(model)

	subs, err := tui.Forward(publisher, program.Send)
	if err != nil {
		return function.Outcome{}, err
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	var programErr error
	done := make(chan struct{})
	go func() {
		_, programErr = program.Run()
		close(done)
	}()

	outcome, _ := usecase.Deploy(ctx, d)
	program.Send(tui.DoneMsg{Outcome: outcome})
	<-done
	if programErr != nil {
		return outcome, programErr
	}
	return outcome, nil
}

func publishOutputs(ctx context.Context, log ports.Logger, d *ports.Deployment, outcome function.Outcome, fallback io.Writer) error {
	rev, found, err := gitinfo.Resolve(d.Spec.ArtifactPath)
	if err != nil {
		log.Warn(ctx, "failed to resolve source revision", "path", d.Spec.ArtifactPath, "error", err)
	}
	if found {
		log.Debug(ctx, "resolved source revision", "commit", rev.Short(), "branch", rev.Branch, "dirty", rev.Dirty)
	}
	if err := outputs.FromEnv(fallback).Write(outputs.FromOutcome(outcome, rev)); err != nil {
		return fmt.Errorf("write outputs: %w", err)
	}
	return nil
}

func awsFunctionStore(ctx context.Context, d *ports.Deployment, logger ports.Logger) (ports.FunctionStore, error) {
	cfg, err := awsconfig.Load(ctx, awsconfig.Options{
		Region:        d.Spec.Region,
		MaxAttempts:   d.Settings.MaxAttempts,
		AssumeRoleArn: d.Settings.AssumeRoleArn,
	}, logger)
	if err != nil {
		return nil, err
	}
	return lambda.NewStore(cfg, logger), nil
}
