package deploy

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// PrepareUseCase loads and validates deployment documents.
type PrepareUseCase struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
}

// NewPrepareUseCase constructs a prepare use case with the required ports.
func NewPrepareUseCase(loader ports.ConfigLoader, logger ports.Logger) *PrepareUseCase {
	return &PrepareUseCase{configLoader: loader, logger: logger}
}

// Prepare loads the deployment document at configPath.
func (u *PrepareUseCase) Prepare(ctx context.Context, configPath string) (*ports.Deployment, error) {
	if u.logger != nil {
		u.logger.Info(ctx, "loading deployment", "config_path", configPath)
	}
	deployment, err := u.configLoader.Load(ctx, configPath)
	if err != nil {
		if u.logger != nil {
			u.logger.Error(ctx, "failed to load deployment", "config_path", configPath, "error", err)
		}
		return nil, err
	}
	return deployment, nil
}

// Validate checks the document at configPath without contacting AWS.
func (u *PrepareUseCase) Validate(ctx context.Context, configPath string) error {
	if err := u.configLoader.Validate(ctx, configPath); err != nil {
		if u.logger != nil {
			u.logger.Warn(ctx, "deployment document is invalid", "config_path", configPath, "error", err)
		}
		return err
	}
	return nil
}

// DeployUseCase packages the code artifacts and reconciles the function.
type DeployUseCase struct {
	artifacts  ports.ArtifactStore
	reconciler *Reconciler
	logger     ports.Logger
	events     ports.EventPublisher
}

// NewDeployUseCase constructs a DeployUseCase with dependencies injected.
func NewDeployUseCase(artifacts ports.ArtifactStore, reconciler *Reconciler, logger ports.Logger, events ports.EventPublisher) *DeployUseCase {
	return &DeployUseCase{
		artifacts:  artifacts,
		reconciler: reconciler,
		logger:     logger,
		events:     events,
	}
}

// Deploy packages d.Spec.ArtifactPath and reconciles the function. The
// returned error is the outcome's error, if any.
func (u *DeployUseCase) Deploy(ctx context.Context, d *ports.Deployment) (function.Outcome, error) {
	spec := d.Spec
	if err := spec.Validate(); err != nil {
		return u.failBeforeReconcile(ctx, spec, err), err
	}

	started := time.Now()
	archive, err := u.artifacts.Package(ctx, spec.ArtifactPath)
	if err != nil {
		return u.failBeforeReconcile(ctx, spec, err), err
	}
	if u.logger != nil {
		u.logger.Info(ctx, "packaged code artifacts", "source", spec.ArtifactPath, "archive", archive, "duration_ms", time.Since(started).Milliseconds())
	}
	spec.ArtifactPath = archive
	defer u.release(ctx, archive)

	outcome := u.reconciler.Reconcile(ctx, spec, Options{
		DryRun:      d.Settings.DryRun,
		WaitMinutes: d.Settings.WaitMinutes,
	})
	return outcome, outcome.Err
}

func (u *DeployUseCase) release(ctx context.Context, archive string) {
	if err := u.artifacts.Release(ctx, archive); err != nil && u.logger != nil {
		u.logger.Warn(ctx, "failed to remove code archive", "archive", archive, "error", err)
	}
}

func (u *DeployUseCase) failBeforeReconcile(ctx context.Context, spec function.DesiredSpec, err error) function.Outcome {
	outcome := function.Outcome{Kind: function.OutcomeFailed, Err: err}
	if u.logger != nil {
		u.logger.Error(ctx, "deployment aborted before reconciliation", "function", spec.Name, "code", string(outcome.ErrorCode()), "error", err)
	}
	publishEvent(ctx, u.events, u.logger, ports.EventReconcileFailed, map[string]interface{}{
		"function": spec.Name,
		"phase":    string(PhaseStart),
		"code":     string(outcome.ErrorCode()),
		"error":    outcome.Message(),
	})
	return outcome
}
