package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/configtree"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// Options steer a single reconciliation run.
type Options struct {
	DryRun      bool
	WaitMinutes int
}

// Dependencies are the ports a Reconciler drives. Store and Artifacts are
// required; everything else may be nil.
type Dependencies struct {
	Store     ports.FunctionStore
	Artifacts ports.ArtifactStore
	Logger    ports.Logger
	Events    ports.EventPublisher
	Metrics   ports.MetricsCollector
	Tracer    ports.Tracer
	Waiter    *Waiter
}

// Reconciler moves a remote function towards a DesiredSpec.
type Reconciler struct {
	store      ports.FunctionStore
	artifacts  ports.ArtifactStore
	locator    *Locator
	waiter     *Waiter
	normalizer *configtree.Normalizer
	differ     *configtree.Differ
	logger     ports.Logger
	events     ports.EventPublisher
	metrics    ports.MetricsCollector
	tracer     ports.Tracer
	now        func() time.Time
}

// NewReconciler constructs a Reconciler. A default Waiter over deps.Store is
// created when none is supplied.
func NewReconciler(deps Dependencies) *Reconciler {
	waiter := deps.Waiter
	if waiter == nil {
		waiter = NewWaiter(deps.Store, deps.Logger, deps.Events, WithWaiterObservability(deps.Metrics, deps.Tracer))
	}
	normalizer := configtree.DefaultNormalizer()
	return &Reconciler{
		store:      deps.Store,
		artifacts:  deps.Artifacts,
		locator:    NewLocator(deps.Store, deps.Logger),
		waiter:     waiter,
		normalizer: normalizer,
		differ:     configtree.NewDiffer(normalizer),
		logger:     deps.Logger,
		events:     deps.Events,
		metrics:    deps.Metrics,
		tracer:     deps.Tracer,
		now:        time.Now,
	}
}

// run carries the mutable bookkeeping of one reconciliation.
type run struct {
	spec    function.DesiredSpec
	opts    Options
	phase   Phase
	started time.Time
}

// Reconcile drives spec through the state machine and returns the single
// terminal outcome. It never retries remote calls.
func (r *Reconciler) Reconcile(ctx context.Context, spec function.DesiredSpec, opts Options) function.Outcome {
	rn := &run{spec: spec, opts: opts, phase: PhaseStart, started: r.now()}

	ctx, span := startSpan(ctx, r.tracer, "reconciler.reconcile", "function", spec.Name, "dry_run", opts.DryRun)
	outcome := r.reconcile(ctx, rn)
	endSpan(span, outcome.Err)

	outcome.DryRun = opts.DryRun
	outcome.Duration = r.now().Sub(rn.started)
	r.finish(ctx, rn, outcome)
	return outcome
}

func (r *Reconciler) reconcile(ctx context.Context, rn *run) function.Outcome {
	spec := rn.spec
	if r.logger != nil {
		r.logger.Info(ctx, "reconciling function", "function", spec.Name, "region", spec.Region, "dry_run", rn.opts.DryRun)
	}
	publishEvent(ctx, r.events, r.logger, ports.EventReconcileStarted, map[string]interface{}{
		"function": spec.Name,
		"region":   spec.Region,
		"dry_run":  rn.opts.DryRun,
	})

	if err := spec.Validate(); err != nil {
		return failed(err)
	}

	r.enter(ctx, rn, PhaseProbing)
	var current *function.RemoteState
	err := r.call(ctx, "get_configuration", func(ctx context.Context) error {
		var locateErr error
		current, locateErr = r.locator.Locate(ctx, spec.Name)
		return locateErr
	})
	if err != nil {
		return failed(err)
	}

	if current == nil {
		return r.create(ctx, rn)
	}
	return r.update(ctx, rn, current)
}

func (r *Reconciler) create(ctx context.Context, rn *run) function.Outcome {
	spec := rn.spec
	if rn.opts.DryRun {
		return failed(function.NewError(function.ErrCodePrecondition,
			"dry run only valid for existing functions", nil,
			map[string]interface{}{"function": spec.Name}))
	}
	if spec.Role == "" {
		return failed(function.NewError(function.ErrCodePrecondition,
			fmt.Sprintf("role must be provided to create function %s", spec.Name), nil,
			map[string]interface{}{"function": spec.Name, "field": "role"}))
	}

	r.decide(ctx, spec.Name, DecisionCreate, nil)
	r.enter(ctx, rn, PhaseCreating)

	code, err := r.readCode(ctx, spec)
	if err != nil {
		return failed(err)
	}

	req := function.NewCreateRequest(spec, r.normalizer, code)
	var identity function.Identity
	err = r.call(ctx, "create", func(ctx context.Context) error {
		var createErr error
		identity, createErr = r.store.Create(ctx, req)
		return createErr
	})
	if err != nil {
		return failed(err)
	}

	return function.Outcome{Kind: function.OutcomeCreated, Identity: identity}
}

func (r *Reconciler) update(ctx context.Context, rn *run, current *function.RemoteState) function.Outcome {
	spec := rn.spec
	r.enter(ctx, rn, PhaseConfiguringUpdate)

	delta := r.differ.Changed(current.Config, spec.ComparableTree())
	r.logDelta(ctx, spec.Name, delta)

	if delta.Changed && rn.opts.DryRun {
		r.decide(ctx, spec.Name, DecisionDryRunStop, delta.FieldNames())
		if r.logger != nil {
			r.logger.Info(ctx, "dry run: configuration changes detected, skipping update", "function", spec.Name, "fields", delta.FieldNames())
		}
		return function.Outcome{
			Kind:          function.OutcomeNoOpDryRun,
			Identity:      function.Identity{ARN: current.ARN, Version: current.Version},
			ChangedFields: delta.FieldNames(),
		}
	}

	// The artifact is read before any mutating call.
	code, err := r.readCode(ctx, spec)
	if err != nil {
		out := failed(err)
		out.ChangedFields = delta.FieldNames()
		return out
	}

	kind := function.OutcomeCodeUpdated
	if delta.Changed {
		r.decide(ctx, spec.Name, DecisionUpdateConfiguration, delta.FieldNames())
		req := function.NewUpdateConfigurationRequest(spec, r.normalizer)
		err = r.call(ctx, "update_configuration", func(ctx context.Context) error {
			return r.store.UpdateConfiguration(ctx, req)
		})
		if err != nil {
			return failed(err)
		}

		r.enter(ctx, rn, PhaseWaitingConvergence)
		if err := r.waiter.WaitUntilUpdated(ctx, spec.Name, rn.opts.WaitMinutes); err != nil {
			out := failed(err)
			out.ChangedFields = delta.FieldNames()
			out.Updating = function.IsCode(err, function.ErrCodeConvergenceTimeout)
			return out
		}
		kind = function.OutcomeConfigAndCodeUpdated
	} else {
		r.decide(ctx, spec.Name, DecisionSkipConfiguration, nil)
	}

	r.enter(ctx, rn, PhaseUpdatingCode)
	req := function.NewUpdateCodeRequest(spec, r.normalizer, code, rn.opts.DryRun)
	var identity function.Identity
	err = r.call(ctx, "update_code", func(ctx context.Context) error {
		var updateErr error
		identity, updateErr = r.store.UpdateCode(ctx, req)
		return updateErr
	})
	if err != nil {
		return failed(err)
	}
	if rn.opts.DryRun {
		identity = identity.Complete(function.PlaceholderIdentity(spec.Region, spec.Name))
	}

	return function.Outcome{
		Kind:          kind,
		Identity:      identity,
		ChangedFields: delta.FieldNames(),
	}
}

func (r *Reconciler) readCode(ctx context.Context, spec function.DesiredSpec) ([]byte, error) {
	code, err := r.artifacts.ReadArtifact(ctx, spec.ArtifactPath)
	if err != nil {
		return nil, err
	}
	if r.logger != nil {
		r.logger.Debug(ctx, "read code artifact", "function", spec.Name, "path", spec.ArtifactPath, "bytes", len(code))
	}
	if r.metrics != nil {
		r.metrics.SetGauge(ctx, ports.MetricCodeBytes, float64(len(code)), nil)
	}
	return code, nil
}

// call wraps one remote operation with tracing and call metrics.
func (r *Reconciler) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := startSpan(ctx, r.tracer, "lambda."+operation)
	err := fn(ctx)
	endSpan(span, err)

	status := "ok"
	if err != nil {
		status = string(function.CodeOf(err))
		if status == "" {
			status = string(function.ErrCodeInternal)
		}
	}
	if r.metrics != nil {
		r.metrics.IncCounter(ctx, ports.MetricRemoteCalls, map[string]string{"operation": operation, "status": status})
	}
	return err
}

func (r *Reconciler) enter(ctx context.Context, rn *run, phase Phase) {
	rn.phase = phase
	if r.logger != nil {
		r.logger.Debug(ctx, "reconciler phase", "function", rn.spec.Name, "phase", string(phase))
	}
	publishEvent(ctx, r.events, r.logger, ports.EventReconcilePhase, map[string]interface{}{
		"function": rn.spec.Name,
		"phase":    string(phase),
	})
}

func (r *Reconciler) decide(ctx context.Context, name, decision string, fields []string) {
	payload := map[string]interface{}{
		"function": name,
		"decision": decision,
	}
	if len(fields) > 0 {
		payload["changed_fields"] = fields
	}
	publishEvent(ctx, r.events, r.logger, ports.EventReconcileDecision, payload)
}

func (r *Reconciler) logDelta(ctx context.Context, name string, delta configtree.Delta) {
	if r.logger == nil {
		return
	}
	if !delta.Changed {
		r.logger.Info(ctx, "no configuration changes detected", "function", name)
		return
	}
	for _, change := range delta.Fields {
		if change.Kind == configtree.FieldModified && change.Current.IsPrimitive() && change.Desired.IsPrimitive() {
			r.logger.Info(ctx, "configuration field changed", "function", name, "field", change.Field, "change", change.Current.String()+" -> "+change.Desired.String())
			continue
		}
		r.logger.Info(ctx, "configuration field changed", "function", name, "field", change.Field, "kind", string(change.Kind))
	}
	r.logger.Debug(ctx, "configuration diff", "function", name, "diff", delta.Render())
}

func (r *Reconciler) finish(ctx context.Context, rn *run, outcome function.Outcome) {
	if r.metrics != nil {
		r.metrics.IncCounter(ctx, ports.MetricReconciliations, map[string]string{"outcome": string(outcome.Kind)})
		r.metrics.ObserveHistogram(ctx, ports.MetricReconcileDuration, outcome.Duration.Seconds(), nil)
	}

	if !outcome.Succeeded() {
		failedPhase := rn.phase
		r.enter(ctx, rn, PhaseFailed)
		if r.logger != nil {
			r.logger.Error(ctx, "reconciliation failed", "function", rn.spec.Name, "phase", string(failedPhase), "code", string(outcome.ErrorCode()), "updating", outcome.Updating, "error", outcome.Err)
		}
		publishEvent(ctx, r.events, r.logger, ports.EventReconcileFailed, map[string]interface{}{
			"function": rn.spec.Name,
			"phase":    string(failedPhase),
			"code":     string(outcome.ErrorCode()),
			"error":    outcome.Message(),
			"updating": outcome.Updating,
		})
		return
	}

	r.enter(ctx, rn, PhaseDone)
	if r.logger != nil {
		r.logger.Info(ctx, "reconciliation complete", "function", rn.spec.Name, "outcome", string(outcome.Kind), "arn", outcome.Identity.ARN, "version", outcome.Identity.Version, "duration_ms", outcome.Duration.Milliseconds())
	}
	publishEvent(ctx, r.events, r.logger, ports.EventReconcileCompleted, map[string]interface{}{
		"function": rn.spec.Name,
		"outcome":  string(outcome.Kind),
		"arn":      outcome.Identity.ARN,
		"version":  outcome.Identity.Version,
		"dry_run":  outcome.DryRun,
		"message":  outcome.Message(),
	})
}

func failed(err error) function.Outcome {
	return function.Outcome{Kind: function.OutcomeFailed, Err: err}
}
