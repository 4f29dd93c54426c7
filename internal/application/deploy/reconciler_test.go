package deploy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	logginginfra "github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

func newTestReconciler(store *stubStore, artifacts *stubArtifacts, events *recordingPublisher, metrics *recordingMetrics) *Reconciler {
	logger := logginginfra.NewNoOpLogger()
	deps := Dependencies{
		Store:     store,
		Artifacts: artifacts,
		Logger:    logger,
		Events:    events,
		Metrics:   metrics,
		Waiter:    NewWaiter(store, logger, events, WithClock(newFakeClock())),
	}
	if metrics == nil {
		deps.Metrics = nil
	}
	return NewReconciler(deps)
}

func TestReconcileCreatesMissingFunction(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	artifacts := &stubArtifacts{code: []byte("PK")}
	events := &recordingPublisher{}
	metrics := &recordingMetrics{}

	spec := desiredSpec()
	spec.MemorySize = memorySize(256)
	spec.Environment = map[string]string{"STAGE": "prod", "EMPTY": ""}

	outcome := newTestReconciler(store, artifacts, events, metrics).Reconcile(context.Background(), spec, Options{})

	require.NoError(t, outcome.Err)
	require.Equal(t, function.OutcomeCreated, outcome.Kind)
	require.Equal(t, "arn:aws:lambda:us-east-1:123456789012:function:orders", outcome.Identity.ARN)
	require.Equal(t, "1", outcome.Identity.Version)
	require.Equal(t, 1, store.count("create"))
	require.Zero(t, store.count("update_configuration"))
	require.Zero(t, store.count("update_code"))
	require.Zero(t, store.count("poll_status"))

	req := store.creates[0]
	require.Equal(t, []byte("PK"), req.ZipFile)
	env, ok := req.Body.Get("Environment")
	require.True(t, ok)
	vars, _ := env.Get("Variables")
	require.Equal(t, map[string]string{"STAGE": "prod"}, vars.StringMapping())
	_, hasDescription := req.Body.Get("Description")
	require.False(t, hasDescription)

	require.Equal(t, []string{"probing", "creating", "done"}, events.phases())
	require.True(t, events.contains(ports.EventReconcileCompleted))
	require.Equal(t, 1, metrics.get(ports.MetricReconciliations+"|outcome=Created"))
	require.Equal(t, 1, metrics.get(ports.MetricRemoteCalls+"|operation=create|status=ok"))
}

func TestReconcileDryRunAgainstMissingFunctionFails(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	artifacts := &stubArtifacts{code: []byte("PK")}

	outcome := newTestReconciler(store, artifacts, &recordingPublisher{}, nil).Reconcile(context.Background(), desiredSpec(), Options{DryRun: true})

	require.Equal(t, function.OutcomeFailed, outcome.Kind)
	require.ErrorIs(t, outcome.Err, function.ErrPrecondition)
	require.Contains(t, outcome.Err.Error(), "dry run only valid for existing functions")
	require.Equal(t, []string{"get_configuration"}, store.calls)
	require.Zero(t, artifacts.reads)
}

func TestReconcileCreateRequiresRole(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	artifacts := &stubArtifacts{code: []byte("PK")}
	spec := desiredSpec()
	spec.Role = ""

	outcome := newTestReconciler(store, artifacts, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{})

	require.Equal(t, function.OutcomeFailed, outcome.Kind)
	require.Equal(t, function.ErrCodePrecondition, outcome.ErrorCode())
	require.Equal(t, []string{"get_configuration"}, store.calls)
	require.Zero(t, artifacts.reads)
}

func TestReconcileInvalidSpecMakesNoRemoteCalls(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	spec := desiredSpec()
	spec.VpcConfig = &function.VpcConfig{SubnetIDs: []string{"subnet-1"}}

	outcome := newTestReconciler(store, &stubArtifacts{}, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{})

	require.Equal(t, function.ErrCodeValidation, outcome.ErrorCode())
	require.Empty(t, store.calls)
}

func TestReconcileUpdatesConfigurationThenCode(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	spec.MemorySize = memorySize(256)

	polls := 0
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
		pollStatusFn: func(context.Context, string) (function.UpdateStatus, error) {
			polls++
			if polls < 3 {
				return function.UpdateStatus{State: function.UpdateInProgress}, nil
			}
			return function.UpdateStatus{State: function.UpdateSuccessful}, nil
		},
	}
	artifacts := &stubArtifacts{code: []byte("PK")}
	events := &recordingPublisher{}

	outcome := newTestReconciler(store, artifacts, events, nil).Reconcile(context.Background(), spec, Options{})

	require.NoError(t, outcome.Err)
	require.Equal(t, function.OutcomeConfigAndCodeUpdated, outcome.Kind)
	require.Equal(t, []string{"MemorySize"}, outcome.ChangedFields)
	require.Equal(t, "2", outcome.Identity.Version)

	require.Equal(t, []string{
		"get_configuration",
		"update_configuration",
		"poll_status", "poll_status", "poll_status",
		"update_code",
	}, store.calls)

	memory, ok := store.configUpdates[0].Body.Get("MemorySize")
	require.True(t, ok)
	require.Equal(t, "256", memory.String())

	code := store.codeUpdates[0]
	require.False(t, code.DryRun)
	require.Equal(t, []string{"Architectures", "Publish"}, code.Body.Keys())

	require.Equal(t, []string{"probing", "configuring_update", "waiting_convergence", "updating_code", "done"}, events.phases())
}

func TestReconcileWithoutConfigChangeStillUpdatesCode(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
	}

	outcome := newTestReconciler(store, &stubArtifacts{code: []byte("PK")}, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{})

	require.NoError(t, outcome.Err)
	require.Equal(t, function.OutcomeCodeUpdated, outcome.Kind)
	require.Equal(t, []string{"get_configuration", "update_code"}, store.calls)
}

func TestReconcileDryRunWithConfigChangeStopsBeforeMutation(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	spec.MemorySize = memorySize(512)
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
	}

	outcome := newTestReconciler(store, &stubArtifacts{code: []byte("PK")}, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{DryRun: true})

	require.NoError(t, outcome.Err)
	require.Equal(t, function.OutcomeNoOpDryRun, outcome.Kind)
	require.True(t, outcome.DryRun)
	require.Equal(t, []string{"MemorySize"}, outcome.ChangedFields)
	require.Equal(t, []string{"get_configuration"}, store.calls)
}

func TestReconcileDryRunCodeUpdateUsesPlaceholderIdentity(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
		updateCodeFn: func(context.Context, function.UpdateCodeRequest) (function.Identity, error) {
			return function.Identity{}, nil
		},
	}

	outcome := newTestReconciler(store, &stubArtifacts{code: []byte("PK")}, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{DryRun: true})

	require.NoError(t, outcome.Err)
	require.Equal(t, function.OutcomeCodeUpdated, outcome.Kind)
	require.True(t, store.codeUpdates[0].DryRun)
	require.Equal(t, "arn:aws:lambda:us-east-1:000000000000:function:orders", outcome.Identity.ARN)
	require.Equal(t, function.LatestVersion, outcome.Identity.Version)
}

func TestReconcileMissingArtifactFailsWithoutUpdates(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
	}
	artifacts := &stubArtifacts{
		readErr: function.NewError(function.ErrCodeArtifactNotFound, "code artifact build/orders.zip not found", nil, nil),
	}

	outcome := newTestReconciler(store, artifacts, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{})

	require.Equal(t, function.OutcomeFailed, outcome.Kind)
	require.Equal(t, function.ErrCodeArtifactNotFound, outcome.ErrorCode())
	require.True(t, outcome.ErrorCode().IsArtifact())
	require.Zero(t, store.count("update_code"))
	require.Zero(t, store.count("update_configuration"))
}

func TestReconcileUnreadableArtifactSkipsConfigurationUpdate(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	spec.MemorySize = memorySize(256)
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
	}
	artifacts := &stubArtifacts{
		readErr: function.NewError(function.ErrCodeArtifactNotFound, "code artifact build/orders.zip not found", nil, nil),
	}

	outcome := newTestReconciler(store, artifacts, &recordingPublisher{}, nil).Reconcile(context.Background(), spec, Options{})

	require.Equal(t, function.OutcomeFailed, outcome.Kind)
	require.Equal(t, function.ErrCodeArtifactNotFound, outcome.ErrorCode())
	require.Equal(t, []string{"MemorySize"}, outcome.ChangedFields)
	require.Equal(t, []string{"get_configuration"}, store.calls)
	require.Equal(t, 1, artifacts.reads)
}

func TestReconcileRemoteErrorsAreTerminal(t *testing.T) {
	t.Parallel()

	codes := []function.ErrorCode{
		function.ErrCodeRateLimited,
		function.ErrCodeServerError,
		function.ErrCodePermissionDenied,
		function.ErrCodeUnclassified,
	}

	for _, code := range codes {
		t.Run(string(code), func(t *testing.T) {
			t.Parallel()

			spec := desiredSpec()
			spec.MemorySize = memorySize(256)
			store := &stubStore{
				getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
					return remoteFor(spec, 128), nil
				},
				updateConfigurationFn: func(context.Context, function.UpdateConfigurationRequest) error {
					return function.NewError(code, "update configuration", errors.New("remote failure"), nil)
				},
			}
			metrics := &recordingMetrics{}

			outcome := newTestReconciler(store, &stubArtifacts{code: []byte("PK")}, &recordingPublisher{}, metrics).Reconcile(context.Background(), spec, Options{})

			require.Equal(t, code, outcome.ErrorCode())
			require.Equal(t, 1, store.count("update_configuration"))
			require.Zero(t, store.count("poll_status"))
			require.Zero(t, store.count("update_code"))
			require.Equal(t, 1, metrics.get(ports.MetricRemoteCalls+"|operation=update_configuration|status="+string(code)))
		})
	}
}

func TestReconcileLookupErrorIsNotTreatedAsMissing(t *testing.T) {
	t.Parallel()

	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return nil, function.NewError(function.ErrCodePermissionDenied, "get configuration", nil, nil)
		},
	}

	outcome := newTestReconciler(store, &stubArtifacts{code: []byte("PK")}, &recordingPublisher{}, nil).Reconcile(context.Background(), desiredSpec(), Options{})

	require.Equal(t, function.ErrCodePermissionDenied, outcome.ErrorCode())
	require.Zero(t, store.count("create"))
}

func TestReconcileConvergenceTimeoutReportsUpdating(t *testing.T) {
	t.Parallel()

	spec := desiredSpec()
	spec.MemorySize = memorySize(256)
	store := &stubStore{
		getConfigurationFn: func(context.Context, string) (*function.RemoteState, error) {
			return remoteFor(spec, 128), nil
		},
		pollStatusFn: func(context.Context, string) (function.UpdateStatus, error) {
			return function.UpdateStatus{State: function.UpdateInProgress}, nil
		},
	}
	events := &recordingPublisher{}

	outcome := newTestReconciler(store, &stubArtifacts{code: []byte("PK")}, events, nil).Reconcile(context.Background(), spec, Options{WaitMinutes: 1})

	require.Equal(t, function.OutcomeFailed, outcome.Kind)
	require.ErrorIs(t, outcome.Err, function.ErrConvergenceTimeout)
	require.True(t, outcome.Updating)
	require.Contains(t, outcome.Message(), "still updating")
	require.Zero(t, store.count("update_code"))
	require.True(t, events.contains(ports.EventReconcileFailed))
}

func TestReconcilePropagatesCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := ports.WithCorrelationID(context.Background(), "corr-123")
	events := &recordingPublisher{}

	outcome := newTestReconciler(&stubStore{}, &stubArtifacts{code: []byte("PK")}, events, nil).Reconcile(ctx, desiredSpec(), Options{})
	require.NoError(t, outcome.Err)

	require.NotEmpty(t, events.events)
	for _, evt := range events.events {
		require.Equal(t, "corr-123", evt.correlationID)
	}
}
