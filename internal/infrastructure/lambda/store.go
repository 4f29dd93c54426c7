package lambda

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/lambda"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// Client defines the Lambda operations used by the store.
type Client interface {
	GetFunctionConfiguration(ctx context.Context, params *sdk.GetFunctionConfigurationInput, optFns ...func(*sdk.Options)) (*sdk.GetFunctionConfigurationOutput, error)
	CreateFunction(ctx context.Context, params *sdk.CreateFunctionInput, optFns ...func(*sdk.Options)) (*sdk.CreateFunctionOutput, error)
	UpdateFunctionConfiguration(ctx context.Context, params *sdk.UpdateFunctionConfigurationInput, optFns ...func(*sdk.Options)) (*sdk.UpdateFunctionConfigurationOutput, error)
	UpdateFunctionCode(ctx context.Context, params *sdk.UpdateFunctionCodeInput, optFns ...func(*sdk.Options)) (*sdk.UpdateFunctionCodeOutput, error)
}

// Store implements ports.FunctionStore on top of the Lambda API. Retries are
// left to the SDK's retryer.
type Store struct {
	client Client
	logger ports.Logger
}

// NewStore creates a store from an SDK configuration.
func NewStore(cfg aws.Config, logger ports.Logger) *Store {
	return &Store{client: sdk.NewFromConfig(cfg), logger: logger}
}

// NewStoreWithClient creates a store with a custom client.
func NewStoreWithClient(client Client, logger ports.Logger) *Store {
	return &Store{client: client, logger: logger}
}

var _ ports.FunctionStore = (*Store)(nil)

// GetConfiguration reads the current configuration of name.
func (s *Store) GetConfiguration(ctx context.Context, name string) (*function.RemoteState, error) {
	out, err := s.client.GetFunctionConfiguration(ctx, &sdk.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("lambda: get function configuration %q: %w", name, err), "get_configuration", name)
	}

	return &function.RemoteState{
		ARN:        aws.ToString(out.FunctionArn),
		Version:    aws.ToString(out.Version),
		RevisionID: aws.ToString(out.RevisionId),
		LastUpdateStatus: function.UpdateStatus{
			State:  function.UpdateState(out.LastUpdateStatus),
			Reason: aws.ToString(out.LastUpdateStatusReason),
		},
		Config: remoteTree(out),
	}, nil
}

// Create creates the function described by req.
func (s *Store) Create(ctx context.Context, req function.CreateRequest) (function.Identity, error) {
	input := createInput(req)
	s.debug(ctx, "creating function", "function", req.Name, "fields", req.Body.Keys(), "code_bytes", len(req.ZipFile))

	out, err := s.client.CreateFunction(ctx, input)
	if err != nil {
		return function.Identity{}, classify(ctx, fmt.Errorf("lambda: create function %q: %w", req.Name, err), "create", req.Name)
	}
	return function.Identity{ARN: aws.ToString(out.FunctionArn), Version: aws.ToString(out.Version)}, nil
}

// UpdateConfiguration replaces the mutable configuration of req.Name.
func (s *Store) UpdateConfiguration(ctx context.Context, req function.UpdateConfigurationRequest) error {
	input := updateConfigurationInput(req)
	s.debug(ctx, "updating function configuration", "function", req.Name, "fields", req.Body.Keys())

	if _, err := s.client.UpdateFunctionConfiguration(ctx, input); err != nil {
		return classify(ctx, fmt.Errorf("lambda: update function configuration %q: %w", req.Name, err), "update_configuration", req.Name)
	}
	return nil
}

// UpdateCode uploads new code for req.Name.
func (s *Store) UpdateCode(ctx context.Context, req function.UpdateCodeRequest) (function.Identity, error) {
	input := updateCodeInput(req)
	s.debug(ctx, "updating function code", "function", req.Name, "dry_run", req.DryRun, "code_bytes", len(req.ZipFile))

	out, err := s.client.UpdateFunctionCode(ctx, input)
	if err != nil {
		return function.Identity{}, classify(ctx, fmt.Errorf("lambda: update function code %q: %w", req.Name, err), "update_code", req.Name)
	}
	return function.Identity{ARN: aws.ToString(out.FunctionArn), Version: aws.ToString(out.Version)}, nil
}

// PollStatus reports the last update status of name.
func (s *Store) PollStatus(ctx context.Context, name string) (function.UpdateStatus, error) {
	out, err := s.client.GetFunctionConfiguration(ctx, &sdk.GetFunctionConfigurationInput{
		FunctionName: aws.String(name),
	})
	if err != nil {
		return function.UpdateStatus{}, classify(ctx, fmt.Errorf("lambda: poll function status %q: %w", name, err), "poll_status", name)
	}

	status := function.UpdateStatus{
		State:  function.UpdateState(out.LastUpdateStatus),
		Reason: aws.ToString(out.LastUpdateStatusReason),
	}
	switch status.State {
	case function.UpdateSuccessful, function.UpdateFailed, "":
	default:
		status.State = function.UpdateInProgress
	}
	return status, nil
}

func (s *Store) debug(ctx context.Context, msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(ctx, msg, keyvals...)
	}
}
