package ports

import (
	"context"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
)

// Deployment is a loaded deployment document: the desired function state plus
// the run settings that steer reconciliation.
type Deployment struct {
	Spec     function.DesiredSpec
	Settings Settings
}

// Settings tune a single reconciliation run.
type Settings struct {
	DryRun              bool
	Verbose             bool
	WaitMinutes         int
	PollIntervalSeconds int
	MaxAttempts         int
	AssumeRoleArn       string
	LogFormat           string
}

// ConfigLoader loads deployment documents from an external source. Error
// mapping expectations:
//   - io/fs.ErrNotExist → ErrCodeValidation
//   - schema or YAML parsing failures → ErrCodeValidation
//   - context cancellation → ErrCodeCancelled
//   - unexpected I/O issues → ErrCodeInternal with wrapped cause
type ConfigLoader interface {
	// Load parses and validates the document at path and maps it onto the
	// domain. Respect ctx before expensive work.
	Load(ctx context.Context, path string) (*Deployment, error)

	// Validate performs the same checks as Load without producing a
	// deployment. It must not have side effects.
	Validate(ctx context.Context, path string) error
}
