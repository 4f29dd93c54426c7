package function

import "time"

// OutcomeKind is the terminal state of one reconciliation run.
type OutcomeKind string

const (
	OutcomeCreated              OutcomeKind = "Created"
	OutcomeCodeUpdated          OutcomeKind = "CodeUpdated"
	OutcomeConfigAndCodeUpdated OutcomeKind = "ConfigAndCodeUpdated"
	OutcomeNoOpDryRun           OutcomeKind = "NoOpDryRun"
	OutcomeFailed               OutcomeKind = "Failed"
)

// Outcome is the single result of a reconciliation run.
type Outcome struct {
	Kind          OutcomeKind
	Identity      Identity
	DryRun        bool
	ChangedFields []string
	// Updating is set when a configuration update was accepted but did not
	// stabilize before the wait bound.
	Updating bool
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the run reached a non-failed terminal state.
func (o Outcome) Succeeded() bool {
	return o.Kind != OutcomeFailed
}

// ErrorCode returns the failure category, or "" for successful runs.
func (o Outcome) ErrorCode() ErrorCode {
	if o.Err == nil {
		return ""
	}
	if code := CodeOf(o.Err); code != "" {
		return code
	}
	return ErrCodeInternal
}

// Message is the single human-readable line published for the run.
func (o Outcome) Message() string {
	switch o.Kind {
	case OutcomeFailed:
		if o.Updating {
			return "function is still updating: " + o.Err.Error()
		}
		if o.Err != nil {
			return o.Err.Error()
		}
		return "reconciliation failed"
	case OutcomeCreated:
		return "created function " + o.Identity.ARN
	case OutcomeConfigAndCodeUpdated:
		return "updated configuration and code of " + o.Identity.ARN
	case OutcomeNoOpDryRun:
		return "dry run: configuration changes detected, nothing applied"
	default:
		if o.DryRun {
			return "dry run: code update validated for " + o.Identity.ARN
		}
		return "updated code of " + o.Identity.ARN
	}
}
