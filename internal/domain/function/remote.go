package function

import "github.com/alexisbeaulieu97/lambda-deploy/internal/domain/configtree"

// UpdateState mirrors the control plane's last-update status.
type UpdateState string

const (
	UpdateInProgress UpdateState = "InProgress"
	UpdateSuccessful UpdateState = "Successful"
	UpdateFailed     UpdateState = "Failed"
)

// UpdateStatus is the result of a single convergence poll.
type UpdateStatus struct {
	State  UpdateState
	Reason string
}

// Stable reports whether the last update finished applying.
func (s UpdateStatus) Stable() bool {
	// The control plane leaves the status empty for functions never updated.
	return s.State == UpdateSuccessful || s.State == ""
}

// RemoteState is a read-only snapshot of the function as the control plane
// reports it. Config holds only the fields a DesiredSpec can express, keyed by
// their API names.
type RemoteState struct {
	ARN              string
	Version          string
	RevisionID       string
	LastUpdateStatus UpdateStatus
	Config           configtree.Value
}

// Identity is the resulting resource identity published to callers.
type Identity struct {
	ARN     string
	Version string
}

// PlaceholderIdentity is reported when a validation-only request returns no
// identity of its own.
func PlaceholderIdentity(region, name string) Identity {
	return Identity{
		ARN:     "arn:aws:lambda:" + region + ":000000000000:function:" + name,
		Version: LatestVersion,
	}
}

// Complete fills missing fields from fallback.
func (i Identity) Complete(fallback Identity) Identity {
	if i.ARN == "" {
		i.ARN = fallback.ARN
	}
	if i.Version == "" {
		i.Version = fallback.Version
	}
	return i
}
