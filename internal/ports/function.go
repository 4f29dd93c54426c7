package ports

import (
	"context"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
)

// FunctionStore is the remote control plane holding function resources.
// Implementations classify every failure into a function.DomainError:
//   - missing resource → ErrCodeNotFound
//   - throttling → ErrCodeRateLimited
//   - 5xx transport status → ErrCodeServerError
//   - access denied → ErrCodePermissionDenied
//   - anything else → ErrCodeUnclassified wrapping the message
//
// Implementations rely on their transport's retry policy and never retry on
// their own.
type FunctionStore interface {
	GetConfiguration(ctx context.Context, name string) (*function.RemoteState, error)
	Create(ctx context.Context, req function.CreateRequest) (function.Identity, error)
	UpdateConfiguration(ctx context.Context, req function.UpdateConfigurationRequest) error
	UpdateCode(ctx context.Context, req function.UpdateCodeRequest) (function.Identity, error)
	PollStatus(ctx context.Context, name string) (function.UpdateStatus, error)
}

// ArtifactStore produces and reads code archives. Read failures carry
// ErrCodeArtifactNotFound, ErrCodeArtifactPermission or
// ErrCodeArtifactUnreadable.
type ArtifactStore interface {
	// Package archives the directory at source and returns the archive path.
	Package(ctx context.Context, source string) (string, error)
	// ReadArtifact returns the bytes of a packaged archive.
	ReadArtifact(ctx context.Context, path string) ([]byte, error)
	// Release removes an archive Package generated. Archives Package passed
	// through unchanged are left alone.
	Release(ctx context.Context, archive string) error
}
