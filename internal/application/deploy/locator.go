package deploy

import (
	"context"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// Locator determines whether a named function exists in the remote store.
type Locator struct {
	store  ports.FunctionStore
	logger ports.Logger
}

// NewLocator constructs a Locator over store.
func NewLocator(store ports.FunctionStore, logger ports.Logger) *Locator {
	return &Locator{store: store, logger: logger}
}

// Locate returns the current remote state, or nil when the store reports the
// function as not found. Every other error is returned unchanged.
func (l *Locator) Locate(ctx context.Context, name string) (*function.RemoteState, error) {
	state, err := l.store.GetConfiguration(ctx, name)
	if err != nil {
		if function.IsCode(err, function.ErrCodeNotFound) {
			if l.logger != nil {
				l.logger.Debug(ctx, "function not found", "function", name)
			}
			return nil, nil
		}
		return nil, err
	}
	return state, nil
}

// Exists reports whether the function exists.
func (l *Locator) Exists(ctx context.Context, name string) (bool, error) {
	state, err := l.Locate(ctx, name)
	if err != nil {
		return false, err
	}
	return state != nil, nil
}
