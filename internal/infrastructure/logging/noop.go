package logging

import (
	"context"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
)

// NoOpLogger discards every entry.
type NoOpLogger struct{}

var _ ports.Logger = (*NoOpLogger)(nil)

// NewNoOpLogger returns a ports.Logger that discards all log entries.
func NewNoOpLogger() ports.Logger {
	return &NoOpLogger{}
}

func (*NoOpLogger) Debug(context.Context, string, ...interface{}) {}

func (*NoOpLogger) Info(context.Context, string, ...interface{}) {}

func (*NoOpLogger) Warn(context.Context, string, ...interface{}) {}

func (*NoOpLogger) Error(context.Context, string, ...interface{}) {}

func (n *NoOpLogger) With(...interface{}) ports.Logger { return n }
