// Package outputs publishes deployment results to the caller, either to the
// file named by $GITHUB_OUTPUT or to a fallback writer.
package outputs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/infrastructure/gitinfo"
)

// EnvVar names the file outputs are appended to.
const EnvVar = "GITHUB_OUTPUT"

// Output keys.
const (
	KeyFunctionArn    = "function-arn"
	KeyVersion        = "version"
	KeySourceRevision = "source-revision"
)

// Output is one key/value pair.
type Output struct {
	Key   string
	Value string
}

// FromOutcome lists the outputs of a successful outcome. Empty values are
// skipped.
func FromOutcome(outcome function.Outcome, rev gitinfo.Revision) []Output {
	candidates := []Output{
		{Key: KeyFunctionArn, Value: outcome.Identity.ARN},
		{Key: KeyVersion, Value: outcome.Identity.Version},
		{Key: KeySourceRevision, Value: rev.Commit},
	}
	out := make([]Output, 0, len(candidates))
	for _, o := range candidates {
		if o.Value != "" {
			out = append(out, o)
		}
	}
	return out
}

// Writer appends outputs to path, or prints them to fallback when path is
// empty.
type Writer struct {
	path     string
	fallback io.Writer
}

// NewWriter creates a Writer.
func NewWriter(path string, fallback io.Writer) *Writer {
	return &Writer{path: path, fallback: fallback}
}

// FromEnv creates a Writer targeting $GITHUB_OUTPUT.
func FromEnv(fallback io.Writer) *Writer {
	return NewWriter(os.Getenv(EnvVar), fallback)
}

// Write emits every output.
func (w *Writer) Write(outputs []Output) error {
	if w.path == "" {
		if w.fallback == nil {
			return nil
		}
		for _, o := range outputs {
			if _, err := fmt.Fprintf(w.fallback, "%s=%s\n", o.Key, o.Value); err != nil {
				return fmt.Errorf("outputs: write %s: %w", o.Key, err)
			}
		}
		return nil
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("outputs: open %q: %w", w.path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, o := range outputs {
		b.WriteString(format(o))
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("outputs: write %q: %w", w.path, err)
	}
	return nil
}

// format renders o as a key=value line, switching to the heredoc form for
// multi-line values.
func format(o Output) string {
	if !strings.ContainsAny(o.Value, "\r\n") {
		return o.Key + "=" + o.Value + "\n"
	}
	delimiter := "ghadelimiter_" + uuid.NewString()
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", o.Key, delimiter, o.Value, delimiter)
}
