package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
)

// SummaryData is what the summary renders. Outcome is nil while the run is
// still in progress.
type SummaryData struct {
	Function  string
	Region    string
	Outcome   *function.Outcome
	Polls     int
	Cancelled bool
}

// Summary renders the terminal result of a deployment.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary, or "" while nothing has finished.
func (s Summary) View() string {
	out := s.data.Outcome
	if out == nil {
		if s.data.Cancelled {
			return "Deployment cancelled"
		}
		return ""
	}

	var lines []string
	if out.Succeeded() {
		lines = append(lines, "✓ "+out.Message())
	} else {
		lines = append(lines, "✗ "+out.Message())
		lines = append(lines, "Error code: "+string(out.ErrorCode()))
	}

	if out.Identity.ARN != "" {
		lines = append(lines, "Function ARN: "+out.Identity.ARN)
	}
	if out.Identity.Version != "" {
		lines = append(lines, "Version: "+out.Identity.Version)
	}
	if len(out.ChangedFields) > 0 {
		lines = append(lines, "Changed fields: "+strings.Join(out.ChangedFields, ", "))
	}
	if s.data.Polls > 0 {
		lines = append(lines, fmt.Sprintf("Status polls: %d", s.data.Polls))
	}
	if out.Duration > 0 {
		lines = append(lines, "Duration: "+out.Duration.Truncate(10*time.Millisecond).String())
	}
	return strings.Join(lines, "\n")
}
