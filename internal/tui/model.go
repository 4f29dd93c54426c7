package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/application/deploy"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/tui/components"
)

// EventMsg carries a reconciler event into the program.
type EventMsg struct {
	Type    string
	Payload map[string]interface{}
}

// DoneMsg reports the terminal outcome of the run.
type DoneMsg struct {
	Outcome function.Outcome
}

type tickMsg struct{}

// Model contains the Bubbletea state for the deployment view.
type Model struct {
	function  string
	region    string
	dryRun    bool
	phases    map[string]components.PhaseEntry
	order     []string
	current   string
	entered   time.Time
	decision  string
	changed   []string
	polls     int
	pollState string
	outcome   *function.Outcome
	finished  bool
	cancelled bool
	onCancel  func()
	now       func() time.Time
}

// Option customises a Model.
type Option func(*Model)

// WithCancel registers the function called when the user interrupts the run.
func WithCancel(cancel func()) Option {
	return func(m *Model) {
		m.onCancel = cancel
	}
}

// WithClock overrides the time source used for phase durations.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// NewModel constructs a TUI model for one function deployment.
func NewModel(name, region string, dryRun bool, opts ...Option) Model {
	m := Model{
		function: name,
		region:   region,
		dryRun:   dryRun,
		phases:   make(map[string]components.PhaseEntry),
		order:    make([]string, 0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

// TotalPhases returns how many phases the current decision is expected to
// walk through.
func (m Model) TotalPhases() int {
	switch m.decision {
	case deploy.DecisionCreate, deploy.DecisionDryRunStop:
		return 2
	case deploy.DecisionSkipConfiguration:
		return 3
	default:
		return 4
	}
}

// CompletedPhases returns the number of phases that finished successfully.
func (m Model) CompletedPhases() int {
	return components.NewPhaseList(m.order, m.phases).Completed()
}

// IsFinished reports whether the run has terminated.
func (m Model) IsFinished() bool {
	return m.finished
}

// Outcome returns the terminal outcome once the run is done.
func (m Model) Outcome() (function.Outcome, bool) {
	if m.outcome == nil {
		return function.Outcome{}, false
	}
	return *m.outcome, true
}

func (m *Model) enter(phase string) {
	switch phase {
	case "", string(deploy.PhaseStart):
		return
	case string(deploy.PhaseDone):
		m.closeCurrent(components.StatusSuccess)
		return
	case string(deploy.PhaseFailed):
		m.closeCurrent(components.StatusFailed)
		return
	}
	if phase == m.current {
		return
	}
	m.closeCurrent(components.StatusSuccess)
	if _, exists := m.phases[phase]; !exists {
		m.order = append(m.order, phase)
	}
	m.phases[phase] = components.PhaseEntry{
		ID:     phase,
		Label:  PhaseLabel(phase),
		Status: components.StatusRunning,
	}
	m.current = phase
	m.entered = m.now()
}

func (m *Model) closeCurrent(status string) {
	if m.current == "" {
		return
	}
	entry := m.phases[m.current]
	entry.Status = status
	entry.Duration = m.now().Sub(m.entered)
	m.phases[m.current] = entry
	m.current = ""
}

func (m *Model) annotate(phase, detail string) {
	entry, ok := m.phases[phase]
	if !ok {
		return
	}
	entry.Detail = detail
	m.phases[phase] = entry
}

// PhaseLabel returns the display label of a reconciler phase.
func PhaseLabel(phase string) string {
	switch deploy.Phase(phase) {
	case deploy.PhaseProbing:
		return "Probe existing function"
	case deploy.PhaseCreating:
		return "Create function"
	case deploy.PhaseConfiguringUpdate:
		return "Compare configuration"
	case deploy.PhaseWaitingConvergence:
		return "Wait for configuration update"
	case deploy.PhaseUpdatingCode:
		return "Upload code"
	default:
		return phase
	}
}
