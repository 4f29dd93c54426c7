package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/application/deploy"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/ports"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/tui/components"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, nil
	case EventMsg:
		m.handleEvent(msg)
		return m, nil
	case DoneMsg:
		outcome := msg.Outcome
		m.outcome = &outcome
		if outcome.Succeeded() {
			m.closeCurrent(components.StatusSuccess)
		} else {
			m.closeCurrent(components.StatusFailed)
		}
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.onCancel != nil && !m.cancelled {
				m.onCancel()
			}
			m.cancelled = true
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}

func (m *Model) handleEvent(msg EventMsg) {
	switch msg.Type {
	case ports.EventReconcilePhase:
		m.enter(stringOf(msg.Payload, "phase"))
	case ports.EventReconcileDecision:
		m.decision = stringOf(msg.Payload, "decision")
		if fields, ok := msg.Payload["changed_fields"].([]string); ok {
			m.changed = append([]string(nil), fields...)
		}
		m.annotate(string(deploy.PhaseConfiguringUpdate), m.decisionDetail())
	case ports.EventConvergencePoll:
		m.pollState = stringOf(msg.Payload, "state")
		if attempt, ok := msg.Payload["attempt"].(int); ok {
			m.polls = attempt
		} else {
			m.polls++
		}
		m.annotate(string(deploy.PhaseWaitingConvergence), fmt.Sprintf("poll %d: %s", m.polls, m.pollState))
	case ports.EventReconcileFailed:
		phase := stringOf(msg.Payload, "phase")
		if phase == "" || phase == m.current {
			phase = m.current
			m.closeCurrent(components.StatusFailed)
		}
		entry, ok := m.phases[phase]
		if !ok {
			return
		}
		entry.Status = components.StatusFailed
		if detail := stringOf(msg.Payload, "error"); detail != "" {
			entry.Detail = detail
		}
		m.phases[phase] = entry
	}
}

func (m Model) decisionDetail() string {
	switch m.decision {
	case deploy.DecisionDryRunStop:
		return "dry run: " + strings.Join(m.changed, ", ")
	case deploy.DecisionSkipConfiguration:
		return "no changes"
	case deploy.DecisionUpdateConfiguration:
		return "changed: " + strings.Join(m.changed, ", ")
	default:
		return ""
	}
}

func stringOf(payload map[string]interface{}, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}
