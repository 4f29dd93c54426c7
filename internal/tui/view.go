package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(m.title()))

	progress := components.NewProgress(m.TotalPhases()).View(m.CompletedPhases())
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := components.NewPhaseList(m.order, m.phases).Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Phases"), renderPhaseEntries(entries))
	}

	summary := components.NewSummary(components.SummaryData{
		Function:  m.function,
		Region:    m.region,
		Outcome:   m.outcome,
		Polls:     m.polls,
		Cancelled: m.cancelled,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// RenderSummary formats an outcome for non-interactive output.
func RenderSummary(name, region string, outcome function.Outcome) string {
	header := titleStyle.Render(fmt.Sprintf("lambda-deploy • %s (%s)", name, region))
	body := components.NewSummary(components.SummaryData{
		Function: name,
		Region:   region,
		Outcome:  &outcome,
	}).View()
	return lipgloss.JoinVertical(lipgloss.Left, header, summaryStyle.Render(body))
}

func renderPhaseEntries(entries []components.PhaseEntry) string {
	var lines []string
	for _, entry := range entries {
		line := fmt.Sprintf(" %s %s", StatusIcon(entry.Status), entry.Label)
		if strings.TrimSpace(entry.Detail) != "" {
			line = fmt.Sprintf("%s: %s", line, detailStyle.Render(entry.Detail))
		}
		if entry.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, entry.Duration.Truncate(10*time.Millisecond))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) title() string {
	title := fmt.Sprintf("lambda-deploy • %s", m.function)
	if m.region != "" {
		title = fmt.Sprintf("%s (%s)", title, m.region)
	}
	if m.dryRun {
		title += " [dry run]"
	}
	return title
}

// StatusIcon returns the glyph representing a phase status.
func StatusIcon(status string) string {
	switch status {
	case components.StatusSuccess:
		return successStyle.Render("✓")
	case components.StatusRunning:
		return runningStyle.Render("⏳")
	case components.StatusFailed:
		return failureStyle.Render("✗")
	default:
		return pendingStyle.Render("…")
	}
}
