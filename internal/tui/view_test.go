package tui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/application/deploy"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
	"github.com/alexisbeaulieu97/lambda-deploy/internal/tui/components"
)

func TestViewRendersPhases(t *testing.T) {
	t.Parallel()

	m := apply(t, NewModel("demo", "eu-west-1", true),
		phaseMsg(deploy.PhaseProbing),
		phaseMsg(deploy.PhaseConfiguringUpdate),
		decisionMsg(deploy.DecisionDryRunStop, "Timeout"),
	)

	view := m.View()
	require.Contains(t, view, "lambda-deploy • demo (eu-west-1) [dry run]")
	require.Contains(t, view, "Probe existing function")
	require.Contains(t, view, "dry run: Timeout")
	require.Contains(t, view, "1/2")
	require.NotContains(t, view, "Summary")
}

func TestViewRendersSummaryWhenDone(t *testing.T) {
	t.Parallel()

	m := apply(t, NewModel("demo", "eu-west-1", false),
		phaseMsg(deploy.PhaseCreating),
		DoneMsg{Outcome: function.Outcome{Kind: function.OutcomeCreated, Identity: function.Identity{ARN: "arn:demo", Version: "1"}}},
	)

	view := m.View()
	require.Contains(t, view, "Summary")
	require.Contains(t, view, "created function arn:demo")
}

func TestRenderSummary(t *testing.T) {
	t.Parallel()

	out := RenderSummary("demo", "us-east-1", function.Outcome{Kind: function.OutcomeCodeUpdated, Identity: function.Identity{ARN: "arn:demo"}})
	require.Contains(t, out, "lambda-deploy • demo (us-east-1)")
	require.Contains(t, out, "updated code of arn:demo")
}

func TestStatusIcon(t *testing.T) {
	t.Parallel()

	require.Contains(t, StatusIcon(components.StatusSuccess), "✓")
	require.Contains(t, StatusIcon(components.StatusFailed), "✗")
	require.Contains(t, StatusIcon(components.StatusRunning), "⏳")
	require.Contains(t, StatusIcon(components.StatusPending), "…")
}
