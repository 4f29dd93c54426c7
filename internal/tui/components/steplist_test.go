package components

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPhaseListKeepsOrder(t *testing.T) {
	t.Parallel()

	list := NewPhaseList([]string{"probing", "configuring_update"}, map[string]PhaseEntry{
		"configuring_update": {Label: "Compare configuration", Status: StatusRunning},
		"probing":            {Label: "Probe existing function", Status: StatusSuccess},
	})

	entries := list.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "probing", entries[0].ID)
	require.Equal(t, "configuring_update", entries[1].ID)
	require.Equal(t, 1, list.Completed())
}

func TestPhaseListEntriesAreCopies(t *testing.T) {
	t.Parallel()

	list := NewPhaseList([]string{"probing"}, map[string]PhaseEntry{"probing": {Status: StatusSuccess}})
	entries := list.Entries()
	entries[0].Status = StatusFailed

	require.Equal(t, StatusSuccess, list.Entries()[0].Status)
}

func TestPhaseListEmpty(t *testing.T) {
	t.Parallel()

	list := NewPhaseList(nil, nil)
	require.Empty(t, list.Entries())
	require.Zero(t, list.Completed())
}
