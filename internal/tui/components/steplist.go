package components

import "time"

// Phase statuses.
const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// PhaseEntry is one reconciliation phase as displayed.
type PhaseEntry struct {
	ID       string
	Label    string
	Status   string
	Detail   string
	Duration time.Duration
}

// PhaseList holds phases in the order they were entered.
type PhaseList struct {
	entries []PhaseEntry
}

// NewPhaseList constructs a phase list component.
func NewPhaseList(order []string, phases map[string]PhaseEntry) PhaseList {
	entries := make([]PhaseEntry, 0, len(order))
	for _, id := range order {
		entry := phases[id]
		entry.ID = id
		entries = append(entries, entry)
	}
	return PhaseList{entries: entries}
}

// Entries returns the ordered phase entries.
func (l PhaseList) Entries() []PhaseEntry {
	clone := make([]PhaseEntry, len(l.entries))
	copy(clone, l.entries)
	return clone
}

// Completed counts phases that finished successfully.
func (l PhaseList) Completed() int {
	n := 0
	for _, e := range l.entries {
		if e.Status == StatusSuccess {
			n++
		}
	}
	return n
}
