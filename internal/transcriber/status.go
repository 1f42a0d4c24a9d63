package transcriber

import "strings"

// State describes where the external batch job stands.
type State int

const (
	StatePending State = iota
	StateRunning
	StateDone
	StateError
	StateUnknown
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// JobStatus is the parsed view of the task sheet status cell.
type JobStatus struct {
	State  State
	Reason string
}

// ParseCellStatus interprets the raw status cell text. The batch tool writes
// "Done" on success, an error description on failure, and sometimes a progress
// note while working. An empty cell is the primed state: the tool has not
// written anything yet.
func ParseCellStatus(text string) JobStatus {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return JobStatus{State: StatePending}
	}
	lowered := strings.ToLower(trimmed)
	if strings.Contains(lowered, "done") {
		return JobStatus{State: StateDone}
	}
	if strings.Contains(lowered, "error") || strings.Contains(lowered, "fail") {
		return JobStatus{State: StateError, Reason: trimmed}
	}
	if strings.Contains(lowered, "running") || strings.Contains(lowered, "processing") {
		return JobStatus{State: StateRunning, Reason: trimmed}
	}
	return JobStatus{State: StateUnknown, Reason: trimmed}
}
