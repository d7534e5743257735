package workflow

// Status represents a task instance's position in the tracking workflow
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusSubmitted  Status = "submitted"
	StatusBlocked    Status = "blocked"
	StatusApproved   Status = "approved"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusNotStarted: true,
	StatusInProgress: true,
	StatusSubmitted:  true,
	StatusBlocked:    true,
	StatusApproved:   true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

var terminalStatuses = map[Status]bool{
	StatusCompleted: true,
	StatusCancelled: true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a known workflow status
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// All returns every valid status, in workflow order
func All() []Status {
	return []Status{
		StatusNotStarted,
		StatusInProgress,
		StatusSubmitted,
		StatusBlocked,
		StatusApproved,
		StatusCompleted,
		StatusCancelled,
	}
}
