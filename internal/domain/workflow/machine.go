package workflow

import "fmt"

// transitions maps each status to the set of statuses reachable from it.
// Cancellation is handled separately: it is reachable from every
// non-terminal status.
var transitions = map[Status][]Status{
	StatusNotStarted: {StatusInProgress},
	StatusInProgress: {StatusSubmitted, StatusBlocked},
	StatusSubmitted:  {StatusApproved, StatusCompleted, StatusBlocked},
	StatusBlocked:    {StatusInProgress},
	StatusApproved:   {StatusCompleted},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether moving from one status to another is
// permitted. A same-status transition is always a permitted no-op, which
// is what makes repeated completion requests idempotent.
func CanTransition(from, to Status) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	if to == StatusCancelled {
		return !from.IsTerminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status change, returning ErrInvalidStatus or
// ErrInvalidTransition on failure.
func Transition(from, to Status) error {
	if !from.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, from)
	}
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// PermittedNext returns the statuses reachable from the given status,
// not counting the same-status no-op.
func PermittedNext(from Status) []Status {
	if !from.IsValid() {
		return nil
	}
	next := make([]Status, 0, len(transitions[from])+1)
	next = append(next, transitions[from]...)
	if !from.IsTerminal() {
		next = append(next, StatusCancelled)
	}
	return next
}
