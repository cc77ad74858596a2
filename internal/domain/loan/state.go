package loan

import "fmt"

// transitions is the closed set of legal status moves. rejected and completed
// are terminal.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusActive},
	StatusActive:   {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal status move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func Terminal(s Status) bool { return len(transitions[s]) == 0 }

// Transition mutates the loan's status after checking the transition table.
// Side effects (schedule generation, asset flips, audit) belong to the caller.
func (l *LoanApplication) Transition(to Status) error {
	if !CanTransition(l.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, l.Status, to)
	}
	l.Status = to
	return nil
}
