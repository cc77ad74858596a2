package loan

import (
	"errors"
	"strings"
	"testing"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusApproved, StatusRejected, StatusActive, StatusCompleted}
	legal := map[Status]map[Status]bool{
		StatusPending:  {StatusApproved: true, StatusRejected: true},
		StatusApproved: {StatusActive: true},
		StatusActive:   {StatusCompleted: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[from][to]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s)=%v want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusPending:   false,
		StatusApproved:  false,
		StatusActive:    false,
		StatusRejected:  true,
		StatusCompleted: true,
	} {
		if got := Terminal(s); got != want {
			t.Errorf("Terminal(%s)=%v want %v", s, got, want)
		}
	}
}

func TestTransition(t *testing.T) {
	l := &LoanApplication{Status: StatusPending}
	if err := l.Transition(StatusApproved); err != nil {
		t.Fatalf("pending -> approved: %v", err)
	}
	if l.Status != StatusApproved {
		t.Fatalf("status=%s", l.Status)
	}

	err := l.Transition(StatusRejected)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if !strings.Contains(err.Error(), "approved -> rejected") {
		t.Errorf("error should name both states: %v", err)
	}
	if l.Status != StatusApproved {
		t.Errorf("failed transition must not mutate status, got %s", l.Status)
	}
}
