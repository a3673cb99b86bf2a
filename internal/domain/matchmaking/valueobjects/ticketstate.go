package valueobjects

import "fmt"

type TicketState string

const (
	TicketStateQueued   TicketState = "queued"
	TicketStateMatched  TicketState = "matched"
	TicketStateCanceled TicketState = "canceled"
)

var validTicketStates = map[TicketState]bool{
	TicketStateQueued:   true,
	TicketStateMatched:  true,
	TicketStateCanceled: true,
}

// Lifecycle transitions. matched and canceled are terminal.
var ticketStateTransitions = map[TicketState][]TicketState{
	TicketStateQueued: {
		TicketStateMatched,
		TicketStateCanceled,
	},
}

// Transitions allowed only when a matched ticket points at a match that was never stored.
var ticketStateRepairs = map[TicketState][]TicketState{
	TicketStateMatched: {
		TicketStateQueued,
		TicketStateCanceled,
	},
}

func (s TicketState) String() string {
	return string(s)
}

func (s TicketState) IsValid() bool {
	return validTicketStates[s]
}

func (s TicketState) CanTransitionTo(next TicketState) bool {
	return contains(ticketStateTransitions[s], next)
}

func (s TicketState) CanRepairTo(next TicketState) bool {
	return contains(ticketStateRepairs[s], next)
}

func (s TicketState) IsQueued() bool {
	return s == TicketStateQueued
}

func (s TicketState) IsMatched() bool {
	return s == TicketStateMatched
}

func (s TicketState) IsCanceled() bool {
	return s == TicketStateCanceled
}

func (s TicketState) IsTerminal() bool {
	return len(ticketStateTransitions[s]) == 0
}

func NewTicketState(s string) (TicketState, error) {
	state := TicketState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid ticket state: %s", s)
	}
	return state, nil
}

func contains[T comparable](items []T, want T) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
