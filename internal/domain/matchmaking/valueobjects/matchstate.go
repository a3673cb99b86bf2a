package valueobjects

import "fmt"

type MatchState string

const (
	MatchStateMatched  MatchState = "matched"
	MatchStateReported MatchState = "reported"
)

var validMatchStates = map[MatchState]bool{
	MatchStateMatched:  true,
	MatchStateReported: true,
}

var matchStateTransitions = map[MatchState][]MatchState{
	MatchStateMatched: {
		MatchStateReported,
	},
}

func (s MatchState) String() string {
	return string(s)
}

func (s MatchState) IsValid() bool {
	return validMatchStates[s]
}

func (s MatchState) CanTransitionTo(next MatchState) bool {
	return contains(matchStateTransitions[s], next)
}

func (s MatchState) IsReported() bool {
	return s == MatchStateReported
}

func NewMatchState(s string) (MatchState, error) {
	state := MatchState(s)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid match state: %s", s)
	}
	return state, nil
}
