package domain

import "fmt"

// FlowState is the position of the OAuth flow
type FlowState int

const (
	FlowIdle FlowState = iota
	FlowAwaitingAuthorization
	FlowAwaitingToken
	FlowAuthenticated
)

func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "idle"
	case FlowAwaitingAuthorization:
		return "awaiting_authorization"
	case FlowAwaitingToken:
		return "awaiting_token"
	case FlowAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// CanTransition reports whether the flow may move from s to next.
// Begin is allowed from any state so the user can always restart the flow.
func (s FlowState) CanTransition(next FlowState) bool {
	switch next {
	case FlowAwaitingAuthorization:
		return true
	case FlowAwaitingToken:
		return s == FlowAwaitingAuthorization
	case FlowAuthenticated:
		return s == FlowAwaitingToken
	default:
		return false
	}
}
