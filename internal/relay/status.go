package relay

import "fmt"

// State is the relay's connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
	// StateLost is terminal: the relay stopped retrying and needs a restart.
	StateLost State = "lost"
)

// Status is a snapshot of the connection state and the reconnect counter.
type Status struct {
	State       State
	Attempts    int
	MaxAttempts int
}

// Connected reports whether a connection is open.
func (s Status) Connected() bool {
	return s.State == StateConnected
}

// Message is the user-facing description of s.
func (s Status) Message() string {
	switch s.State {
	case StateConnected:
		return "Connected"
	case StateConnecting:
		return "Connecting..."
	case StateReconnecting:
		return fmt.Sprintf("Reconnecting... Attempt %d of %d", s.Attempts, s.MaxAttempts)
	case StateLost:
		return "Connection lost. Please restart to reconnect."
	default:
		return "Disconnected"
	}
}
