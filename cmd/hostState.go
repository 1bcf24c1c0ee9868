package cmd

import "fmt"

// hostState tracks where a host is in its lifecycle. Only failures while
// dialing, handshaking or authenticating are fatal for the host.
type hostState int

const (
	stateDialing hostState = iota
	stateHandshaking
	stateAuthenticating
	stateRunning
	stateDone
	stateFatal
)

func (s hostState) String() string {
	switch s {
	case stateDialing:
		return "DIALING"
	case stateHandshaking:
		return "HANDSHAKING"
	case stateAuthenticating:
		return "AUTHENTICATING"
	case stateRunning:
		return "RUNNING"
	case stateDone:
		return "DONE"
	case stateFatal:
		return "FATAL"
	}
	return fmt.Sprintf("hostState(%d)", int(s))
}

// hostError is a fatal, host-scoped failure. State is the phase that failed.
type hostError struct {
	Host  string
	State hostState
	Err   error
}

func (e *hostError) Error() string {
	return fmt.Sprintf("host %s: %s failed: %v", e.Host, e.State, e.Err)
}

func (e *hostError) Unwrap() error { return e.Err }
