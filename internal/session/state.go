// Package session implements the lifecycle state machine shared by both event
// taxonomies. State is never stored: it is the result of folding lifecycle
// signals over an event sequence in total order, so the same log always
// reconstructs the same state.
package session

// Status is the derived lifecycle state of a session.
type Status string

// Session states. Completed, Failed and Cancelled are terminal; there are no
// transitions out of them.
const (
	NotStarted Status = "not_started"
	Active     Status = "active"
	Completed  Status = "completed"
	Failed     Status = "failed"
	Cancelled  Status = "cancelled"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case Completed, Failed, Cancelled:
		return true
	default:
		return false
	}
}

// Signal classifies a single event's effect on session lifecycle. Events that
// do not affect lifecycle (batch and navigation facts) map to SignalNone.
type Signal int

// Lifecycle signals.
const (
	SignalNone Signal = iota
	SignalStarted
	SignalCompleted
	SignalFailed
	SignalCancelled
)

// Reduce applies one signal to the current status. Once a terminal status is
// reached it is kept: duplicate or conflicting terminal events are accepted
// by the log, and the first one in total order wins.
func Reduce(current Status, sig Signal) Status {
	if current.Terminal() {
		return current
	}
	switch sig {
	case SignalStarted:
		if current == NotStarted {
			return Active
		}
		return current
	case SignalCompleted:
		return Completed
	case SignalFailed:
		return Failed
	case SignalCancelled:
		return Cancelled
	default:
		return current
	}
}

// Fold replays a signal sequence from NotStarted.
func Fold(signals []Signal) Status {
	status := NotStarted
	for _, sig := range signals {
		status = Reduce(status, sig)
	}
	return status
}
