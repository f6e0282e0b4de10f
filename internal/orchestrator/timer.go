package orchestrator

import "time"

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Timer is the external dispatcher that owns all real waiting. The core never
// sleeps or blocks: it arms a callback and returns. The returned cancel
// reports whether the callback was stopped before firing; a fired callback is
// expected to re-check derived log state and drop itself if its session is no
// longer active.
type Timer interface {
	AfterFunc(d time.Duration, fn func()) (cancel func() bool)
}

// SystemTimer implements Timer on time.AfterFunc.
type SystemTimer struct{}

// NewSystemTimer creates a SystemTimer.
func NewSystemTimer() *SystemTimer {
	return &SystemTimer{}
}

// AfterFunc arms fn to run on its own goroutine after d.
func (*SystemTimer) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
