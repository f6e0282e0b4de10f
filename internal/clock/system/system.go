// Package system provides a real clock implementation.
package system

import "time"

// Clock implements orchestrator.Clock using time.Now. All timestamps that
// enter the event log come from here, normalized to UTC.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
