package eventlog

import (
	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/session"
)

// AboutFundEntry is an appended about-fund event with its sequence number.
type AboutFundEntry = Entry[event.AboutFundEvent]

// AboutFundLog is the event log for the fund-detail browsing taxonomy.
type AboutFundLog struct {
	*Log[event.AboutFundEvent, event.AboutFundSessionID]
}

// NewAboutFundLog constructs an empty AboutFundLog.
func NewAboutFundLog() *AboutFundLog {
	return &AboutFundLog{
		Log: New[event.AboutFundEvent, event.AboutFundSessionID](
			func(e event.AboutFundEvent) event.AboutFundSessionID { return e.AboutFundSession() },
			aboutFundSignal,
		),
	}
}

func aboutFundSignal(e event.AboutFundEvent) session.Signal {
	switch e.(type) {
	case event.AboutFundSessionStarted:
		return session.SignalStarted
	case event.AboutFundSessionCompleted:
		return session.SignalCompleted
	case event.AboutFundSessionCancelled:
		return session.SignalCancelled
	default:
		return session.SignalNone
	}
}

// TotalFunds returns the fund count announced by the session's Started event,
// or zero when the session is unknown.
func (l *AboutFundLog) TotalFunds(id event.AboutFundSessionID) int {
	for _, e := range l.SessionEvents(id) {
		if ev, ok := e.(event.AboutFundSessionStarted); ok {
			return ev.TotalFunds
		}
	}
	return 0
}

// NavigationsCompleted counts completed fund-page visits for the session.
func (l *AboutFundLog) NavigationsCompleted(id event.AboutFundSessionID) int {
	count := 0
	for _, e := range l.SessionEvents(id) {
		if _, ok := e.(event.AboutFundNavigationCompleted); ok {
			count++
		}
	}
	return count
}

// NavigationsFailed counts failed fund-page visits for the session.
func (l *AboutFundLog) NavigationsFailed(id event.AboutFundSessionID) int {
	count := 0
	for _, e := range l.SessionEvents(id) {
		if _, ok := e.(event.AboutFundNavigationFailed); ok {
			count++
		}
	}
	return count
}

// LastNavigation returns the most recently started navigation, if any.
func (l *AboutFundLog) LastNavigation(id event.AboutFundSessionID) (event.AboutFundNavigationStarted, bool) {
	var (
		last  event.AboutFundNavigationStarted
		found bool
	)
	for _, e := range l.SessionEvents(id) {
		if ev, ok := e.(event.AboutFundNavigationStarted); ok {
			last = ev
			found = true
		}
	}
	return last, found
}
