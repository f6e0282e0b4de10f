// Package eventlog provides the append-only, in-memory event log the
// orchestration core derives all session state from. One generic
// implementation backs both taxonomies; per-taxonomy wrappers add the domain
// queries.
//
// All read queries are O(n) full-log scans. Expected event volume per run is
// in the tens to low hundreds, so simplicity is preferred over indexing; this
// is a deliberate scalability ceiling.
package eventlog

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fundwatch/fundwatch/internal/session"
)

// ErrZeroTimestamp is returned by Append when the event carries no timestamp.
// It is the only validation the log performs; content is never rejected.
var ErrZeroTimestamp = errors.New("event has zero timestamp")

// Event is the minimal contract the log needs from a domain event.
type Event interface {
	OccurredAt() time.Time
}

// Entry pairs an event with the monotonic sequence number assigned at append
// time. The sequence number breaks ties between events sharing a wall-clock
// timestamp, making the total order deterministic under concurrent appends.
type Entry[E Event] struct {
	Seq   uint64
	Event E
}

// Log is a thread-safe append-only sequence of events for one taxonomy.
// A coarse mutex guards appends and full-log scans; write and read rates are
// low enough that finer-grained locking would buy nothing.
type Log[E Event, ID comparable] struct {
	mu        sync.RWMutex
	entries   []Entry[E]
	nextSeq   uint64
	sessionOf func(E) ID
	signalOf  func(E) session.Signal
	observers []func(Entry[E])
}

// New constructs a Log. sessionOf extracts the owning session id from an
// event; signalOf classifies an event's lifecycle effect.
func New[E Event, ID comparable](sessionOf func(E) ID, signalOf func(E) session.Signal) *Log[E, ID] {
	return &Log[E, ID]{
		sessionOf: sessionOf,
		signalOf:  signalOf,
	}
}

// Observe registers a callback invoked synchronously after each successful
// append, outside the log's lock. Observers must not block for long; they are
// meant for metrics, logging, and archival fan-out. Not safe to call
// concurrently with Append.
func (l *Log[E, ID]) Observe(fn func(Entry[E])) {
	l.observers = append(l.observers, fn)
}

// Append records the event. It never rejects on content; the only requirement
// is a populated timestamp.
func (l *Log[E, ID]) Append(e E) error {
	if e.OccurredAt().IsZero() {
		return ErrZeroTimestamp
	}
	l.mu.Lock()
	l.nextSeq++
	entry := Entry[E]{Seq: l.nextSeq, Event: e}
	l.entries = append(l.entries, entry)
	l.mu.Unlock()

	for _, fn := range l.observers {
		fn(entry)
	}
	return nil
}

// Len returns the number of recorded events.
func (l *Log[E, ID]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear wipes the log. Test and explicit-reset use only.
func (l *Log[E, ID]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

// Events returns every event in total order: OccurredAt ascending, sequence
// number as tie-break.
func (l *Log[E, ID]) Events() []E {
	ordered := l.ordered()
	out := make([]E, len(ordered))
	for i, entry := range ordered {
		out[i] = entry.Event
	}
	return out
}

// SessionEvents returns the events owned by one session, in total order.
func (l *Log[E, ID]) SessionEvents(id ID) []E {
	var out []E
	for _, entry := range l.ordered() {
		if l.sessionOf(entry.Event) == id {
			out = append(out, entry.Event)
		}
	}
	return out
}

// SessionStatus folds the session's lifecycle signals in total order.
func (l *Log[E, ID]) SessionStatus(id ID) session.Status {
	status := session.NotStarted
	for _, entry := range l.ordered() {
		if l.sessionOf(entry.Event) != id {
			continue
		}
		status = session.Reduce(status, l.signalOf(entry.Event))
	}
	return status
}

// IsSessionActive reports whether a Started event exists for the session and
// no terminal event does.
func (l *Log[E, ID]) IsSessionActive(id ID) bool {
	return l.SessionStatus(id) == session.Active
}

// ActiveSession scans Started events newest-first and returns the first whose
// session has no terminal event. At most one session should be active at a
// time; that is a caller convention, not a log invariant.
func (l *Log[E, ID]) ActiveSession() (ID, bool) {
	ordered := l.ordered()
	seen := make(map[ID]struct{})
	for i := len(ordered) - 1; i >= 0; i-- {
		e := ordered[i].Event
		if l.signalOf(e) != session.SignalStarted {
			continue
		}
		id := l.sessionOf(e)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if l.IsSessionActive(id) {
			return id, true
		}
	}
	var zero ID
	return zero, false
}

// ordered returns a snapshot of all entries sorted by (OccurredAt, Seq).
func (l *Log[E, ID]) ordered() []Entry[E] {
	l.mu.RLock()
	snapshot := make([]Entry[E], len(l.entries))
	copy(snapshot, l.entries)
	l.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		ti, tj := snapshot[i].Event.OccurredAt(), snapshot[j].Event.OccurredAt()
		if ti.Equal(tj) {
			return snapshot[i].Seq < snapshot[j].Seq
		}
		return ti.Before(tj)
	})
	return snapshot
}
