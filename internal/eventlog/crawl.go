package eventlog

import (
	"sort"
	"time"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/session"
)

// CrawlEntry is an appended crawl event with its sequence number.
type CrawlEntry = Entry[event.CrawlEvent]

// CrawlLog is the event log for the crawl taxonomy, with the batch-level
// derived queries the orchestrator and API consume.
type CrawlLog struct {
	*Log[event.CrawlEvent, event.CrawlSessionID]
}

// NewCrawlLog constructs an empty CrawlLog.
func NewCrawlLog() *CrawlLog {
	return &CrawlLog{
		Log: New[event.CrawlEvent, event.CrawlSessionID](
			func(e event.CrawlEvent) event.CrawlSessionID { return e.CrawlSession() },
			crawlSignal,
		),
	}
}

func crawlSignal(e event.CrawlEvent) session.Signal {
	switch e.(type) {
	case event.CrawlSessionStarted:
		return session.SignalStarted
	case event.CrawlSessionCompleted:
		return session.SignalCompleted
	case event.CrawlSessionFailed:
		return session.SignalFailed
	case event.CrawlSessionCancelled:
		return session.SignalCancelled
	default:
		return session.SignalNone
	}
}

// PendingBatch describes a scheduled batch with no recorded outcome yet.
type PendingBatch struct {
	Batch       event.BatchNumber
	ScheduledAt time.Time
}

// PendingBatchLoads returns every batch with a Scheduled event and no
// Completed or Failed event for the same (session, batch) pair, ordered by
// ScheduledAt ascending. If a batch was scheduled more than once, the first
// schedule in total order wins.
func (l *CrawlLog) PendingBatchLoads(id event.CrawlSessionID) []PendingBatch {
	scheduled := make(map[event.BatchNumber]PendingBatch)
	var order []event.BatchNumber
	done := make(map[event.BatchNumber]struct{})

	for _, e := range l.SessionEvents(id) {
		switch ev := e.(type) {
		case event.BatchLoadScheduled:
			if _, ok := scheduled[ev.Batch]; !ok {
				scheduled[ev.Batch] = PendingBatch{Batch: ev.Batch, ScheduledAt: ev.ScheduledAt}
				order = append(order, ev.Batch)
			}
		case event.BatchLoadCompleted:
			done[ev.Batch] = struct{}{}
		case event.BatchLoadFailed:
			done[ev.Batch] = struct{}{}
		}
	}

	var pending []PendingBatch
	for _, batch := range order {
		if _, ok := done[batch]; ok {
			continue
		}
		pending = append(pending, scheduled[batch])
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ScheduledAt.Before(pending[j].ScheduledAt)
	})
	return pending
}

// NextScheduledBatch returns the earliest pending batch, if any.
func (l *CrawlLog) NextScheduledBatch(id event.CrawlSessionID) (PendingBatch, bool) {
	pending := l.PendingBatchLoads(id)
	if len(pending) == 0 {
		return PendingBatch{}, false
	}
	return pending[0], true
}

// CompletedBatchCount counts BatchLoadCompleted events for the session.
func (l *CrawlLog) CompletedBatchCount(id event.CrawlSessionID) int {
	count := 0
	for _, e := range l.SessionEvents(id) {
		if _, ok := e.(event.BatchLoadCompleted); ok {
			count++
		}
	}
	return count
}

// FailedBatchCount counts BatchLoadFailed events for the session.
func (l *CrawlLog) FailedBatchCount(id event.CrawlSessionID) int {
	count := 0
	for _, e := range l.SessionEvents(id) {
		if _, ok := e.(event.BatchLoadFailed); ok {
			count++
		}
	}
	return count
}

// TotalFundsLoaded sums FundsInBatch over Completed events only. Scheduled
// and Started events never contribute, so the total cannot double-count.
func (l *CrawlLog) TotalFundsLoaded(id event.CrawlSessionID) int {
	total := 0
	for _, e := range l.SessionEvents(id) {
		if ev, ok := e.(event.BatchLoadCompleted); ok {
			total += ev.FundsInBatch
		}
	}
	return total
}

// BatchLoadTimestamps returns the OccurredAt of each Completed event in
// ascending order. Callers use the spacing to estimate throughput and ETA.
func (l *CrawlLog) BatchLoadTimestamps(id event.CrawlSessionID) []time.Time {
	var out []time.Time
	for _, e := range l.SessionEvents(id) {
		if ev, ok := e.(event.BatchLoadCompleted); ok {
			out = append(out, ev.OccurredAt())
		}
	}
	return out
}

// NextBatchNumber returns one past the highest scheduled batch number, so the
// first batch of a session is 1.
func (l *CrawlLog) NextBatchNumber(id event.CrawlSessionID) event.BatchNumber {
	highest := event.BatchNumber(0)
	for _, e := range l.SessionEvents(id) {
		if ev, ok := e.(event.BatchLoadScheduled); ok && ev.Batch > highest {
			highest = ev.Batch
		}
	}
	return highest + 1
}
