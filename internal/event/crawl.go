package event

import "time"

// CrawlKind discriminates crawl-taxonomy event variants.
type CrawlKind string

// Crawl event kinds.
const (
	KindCrawlSessionStarted     CrawlKind = "CRAWL_SESSION_STARTED"
	KindCrawlSessionCompleted   CrawlKind = "CRAWL_SESSION_COMPLETED"
	KindCrawlSessionFailed      CrawlKind = "CRAWL_SESSION_FAILED"
	KindCrawlSessionCancelled   CrawlKind = "CRAWL_SESSION_CANCELLED"
	KindBatchLoadScheduled      CrawlKind = "BATCH_LOAD_SCHEDULED"
	KindBatchLoadDelayStarted   CrawlKind = "BATCH_LOAD_DELAY_STARTED"
	KindBatchLoadDelayCompleted CrawlKind = "BATCH_LOAD_DELAY_COMPLETED"
	KindBatchLoadStarted        CrawlKind = "BATCH_LOAD_STARTED"
	KindBatchLoadCompleted      CrawlKind = "BATCH_LOAD_COMPLETED"
	KindBatchLoadFailed         CrawlKind = "BATCH_LOAD_FAILED"
	KindDailyCrawlScheduled     CrawlKind = "DAILY_CRAWL_SCHEDULED"
	KindDailyCrawlReady         CrawlKind = "DAILY_CRAWL_READY"
)

// CrawlEvent is the sealed contract for crawl-session facts. The set of
// implementations in this package is closed; consumers switch on the concrete
// type or on Kind.
type CrawlEvent interface {
	CrawlSession() CrawlSessionID
	OccurredAt() time.Time
	Kind() CrawlKind

	isCrawlEvent()
}

// crawlBase carries the fields shared by every crawl event. It is embedded by
// each variant, which keeps events immutable value types constructible only
// through the New* functions below.
type crawlBase struct {
	SessionID CrawlSessionID `json:"session_id"`
	At        time.Time      `json:"occurred_at"`
}

func (b crawlBase) CrawlSession() CrawlSessionID { return b.SessionID }
func (b crawlBase) OccurredAt() time.Time        { return b.At }
func (crawlBase) isCrawlEvent()                  {}

// CrawlSessionStarted records that a crawl session began.
type CrawlSessionStarted struct {
	crawlBase
}

// NewCrawlSessionStarted builds a CrawlSessionStarted fact.
func NewCrawlSessionStarted(id CrawlSessionID, at time.Time) CrawlSessionStarted {
	return CrawlSessionStarted{crawlBase{SessionID: id, At: at.UTC()}}
}

// Kind implements CrawlEvent.
func (CrawlSessionStarted) Kind() CrawlKind { return KindCrawlSessionStarted }

// CrawlSessionCompleted records that a crawl session finished successfully.
type CrawlSessionCompleted struct {
	crawlBase
}

// NewCrawlSessionCompleted builds a CrawlSessionCompleted fact.
func NewCrawlSessionCompleted(id CrawlSessionID, at time.Time) CrawlSessionCompleted {
	return CrawlSessionCompleted{crawlBase{SessionID: id, At: at.UTC()}}
}

// Kind implements CrawlEvent.
func (CrawlSessionCompleted) Kind() CrawlKind { return KindCrawlSessionCompleted }

// CrawlSessionFailed records that a crawl session ended with an error.
type CrawlSessionFailed struct {
	crawlBase
	Reason string `json:"reason"`
}

// NewCrawlSessionFailed builds a CrawlSessionFailed fact.
func NewCrawlSessionFailed(id CrawlSessionID, at time.Time, reason string) CrawlSessionFailed {
	return CrawlSessionFailed{crawlBase: crawlBase{SessionID: id, At: at.UTC()}, Reason: reason}
}

// Kind implements CrawlEvent.
func (CrawlSessionFailed) Kind() CrawlKind { return KindCrawlSessionFailed }

// CrawlSessionCancelled records that a crawl session was cancelled. In-flight
// timers discover the cancellation by re-checking derived state.
type CrawlSessionCancelled struct {
	crawlBase
	Reason string `json:"reason"`
}

// NewCrawlSessionCancelled builds a CrawlSessionCancelled fact.
func NewCrawlSessionCancelled(id CrawlSessionID, at time.Time, reason string) CrawlSessionCancelled {
	return CrawlSessionCancelled{crawlBase: crawlBase{SessionID: id, At: at.UTC()}, Reason: reason}
}

// Kind implements CrawlEvent.
func (CrawlSessionCancelled) Kind() CrawlKind { return KindCrawlSessionCancelled }

// BatchLoadScheduled records that a batch was queued to run at ScheduledAt.
type BatchLoadScheduled struct {
	crawlBase
	Batch       BatchNumber `json:"batch_number"`
	ScheduledAt time.Time   `json:"scheduled_at"`
}

// NewBatchLoadScheduled builds a BatchLoadScheduled fact.
func NewBatchLoadScheduled(id CrawlSessionID, at time.Time, batch BatchNumber, scheduledAt time.Time) BatchLoadScheduled {
	return BatchLoadScheduled{
		crawlBase:   crawlBase{SessionID: id, At: at.UTC()},
		Batch:       batch,
		ScheduledAt: scheduledAt.UTC(),
	}
}

// Kind implements CrawlEvent.
func (BatchLoadScheduled) Kind() CrawlKind { return KindBatchLoadScheduled }

// BatchLoadDelayStarted records the start of the randomized pre-batch delay.
type BatchLoadDelayStarted struct {
	crawlBase
	Batch BatchNumber   `json:"batch_number"`
	Delay time.Duration `json:"delay"`
}

// NewBatchLoadDelayStarted builds a BatchLoadDelayStarted fact.
func NewBatchLoadDelayStarted(id CrawlSessionID, at time.Time, batch BatchNumber, delay time.Duration) BatchLoadDelayStarted {
	return BatchLoadDelayStarted{
		crawlBase: crawlBase{SessionID: id, At: at.UTC()},
		Batch:     batch,
		Delay:     delay,
	}
}

// Kind implements CrawlEvent.
func (BatchLoadDelayStarted) Kind() CrawlKind { return KindBatchLoadDelayStarted }

// BatchLoadDelayCompleted records that the pre-batch delay elapsed.
type BatchLoadDelayCompleted struct {
	crawlBase
	Batch BatchNumber `json:"batch_number"`
}

// NewBatchLoadDelayCompleted builds a BatchLoadDelayCompleted fact.
func NewBatchLoadDelayCompleted(id CrawlSessionID, at time.Time, batch BatchNumber) BatchLoadDelayCompleted {
	return BatchLoadDelayCompleted{crawlBase: crawlBase{SessionID: id, At: at.UTC()}, Batch: batch}
}

// Kind implements CrawlEvent.
func (BatchLoadDelayCompleted) Kind() CrawlKind { return KindBatchLoadDelayCompleted }

// BatchLoadStarted records that the batch fetch work began.
type BatchLoadStarted struct {
	crawlBase
	Batch BatchNumber `json:"batch_number"`
}

// NewBatchLoadStarted builds a BatchLoadStarted fact.
func NewBatchLoadStarted(id CrawlSessionID, at time.Time, batch BatchNumber) BatchLoadStarted {
	return BatchLoadStarted{crawlBase: crawlBase{SessionID: id, At: at.UTC()}, Batch: batch}
}

// Kind implements CrawlEvent.
func (BatchLoadStarted) Kind() CrawlKind { return KindBatchLoadStarted }

// BatchLoadCompleted records a successful batch fetch and how many funds it
// yielded. Throughput queries count only these events.
type BatchLoadCompleted struct {
	crawlBase
	Batch        BatchNumber `json:"batch_number"`
	FundsInBatch int         `json:"funds_in_batch"`
}

// NewBatchLoadCompleted builds a BatchLoadCompleted fact.
func NewBatchLoadCompleted(id CrawlSessionID, at time.Time, batch BatchNumber, fundsInBatch int) BatchLoadCompleted {
	return BatchLoadCompleted{
		crawlBase:    crawlBase{SessionID: id, At: at.UTC()},
		Batch:        batch,
		FundsInBatch: fundsInBatch,
	}
}

// Kind implements CrawlEvent.
func (BatchLoadCompleted) Kind() CrawlKind { return KindBatchLoadCompleted }

// BatchLoadFailed records a failed batch fetch. Failure is data: the session
// stays active until an explicit session-level terminal event.
type BatchLoadFailed struct {
	crawlBase
	Batch  BatchNumber `json:"batch_number"`
	Reason string      `json:"reason"`
}

// NewBatchLoadFailed builds a BatchLoadFailed fact.
func NewBatchLoadFailed(id CrawlSessionID, at time.Time, batch BatchNumber, reason string) BatchLoadFailed {
	return BatchLoadFailed{
		crawlBase: crawlBase{SessionID: id, At: at.UTC()},
		Batch:     batch,
		Reason:    reason,
	}
}

// Kind implements CrawlEvent.
func (BatchLoadFailed) Kind() CrawlKind { return KindBatchLoadFailed }

// DailyCrawlScheduled records the randomized time of the next full re-crawl.
type DailyCrawlScheduled struct {
	crawlBase
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewDailyCrawlScheduled builds a DailyCrawlScheduled fact.
func NewDailyCrawlScheduled(id CrawlSessionID, at time.Time, scheduledFor time.Time) DailyCrawlScheduled {
	return DailyCrawlScheduled{
		crawlBase:    crawlBase{SessionID: id, At: at.UTC()},
		ScheduledFor: scheduledFor.UTC(),
	}
}

// Kind implements CrawlEvent.
func (DailyCrawlScheduled) Kind() CrawlKind { return KindDailyCrawlScheduled }

// DailyCrawlReady records that the daily re-crawl time elapsed. It is a pure
// signal; starting a new session remains the orchestrator's decision.
type DailyCrawlReady struct {
	crawlBase
}

// NewDailyCrawlReady builds a DailyCrawlReady fact.
func NewDailyCrawlReady(id CrawlSessionID, at time.Time) DailyCrawlReady {
	return DailyCrawlReady{crawlBase{SessionID: id, At: at.UTC()}}
}

// Kind implements CrawlEvent.
func (DailyCrawlReady) Kind() CrawlKind { return KindDailyCrawlReady }
