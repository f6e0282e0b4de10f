// Package orchestrator drives crawl and about-fund sessions by appending
// lifecycle events to the logs and arming timers for the delays the schedule
// package computes. It performs no fetching itself: the actual work is behind
// the BatchRunner and StepRunner interfaces, and all waiting is behind Timer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
	"github.com/fundwatch/fundwatch/internal/schedule"
)

// Orchestration errors.
var (
	// ErrSessionActive is returned by StartSession while another crawl
	// session is still active. The log itself stays permissive; this is the
	// single in-process enforcement point of the one-active-session rule.
	ErrSessionActive = errors.New("another crawl session is active")

	// ErrSessionNotActive is returned when an operation targets a session
	// that never started or already reached a terminal state.
	ErrSessionNotActive = errors.New("session is not active")
)

// BatchRunner performs one "load more" fetch cycle. It is an external
// collaborator; the orchestrator only records its outcome.
type BatchRunner interface {
	LoadBatch(ctx context.Context, id event.CrawlSessionID, batch event.BatchNumber) (fundsInBatch int, err error)
}

// StepRunner performs one scripted interaction on a fund detail page.
type StepRunner interface {
	RunStep(ctx context.Context, id event.AboutFundSessionID, orderBook event.OrderBookID, kind schedule.StepKind) error
}

// Config carries the orchestrator's scheduling knobs.
type Config struct {
	StepDelays      map[schedule.StepKind]time.Duration
	SafetyNetBuffer time.Duration
}

// Orchestrator appends domain facts and arms timers. All derived state lives
// in the logs; the orchestrator itself holds no mutable session state.
type Orchestrator struct {
	crawlLog  *eventlog.CrawlLog
	aboutLog  *eventlog.AboutFundLog
	clock     Clock
	timer     Timer
	delays    *schedule.DelayGenerator
	daily     *schedule.DailyScheduler
	batches   BatchRunner
	steps     StepRunner
	cfg       Config
	logger    *zap.Logger
	onDaily   func(event.CrawlSessionID)
	onStop    func(event.AboutFundSessionID)
	baseCtx   context.Context
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithDailyReadyHook registers a callback invoked after DailyCrawlReady is
// appended. Starting the next session remains the callback's decision.
func WithDailyReadyHook(fn func(event.CrawlSessionID)) Option {
	return func(o *Orchestrator) { o.onDaily = fn }
}

// WithStopHook registers a callback invoked when an about-fund schedule
// reaches its stop time (safety net included).
func WithStopHook(fn func(event.AboutFundSessionID)) Option {
	return func(o *Orchestrator) { o.onStop = fn }
}

// WithBaseContext sets the parent context passed to runners from timer
// callbacks. Defaults to context.Background().
func WithBaseContext(ctx context.Context) Option {
	return func(o *Orchestrator) { o.baseCtx = ctx }
}

// New constructs an Orchestrator.
func New(
	crawlLog *eventlog.CrawlLog,
	aboutLog *eventlog.AboutFundLog,
	clock Clock,
	timer Timer,
	delays *schedule.DelayGenerator,
	daily *schedule.DailyScheduler,
	batches BatchRunner,
	steps StepRunner,
	cfg Config,
	logger *zap.Logger,
	opts ...Option,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StepDelays == nil {
		cfg.StepDelays = schedule.DefaultStepDelays()
	}
	if cfg.SafetyNetBuffer <= 0 {
		cfg.SafetyNetBuffer = schedule.DefaultSafetyNetBuffer
	}
	o := &Orchestrator{
		crawlLog: crawlLog,
		aboutLog: aboutLog,
		clock:    clock,
		timer:    timer,
		delays:   delays,
		daily:    daily,
		batches:  batches,
		steps:    steps,
		cfg:      cfg,
		logger:   logger,
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// StartSession begins a new crawl session, refusing while any session is
// active.
func (o *Orchestrator) StartSession() (event.CrawlSessionID, error) {
	if active, ok := o.crawlLog.ActiveSession(); ok {
		return event.CrawlSessionID{}, fmt.Errorf("session %s: %w", active, ErrSessionActive)
	}
	id := event.NewCrawlSessionID()
	if err := o.crawlLog.Append(event.NewCrawlSessionStarted(id, o.clock.Now())); err != nil {
		return event.CrawlSessionID{}, fmt.Errorf("append session started: %w", err)
	}
	o.logger.Info("crawl session started", zap.String("session_id", id.String()))
	return id, nil
}

// ScheduleNextBatch draws a randomized delay, records the schedule, and arms
// the timer that will run the batch. It returns the batch number and the
// drawn delay.
func (o *Orchestrator) ScheduleNextBatch(id event.CrawlSessionID) (event.BatchNumber, time.Duration, error) {
	if !o.crawlLog.IsSessionActive(id) {
		return 0, 0, fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	batch := o.crawlLog.NextBatchNumber(id)
	delay := o.delays.Next()
	now := o.clock.Now()

	if err := o.crawlLog.Append(event.NewBatchLoadScheduled(id, now, batch, now.Add(delay))); err != nil {
		return 0, 0, fmt.Errorf("append batch scheduled: %w", err)
	}
	if err := o.crawlLog.Append(event.NewBatchLoadDelayStarted(id, now, batch, delay)); err != nil {
		return 0, 0, fmt.Errorf("append delay started: %w", err)
	}
	o.timer.AfterFunc(delay, func() { o.runBatch(id, batch) })

	o.logger.Debug("batch scheduled",
		zap.String("session_id", id.String()),
		zap.Int("batch", int(batch)),
		zap.Duration("delay", delay),
	)
	return batch, delay, nil
}

// runBatch fires on the timer goroutine once the randomized delay elapses.
func (o *Orchestrator) runBatch(id event.CrawlSessionID, batch event.BatchNumber) {
	// Cancellation is discovered here, not delivered: a terminal event
	// appended while the timer was pending flips IsSessionActive.
	if !o.crawlLog.IsSessionActive(id) {
		o.logger.Debug("dropping batch for inactive session",
			zap.String("session_id", id.String()),
			zap.Int("batch", int(batch)),
		)
		return
	}
	now := o.clock.Now()
	o.mustAppendCrawl(event.NewBatchLoadDelayCompleted(id, now, batch))
	o.mustAppendCrawl(event.NewBatchLoadStarted(id, o.clock.Now(), batch))

	funds, err := o.batches.LoadBatch(o.baseCtx, id, batch)
	if err != nil {
		o.mustAppendCrawl(event.NewBatchLoadFailed(id, o.clock.Now(), batch, err.Error()))
		o.logger.Warn("batch load failed",
			zap.String("session_id", id.String()),
			zap.Int("batch", int(batch)),
			zap.Error(err),
		)
		return
	}
	o.mustAppendCrawl(event.NewBatchLoadCompleted(id, o.clock.Now(), batch, funds))
}

// CompleteSession records a successful end of the crawl session.
func (o *Orchestrator) CompleteSession(id event.CrawlSessionID) error {
	if !o.crawlLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.crawlLog.Append(event.NewCrawlSessionCompleted(id, o.clock.Now())); err != nil {
		return fmt.Errorf("append session completed: %w", err)
	}
	o.logger.Info("crawl session completed",
		zap.String("session_id", id.String()),
		zap.Int("batches", o.crawlLog.CompletedBatchCount(id)),
		zap.Int("funds", o.crawlLog.TotalFundsLoaded(id)),
	)
	return nil
}

// FailSession records a fatal end of the crawl session.
func (o *Orchestrator) FailSession(id event.CrawlSessionID, reason string) error {
	if !o.crawlLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.crawlLog.Append(event.NewCrawlSessionFailed(id, o.clock.Now(), reason)); err != nil {
		return fmt.Errorf("append session failed: %w", err)
	}
	return nil
}

// CancelSession records cancellation. Pending timers are not interrupted;
// they discover the terminal state when they fire.
func (o *Orchestrator) CancelSession(id event.CrawlSessionID, reason string) error {
	if !o.crawlLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.crawlLog.Append(event.NewCrawlSessionCancelled(id, o.clock.Now(), reason)); err != nil {
		return fmt.Errorf("append session cancelled: %w", err)
	}
	o.logger.Info("crawl session cancelled",
		zap.String("session_id", id.String()),
		zap.String("reason", reason),
	)
	return nil
}

// ScheduleDailyRecrawl computes tomorrow's randomized re-crawl instant for a
// finished session, records it, and arms the timer that will append
// DailyCrawlReady. The decision to actually start crawling again belongs to
// the WithDailyReadyHook callback.
func (o *Orchestrator) ScheduleDailyRecrawl(id event.CrawlSessionID) (time.Time, error) {
	if o.crawlLog.IsSessionActive(id) {
		return time.Time{}, fmt.Errorf("session %s still active: %w", id, ErrSessionActive)
	}
	now := o.clock.Now()
	next := o.daily.NextRun(now)
	if err := o.crawlLog.Append(event.NewDailyCrawlScheduled(id, now, next)); err != nil {
		return time.Time{}, fmt.Errorf("append daily crawl scheduled: %w", err)
	}
	o.timer.AfterFunc(next.Sub(now), func() {
		o.mustAppendCrawl(event.NewDailyCrawlReady(id, o.clock.Now()))
		if o.onDaily != nil {
			o.onDaily(id)
		}
	})
	o.logger.Info("daily recrawl scheduled",
		zap.String("session_id", id.String()),
		zap.Time("scheduled_for", next),
	)
	return next, nil
}

// mustAppendCrawl appends from timer callbacks, where the only possible error
// is a zero timestamp, which the clock cannot produce.
func (o *Orchestrator) mustAppendCrawl(e event.CrawlEvent) {
	if err := o.crawlLog.Append(e); err != nil {
		o.logger.Error("append crawl event failed", zap.String("kind", string(e.Kind())), zap.Error(err))
	}
}
