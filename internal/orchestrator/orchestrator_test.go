package orchestrator

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/eventlog"
	"github.com/fundwatch/fundwatch/internal/schedule"
	"github.com/fundwatch/fundwatch/internal/session"
)

// fakeClock hands out strictly increasing instants so every appended event
// gets a distinct timestamp.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

// fakeTimer records armed callbacks; tests fire them explicitly.
type fakeTimer struct {
	mu    sync.Mutex
	armed []armedTimer
}

type armedTimer struct {
	delay time.Duration
	fn    func()
}

func (t *fakeTimer) AfterFunc(d time.Duration, fn func()) func() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = append(t.armed, armedTimer{delay: d, fn: fn})
	return func() bool { return true }
}

func (t *fakeTimer) fireAll() {
	t.mu.Lock()
	pending := t.armed
	t.armed = nil
	t.mu.Unlock()
	for _, a := range pending {
		a.fn()
	}
}

func (t *fakeTimer) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.armed)
}

type stubBatchRunner struct {
	funds int
	err   error
}

func (r *stubBatchRunner) LoadBatch(context.Context, event.CrawlSessionID, event.BatchNumber) (int, error) {
	return r.funds, r.err
}

type recordingStepRunner struct {
	mu   sync.Mutex
	runs []schedule.StepKind
}

func (r *recordingStepRunner) RunStep(_ context.Context, _ event.AboutFundSessionID, _ event.OrderBookID, kind schedule.StepKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, kind)
	return nil
}

func (r *recordingStepRunner) kinds() []schedule.StepKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]schedule.StepKind(nil), r.runs...)
}

type testRig struct {
	orch     *Orchestrator
	crawlLog *eventlog.CrawlLog
	aboutLog *eventlog.AboutFundLog
	timer    *fakeTimer
	batches  *stubBatchRunner
	steps    *recordingStepRunner
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	delays, err := schedule.NewDelayGenerator(rand.NewPCG(1, 2), schedule.DefaultDelayBounds())
	require.NoError(t, err)
	daily, err := schedule.NewDailyScheduler(rand.NewPCG(3, 4), schedule.DefaultRecrawlWindow())
	require.NoError(t, err)

	rig := &testRig{
		crawlLog: eventlog.NewCrawlLog(),
		aboutLog: eventlog.NewAboutFundLog(),
		timer:    &fakeTimer{},
		batches:  &stubBatchRunner{funds: 20},
		steps:    &recordingStepRunner{},
	}
	rig.orch = New(
		rig.crawlLog,
		rig.aboutLog,
		newFakeClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)),
		rig.timer,
		delays,
		daily,
		rig.batches,
		rig.steps,
		Config{},
		nil,
	)
	return rig
}

func crawlKinds(events []event.CrawlEvent) []event.CrawlKind {
	out := make([]event.CrawlKind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}

func TestStartSessionExclusivity(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	id, err := rig.orch.StartSession()
	require.NoError(t, err)
	require.False(t, id.IsZero())
	require.True(t, rig.crawlLog.IsSessionActive(id))

	_, err = rig.orch.StartSession()
	require.ErrorIs(t, err, ErrSessionActive)

	require.NoError(t, rig.orch.CompleteSession(id))
	second, err := rig.orch.StartSession()
	require.NoError(t, err)
	require.NotEqual(t, id, second)
}

// TestBatchLifecycleEvents drives one batch end to end and checks the exact
// event sequence lands in the log.
func TestBatchLifecycleEvents(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	id, err := rig.orch.StartSession()
	require.NoError(t, err)

	batch, delay, err := rig.orch.ScheduleNextBatch(id)
	require.NoError(t, err)
	require.Equal(t, event.BatchNumber(1), batch)
	require.GreaterOrEqual(t, delay, schedule.DefaultMinBatchDelay)
	require.LessOrEqual(t, delay, schedule.DefaultMaxBatchDelay)

	pending := rig.crawlLog.PendingBatchLoads(id)
	require.Len(t, pending, 1)

	rig.timer.fireAll()

	require.Equal(t, []event.CrawlKind{
		event.KindCrawlSessionStarted,
		event.KindBatchLoadScheduled,
		event.KindBatchLoadDelayStarted,
		event.KindBatchLoadDelayCompleted,
		event.KindBatchLoadStarted,
		event.KindBatchLoadCompleted,
	}, crawlKinds(rig.crawlLog.SessionEvents(id)))

	require.Empty(t, rig.crawlLog.PendingBatchLoads(id))
	require.Equal(t, 20, rig.crawlLog.TotalFundsLoaded(id))
}

func TestBatchFailureIsRecordedNotFatal(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	rig.batches.err = errors.New("show more button missing")
	id, err := rig.orch.StartSession()
	require.NoError(t, err)

	_, _, err = rig.orch.ScheduleNextBatch(id)
	require.NoError(t, err)
	rig.timer.fireAll()

	require.Equal(t, 1, rig.crawlLog.FailedBatchCount(id))
	require.Equal(t, 0, rig.crawlLog.CompletedBatchCount(id))
	// One failed batch does not end the session.
	require.True(t, rig.crawlLog.IsSessionActive(id))
}

// TestCancelledSessionDropsPendingTimer: a timer armed before cancellation
// fires but discovers the terminal state and appends nothing.
func TestCancelledSessionDropsPendingTimer(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	id, err := rig.orch.StartSession()
	require.NoError(t, err)
	_, _, err = rig.orch.ScheduleNextBatch(id)
	require.NoError(t, err)

	require.NoError(t, rig.orch.CancelSession(id, "operator stop"))
	before := len(rig.crawlLog.SessionEvents(id))

	rig.timer.fireAll()

	require.Len(t, rig.crawlLog.SessionEvents(id), before)
	require.Equal(t, session.Cancelled, rig.crawlLog.SessionStatus(id))
}

func TestScheduleNextBatchRequiresActiveSession(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	_, _, err := rig.orch.ScheduleNextBatch(event.NewCrawlSessionID())
	require.ErrorIs(t, err, ErrSessionNotActive)
}

func TestTerminalOperationsRequireActiveSession(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	id, err := rig.orch.StartSession()
	require.NoError(t, err)
	require.NoError(t, rig.orch.CompleteSession(id))

	require.ErrorIs(t, rig.orch.CompleteSession(id), ErrSessionNotActive)
	require.ErrorIs(t, rig.orch.FailSession(id, "x"), ErrSessionNotActive)
	require.ErrorIs(t, rig.orch.CancelSession(id, "x"), ErrSessionNotActive)
}

func TestScheduleDailyRecrawl(t *testing.T) {
	t.Parallel()

	var notified []event.CrawlSessionID
	rig := newTestRig(t)
	rig.orch.onDaily = func(id event.CrawlSessionID) { notified = append(notified, id) }

	id, err := rig.orch.StartSession()
	require.NoError(t, err)

	// Still active: scheduling a recrawl is a caller bug.
	_, err = rig.orch.ScheduleDailyRecrawl(id)
	require.Error(t, err)

	require.NoError(t, rig.orch.CompleteSession(id))
	next, err := rig.orch.ScheduleDailyRecrawl(id)
	require.NoError(t, err)
	require.GreaterOrEqual(t, next.Hour(), schedule.DefaultWindowOpenHour)
	require.Less(t, next.Hour(), schedule.DefaultWindowCloseHour)
	require.Equal(t, 2, next.Day())

	events := rig.crawlLog.SessionEvents(id)
	last := events[len(events)-1]
	require.Equal(t, event.KindDailyCrawlScheduled, last.Kind())

	rig.timer.fireAll()
	events = rig.crawlLog.SessionEvents(id)
	last = events[len(events)-1]
	require.Equal(t, event.KindDailyCrawlReady, last.Kind())
	require.Equal(t, []event.CrawlSessionID{id}, notified)
}
