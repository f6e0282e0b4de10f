package orchestrator

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fundwatch/fundwatch/internal/event"
	"github.com/fundwatch/fundwatch/internal/schedule"
)

// StartAboutFundSession begins a browsing session over totalFunds fund pages.
func (o *Orchestrator) StartAboutFundSession(totalFunds int, first event.OrderBookID) (event.AboutFundSessionID, error) {
	if active, ok := o.aboutLog.ActiveSession(); ok {
		return event.AboutFundSessionID{}, fmt.Errorf("session %s: %w", active, ErrSessionActive)
	}
	id := event.NewAboutFundSessionID()
	if err := o.aboutLog.Append(event.NewAboutFundSessionStarted(id, o.clock.Now(), totalFunds, first)); err != nil {
		return event.AboutFundSessionID{}, fmt.Errorf("append about-fund session started: %w", err)
	}
	o.logger.Info("about-fund session started",
		zap.String("session_id", id.String()),
		zap.Int("total_funds", totalFunds),
		zap.String("first_orderbook", string(first)),
	)
	return id, nil
}

// BeginNavigation records navigation to one fund detail page.
func (o *Orchestrator) BeginNavigation(
	id event.AboutFundSessionID,
	isin event.ISIN,
	orderBook event.OrderBookID,
	index int,
	url string,
) error {
	if !o.aboutLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.aboutLog.Append(event.NewAboutFundNavigationStarted(id, o.clock.Now(), isin, orderBook, index, url)); err != nil {
		return fmt.Errorf("append navigation started: %w", err)
	}
	return nil
}

// CompleteNavigation records the success of the most recent navigation.
func (o *Orchestrator) CompleteNavigation(id event.AboutFundSessionID) error {
	if !o.aboutLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.aboutLog.Append(event.NewAboutFundNavigationCompleted(id, o.clock.Now())); err != nil {
		return fmt.Errorf("append navigation completed: %w", err)
	}
	return nil
}

// FailNavigation records a failed navigation. The session stays active.
func (o *Orchestrator) FailNavigation(id event.AboutFundSessionID, reason string) error {
	if !o.aboutLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.aboutLog.Append(event.NewAboutFundNavigationFailed(id, o.clock.Now(), reason)); err != nil {
		return fmt.Errorf("append navigation failed: %w", err)
	}
	return nil
}

// CompleteAboutFundSession records that every planned fund was visited.
func (o *Orchestrator) CompleteAboutFundSession(id event.AboutFundSessionID) error {
	if !o.aboutLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	if err := o.aboutLog.Append(event.NewAboutFundSessionCompleted(id, o.clock.Now())); err != nil {
		return fmt.Errorf("append about-fund session completed: %w", err)
	}
	return nil
}

// CancelAboutFundSession records early termination of the browsing session.
func (o *Orchestrator) CancelAboutFundSession(id event.AboutFundSessionID, reason string) error {
	if !o.aboutLog.IsSessionActive(id) {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	visited := o.aboutLog.NavigationsCompleted(id)
	if err := o.aboutLog.Append(event.NewAboutFundSessionCancelled(id, o.clock.Now(), visited, reason)); err != nil {
		return fmt.Errorf("append about-fund session cancelled: %w", err)
	}
	o.logger.Info("about-fund session cancelled",
		zap.String("session_id", id.String()),
		zap.Int("funds_visited", visited),
		zap.String("reason", reason),
	)
	return nil
}

// ScheduleSteps computes the step plan for one fund page and arms one timer
// per step plus a teardown timer at the stop time. Each fired step re-checks
// that the session is still active before running.
func (o *Orchestrator) ScheduleSteps(id event.AboutFundSessionID, orderBook event.OrderBookID, kinds []schedule.StepKind) (schedule.Schedule, error) {
	if !o.aboutLog.IsSessionActive(id) {
		return schedule.Schedule{}, fmt.Errorf("session %s: %w", id, ErrSessionNotActive)
	}
	now := o.clock.Now()
	sched, err := schedule.ComputeSchedule(orderBook, now, kinds, o.cfg.StepDelays, o.cfg.SafetyNetBuffer)
	if err != nil {
		return schedule.Schedule{}, fmt.Errorf("compute step schedule: %w", err)
	}

	for _, step := range sched.Steps {
		o.timer.AfterFunc(step.FireAt.Sub(now), func() { o.runStep(id, orderBook, step.Kind) })
	}
	o.timer.AfterFunc(sched.StopTime.Sub(now), func() {
		if o.onStop != nil {
			o.onStop(id)
		}
	})

	o.logger.Debug("step schedule armed",
		zap.String("session_id", id.String()),
		zap.String("orderbook", string(orderBook)),
		zap.Int("steps", len(sched.Steps)),
		zap.Time("stop_time", sched.StopTime),
	)
	return sched, nil
}

func (o *Orchestrator) runStep(id event.AboutFundSessionID, orderBook event.OrderBookID, kind schedule.StepKind) {
	if !o.aboutLog.IsSessionActive(id) {
		o.logger.Debug("dropping step for inactive session",
			zap.String("session_id", id.String()),
			zap.String("step", string(kind)),
		)
		return
	}
	if o.steps == nil {
		return
	}
	if err := o.steps.RunStep(o.baseCtx, id, orderBook, kind); err != nil {
		o.logger.Warn("step failed",
			zap.String("session_id", id.String()),
			zap.String("orderbook", string(orderBook)),
			zap.String("step", string(kind)),
			zap.Error(err),
		)
	}
}
