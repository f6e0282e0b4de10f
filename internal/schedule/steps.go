package schedule

import (
	"fmt"
	"time"

	"github.com/fundwatch/fundwatch/internal/event"
)

// StepKind names one scripted interaction on a fund detail page.
type StepKind string

// Step kinds for the about-fund browsing flow: activate the SEK currency
// view first, then walk the chart periods.
const (
	StepActivateSekView  StepKind = "activate_sek_view"
	StepSelectOneMonth   StepKind = "select_1_month"
	StepSelectThreeMonths StepKind = "select_3_months"
	StepSelectOneYear    StepKind = "select_1_year"
	StepSelectThreeYears StepKind = "select_3_years"
	StepSelectFiveYears  StepKind = "select_5_years"
	StepSelectMax        StepKind = "select_max"
)

// Default per-kind minimum delays. The view activation triggers a heavier
// page reload than a period click, hence the longer wait.
const (
	DefaultActivationDelay = 30 * time.Second
	DefaultPeriodDelay     = 10 * time.Second

	// DefaultSafetyNetBuffer is held after the last scheduled step before
	// teardown: the last click's network response may still be in flight when
	// the nominal schedule ends, and tearing down earlier would lose it.
	DefaultSafetyNetBuffer = 15 * time.Second
)

// DefaultStepDelays returns the per-kind delay table used in production.
func DefaultStepDelays() map[StepKind]time.Duration {
	return map[StepKind]time.Duration{
		StepActivateSekView:   DefaultActivationDelay,
		StepSelectOneMonth:    DefaultPeriodDelay,
		StepSelectThreeMonths: DefaultPeriodDelay,
		StepSelectOneYear:     DefaultPeriodDelay,
		StepSelectThreeYears:  DefaultPeriodDelay,
		StepSelectFiveYears:   DefaultPeriodDelay,
		StepSelectMax:         DefaultPeriodDelay,
	}
}

// DefaultStepSequence is the full browsing script for one fund.
func DefaultStepSequence() []StepKind {
	return []StepKind{
		StepActivateSekView,
		StepSelectOneMonth,
		StepSelectThreeMonths,
		StepSelectOneYear,
		StepSelectThreeYears,
		StepSelectFiveYears,
		StepSelectMax,
	}
}

// Step is one scheduled interaction.
type Step struct {
	Kind   StepKind
	FireAt time.Time
}

// Schedule is the ordered step plan for one fund page plus the teardown time.
type Schedule struct {
	OrderBook event.OrderBookID
	Steps     []Step
	StopTime  time.Time
}

// ComputeSchedule derives cumulative fire times for the given step sequence:
// the first step fires at start, each subsequent step after the previous
// step's delay, and StopTime trails the last step's delay by safetyNet.
// Pure and deterministic given its inputs.
func ComputeSchedule(
	orderBook event.OrderBookID,
	start time.Time,
	kinds []StepKind,
	delays map[StepKind]time.Duration,
	safetyNet time.Duration,
) (Schedule, error) {
	if len(kinds) == 0 {
		return Schedule{}, fmt.Errorf("step sequence is empty")
	}
	if delays == nil {
		delays = DefaultStepDelays()
	}
	if safetyNet < 0 {
		return Schedule{}, fmt.Errorf("safety net buffer must be >= 0, got %s", safetyNet)
	}

	steps := make([]Step, 0, len(kinds))
	fireAt := start.UTC()
	for _, kind := range kinds {
		delay, ok := delays[kind]
		if !ok {
			return Schedule{}, fmt.Errorf("no delay configured for step %q", kind)
		}
		if delay < 0 {
			return Schedule{}, fmt.Errorf("delay for step %q must be >= 0, got %s", kind, delay)
		}
		steps = append(steps, Step{Kind: kind, FireAt: fireAt})
		// fireAt ends the loop at FireAt(last) + delay(last).
		fireAt = fireAt.Add(delay)
	}

	return Schedule{
		OrderBook: orderBook,
		Steps:     steps,
		StopTime:  fireAt.Add(safetyNet),
	}, nil
}
