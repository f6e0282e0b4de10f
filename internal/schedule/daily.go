package schedule

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"
)

// Default evening window for the daily re-crawl, UTC. A run at the same
// instant every day is a detectable pattern, so the actual time is drawn
// uniformly from inside the window.
const (
	DefaultWindowOpenHour  = 19
	DefaultWindowCloseHour = 21
)

// RecrawlWindow is the daily UTC window re-crawls are scheduled inside.
type RecrawlWindow struct {
	OpenHour  int
	CloseHour int
}

// DefaultRecrawlWindow returns the production window.
func DefaultRecrawlWindow() RecrawlWindow {
	return RecrawlWindow{OpenHour: DefaultWindowOpenHour, CloseHour: DefaultWindowCloseHour}
}

// Validate checks the window is usable.
func (w RecrawlWindow) Validate() error {
	if w.OpenHour < 0 || w.OpenHour > 23 {
		return fmt.Errorf("window open hour must be in [0,23], got %d", w.OpenHour)
	}
	if w.CloseHour <= w.OpenHour || w.CloseHour > 24 {
		return fmt.Errorf("window close hour must be in (%d,24], got %d", w.OpenHour, w.CloseHour)
	}
	return nil
}

// DailyScheduler computes the next randomized re-crawl instant. Safe for
// concurrent use.
type DailyScheduler struct {
	mu     sync.Mutex
	rng    *rand.Rand
	window RecrawlWindow
}

// NewDailyScheduler constructs a scheduler over the given source and window.
func NewDailyScheduler(src rand.Source, window RecrawlWindow) (*DailyScheduler, error) {
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("recrawl window: %w", err)
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &DailyScheduler{rng: rand.New(src), window: window}, nil
}

// Window returns the configured window.
func (s *DailyScheduler) Window() RecrawlWindow {
	return s.window
}

// NextRun returns a uniformly random instant inside tomorrow's window,
// relative to now in UTC.
func (s *DailyScheduler) NextRun(now time.Time) time.Time {
	now = now.UTC()
	tomorrow := now.AddDate(0, 0, 1)
	open := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), s.window.OpenHour, 0, 0, 0, time.UTC)
	span := time.Duration(s.window.CloseHour-s.window.OpenHour) * time.Hour

	s.mu.Lock()
	offset := time.Duration(s.rng.Int64N(int64(span)))
	s.mu.Unlock()
	return open.Add(offset)
}

// Elapsed reports whether the scheduled instant has been reached.
func Elapsed(now, scheduled time.Time) bool {
	return !now.Before(scheduled)
}
