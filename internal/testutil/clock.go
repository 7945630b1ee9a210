package testutil

import (
	"sync"
	"time"

	"github.com/roach88/tween/internal/tween"
)

// ManualScheduler hands out tickers that only tick when a test fires them.
//
// Ticks are delivered on an unbuffered channel, so a Fire returns once the
// tween loop has received the tick. Firing the next tick therefore waits for
// the previous one to be fully processed, which makes runs deterministic.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type ManualScheduler struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

// NewManualScheduler creates a scheduler with no tickers.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// NewTicker implements tween.Scheduler.
func (s *ManualScheduler) NewTicker(d time.Duration) tween.Ticker {
	s.mu.Lock()
	defer s.mu.Unlock()

	tk := &ManualTicker{
		interval: d,
		c:        make(chan time.Time),
		stopped:  make(chan struct{}),
	}
	s.tickers = append(s.tickers, tk)
	return tk
}

// Last returns the most recently created ticker, or nil if none exists.
//
// Start creates the ticker before returning, so Last is valid right after a
// successful Start.
func (s *ManualScheduler) Last() *ManualTicker {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tickers) == 0 {
		return nil
	}
	return s.tickers[len(s.tickers)-1]
}

// Count returns how many tickers have been created.
func (s *ManualScheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// ManualTicker is a tween.Ticker driven by Fire.
type ManualTicker struct {
	interval time.Duration
	c        chan time.Time
	stopped  chan struct{}
	once     sync.Once

	mu    sync.Mutex
	fired int
	now   time.Time
}

// C implements tween.Ticker.
func (tk *ManualTicker) C() <-chan time.Time {
	return tk.c
}

// Stop implements tween.Ticker. Safe to call more than once.
func (tk *ManualTicker) Stop() {
	tk.once.Do(func() { close(tk.stopped) })
}

// Fire delivers one tick and reports whether it was received.
// Returns false once the ticker is stopped.
func (tk *ManualTicker) Fire() bool {
	tk.mu.Lock()
	tk.now = tk.now.Add(tk.interval)
	now := tk.now
	tk.mu.Unlock()

	select {
	case tk.c <- now:
		tk.mu.Lock()
		tk.fired++
		tk.mu.Unlock()
		return true
	case <-tk.stopped:
		return false
	}
}

// FireN fires up to n ticks and returns how many were received.
func (tk *ManualTicker) FireN(n int) int {
	for i := 0; i < n; i++ {
		if !tk.Fire() {
			return i
		}
	}
	return n
}

// Drain fires until the ticker is stopped and returns how many ticks were received.
func (tk *ManualTicker) Drain() int {
	n := 0
	for tk.Fire() {
		n++
	}
	return n
}

// Fired returns the number of ticks received so far.
func (tk *ManualTicker) Fired() int {
	tk.mu.Lock()
	defer tk.mu.Unlock()
	return tk.fired
}

// Interval returns the interval the ticker was created with.
func (tk *ManualTicker) Interval() time.Duration {
	return tk.interval
}

// Stopped reports whether Stop has been called.
func (tk *ManualTicker) Stopped() bool {
	select {
	case <-tk.stopped:
		return true
	default:
		return false
	}
}
