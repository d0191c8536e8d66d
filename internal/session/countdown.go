package session

import (
	"sync"
	"time"
)

type TimerState string

const (
	TimerStopped  TimerState = "stopped"
	TimerRunning  TimerState = "running"
	TimerTimedOut TimerState = "timed_out"
)

// TimerSnapshot is a point-in-time copy of the countdown.
type TimerSnapshot struct {
	LimitSeconds     int        `json:"limit_seconds"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Running          bool       `json:"running"`
	TimedOut         bool       `json:"timed_out"`
	State            TimerState `json:"state"`
}

// Countdown is a per-session exam timer decremented once per interval.
//
// Every Start, Stop, Reset and SetTimeLimit bumps a generation counter; a
// tick carrying an older generation is discarded. Once any of those calls
// returns, no earlier tick can change the countdown.
type Countdown struct {
	mu        sync.Mutex
	scheduler Scheduler
	interval  time.Duration

	limitSeconds     int
	remainingSeconds int
	running          bool
	timedOut         bool

	generation uint64
	cancel     func()
	onTimeUp   func()
}

func NewCountdown(scheduler Scheduler, interval time.Duration) *Countdown {
	if scheduler == nil {
		scheduler = NewTickerScheduler()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Countdown{
		scheduler: scheduler,
		interval:  interval,
	}
}

// OnTimeUp registers fn to run once each time the countdown reaches zero.
// fn runs on the ticking goroutine without the countdown lock held.
func (c *Countdown) OnTimeUp(fn func()) {
	c.mu.Lock()
	c.onTimeUp = fn
	c.mu.Unlock()
}

// SetTimeLimit stops the countdown and sets both limit and remaining time.
func (c *Countdown) SetTimeLimit(minutes int) {
	if minutes < 0 {
		minutes = 0
	}
	c.mu.Lock()
	cancel := c.detachLocked()
	c.limitSeconds = minutes * 60
	c.remainingSeconds = c.limitSeconds
	c.timedOut = false
	c.mu.Unlock()

	release(cancel)
}

// Start begins (or restarts) decrementing from the current remaining time.
// It does nothing when nothing remains or the countdown already timed out.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.timedOut || c.remainingSeconds <= 0 {
		c.mu.Unlock()
		return
	}
	previous := c.detachLocked()
	c.generation++
	gen := c.generation
	c.running = true
	c.cancel = c.scheduler.Every(c.interval, func() bool {
		return c.tick(gen)
	})
	c.mu.Unlock()

	release(previous)
}

// Stop halts the countdown and keeps the remaining time.
func (c *Countdown) Stop() {
	c.mu.Lock()
	cancel := c.detachLocked()
	c.mu.Unlock()

	release(cancel)
}

// Reset stops the countdown, restores the configured limit and clears time-up.
func (c *Countdown) Reset() {
	c.mu.Lock()
	cancel := c.detachLocked()
	c.remainingSeconds = c.limitSeconds
	c.timedOut = false
	c.mu.Unlock()

	release(cancel)
}

func (c *Countdown) Snapshot() TimerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := TimerStopped
	switch {
	case c.timedOut:
		state = TimerTimedOut
	case c.running:
		state = TimerRunning
	}
	return TimerSnapshot{
		LimitSeconds:     c.limitSeconds,
		RemainingSeconds: c.remainingSeconds,
		Running:          c.running,
		TimedOut:         c.timedOut,
		State:            state,
	}
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingSeconds
}

func (c *Countdown) TimedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timedOut
}

// Elapsed is the consumed part of the configured limit, in seconds.
func (c *Countdown) Elapsed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limitSeconds - c.remainingSeconds
}

func (c *Countdown) tick(gen uint64) bool {
	c.mu.Lock()
	if gen != c.generation || !c.running {
		c.mu.Unlock()
		return false
	}

	if c.remainingSeconds > 0 {
		c.remainingSeconds--
	}
	if c.remainingSeconds > 0 {
		c.mu.Unlock()
		return true
	}

	// The scheduler drops this task when we return false.
	c.running = false
	c.timedOut = true
	c.cancel = nil
	hook := c.onTimeUp
	c.mu.Unlock()

	if hook != nil {
		hook()
	}
	return false
}

// detachLocked invalidates in-flight ticks and hands back the cancel func,
// which the caller must invoke after releasing c.mu.
func (c *Countdown) detachLocked() func() {
	c.generation++
	c.running = false
	cancel := c.cancel
	c.cancel = nil
	return cancel
}

func release(cancel func()) {
	if cancel != nil {
		cancel()
	}
}
