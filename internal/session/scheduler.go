package session

import (
	"sync"
	"time"
)

// Scheduler runs fn every interval until fn returns false or the returned
// cancel func is called. Once cancel returns, fn is not invoked again.
type Scheduler interface {
	Every(interval time.Duration, fn func() bool) (cancel func())
}

type tickerScheduler struct{}

// NewTickerScheduler returns a Scheduler backed by time.Ticker. Cancel blocks
// until the ticking goroutine has exited, so it must not be called from fn.
func NewTickerScheduler() Scheduler {
	return tickerScheduler{}
}

func (tickerScheduler) Every(interval time.Duration, fn func() bool) func() {
	ticker := time.NewTicker(interval)
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !fn() {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
		<-done
	}
}

// ManualScheduler fires registered tasks only when Tick is called. It makes
// countdown behaviour deterministic in tests.
type ManualScheduler struct {
	mu    sync.Mutex
	next  int
	tasks map[int]func() bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]func() bool)}
}

func (m *ManualScheduler) Every(_ time.Duration, fn func() bool) func() {
	m.mu.Lock()
	id := m.next
	m.next++
	m.tasks[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.tasks, id)
		m.mu.Unlock()
	}
}

// Tick fires every active task once.
func (m *ManualScheduler) Tick() {
	m.mu.Lock()
	ids := make([]int, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.mu.Lock()
		fn, ok := m.tasks[id]
		m.mu.Unlock()
		if !ok {
			continue
		}
		if !fn() {
			m.mu.Lock()
			delete(m.tasks, id)
			m.mu.Unlock()
		}
	}
}

// Advance calls Tick n times.
func (m *ManualScheduler) Advance(n int) {
	for i := 0; i < n; i++ {
		m.Tick()
	}
}

// Active returns the number of tasks still scheduled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
