/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"sync"
	"time"
)

// TimerCallback receives a snapshot of the countdown after each decrement.
type TimerCallback func(TimerState)

// Timer is the room-scoped authoritative countdown. Clients never compute
// their own remaining time; they render what the last tick reported. The
// expire callback fires exactly once, after which the timer stops itself.
type Timer struct {
	mu       sync.Mutex
	state    TimerState
	stop     chan struct{}
	expired  bool
	interval time.Duration

	onTick   TimerCallback
	onExpire TimerCallback
}

func NewTimer(totalSeconds int, onTick, onExpire TimerCallback) *Timer {
	return &Timer{
		state: TimerState{
			TotalSeconds:     totalSeconds,
			RemainingSeconds: totalSeconds,
		},
		interval: time.Second,
		onTick:   onTick,
		onExpire: onExpire,
	}
}

// Start begins decrementing once per interval. Idempotent while running.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.state.Running || t.expired {
		t.mu.Unlock()
		return
	}
	t.state.Running = true
	stop := make(chan struct{})
	t.stop = stop
	interval := t.interval
	t.mu.Unlock()

	go t.run(stop, interval)
}

func (t *Timer) run(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if !t.state.Running {
				t.mu.Unlock()
				return
			}
			t.state.RemainingSeconds--
			snapshot := t.state
			expired := t.state.RemainingSeconds <= 0
			if expired {
				t.state.Running = false
				t.expired = true
				t.stop = nil
			}
			t.mu.Unlock()

			t.onTick(snapshot)

			if expired {
				t.onExpire(snapshot)
				return
			}
		}
	}
}

// Stop halts the countdown without resetting remaining time.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.state.Running = false
}

// Pause is Stop under a name that reads better at call sites that intend to
// Resume later.
func (t *Timer) Pause() {
	t.Stop()
}

// Resume restarts the clock from wherever Pause left it.
func (t *Timer) Resume() {
	t.Start()
}

// Destroy guarantees the clock is stopped. Required on room teardown so no
// periodic work outlives the room.
func (t *Timer) Destroy() {
	t.Stop()
}

// Snapshot returns the current countdown state.
func (t *Timer) Snapshot() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// SetRemaining overwrites the remaining seconds, for snapshot restore.
func (t *Timer) SetRemaining(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.RemainingSeconds = seconds
}
