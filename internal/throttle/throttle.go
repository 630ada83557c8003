// Package throttle bounds the number of concurrently in-flight API calls.
// Waiters are admitted in strict arrival order. A throttle may optionally be
// time-windowed, in which case an admitted call counts against the limit for
// the full window regardless of when it completes.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Unlimited disables concurrency limiting entirely.
const Unlimited = -1

// ErrNoSlots is returned by Acquire when the throttle is saturated and was
// configured to fail rather than queue.
var ErrNoSlots = errors.New("throttle: no connections available")

type waiter struct {
	ready chan struct{}
}

// Throttle is a FIFO counting limiter. The zero value is not usable; use New.
type Throttle struct {
	mu           sync.Mutex
	max          int
	window       time.Duration
	errorOnLimit bool
	active       int
	waiters      []*waiter
}

// New builds a throttle admitting at most maxConcurrent calls. Pass Unlimited
// (or any negative value) to disable limiting. When window > 0 a granted slot
// is held for the window duration from acquisition and the release returned
// by Acquire becomes a no-op. When errorOnLimit is set, Acquire fails
// immediately at the limit instead of queuing.
func New(maxConcurrent int, window time.Duration, errorOnLimit bool) *Throttle {
	return &Throttle{
		max:          maxConcurrent,
		window:       window,
		errorOnLimit: errorOnLimit,
	}
}

// Acquire blocks until a slot is available or ctx is done. The returned
// release function is idempotent and must be called on every exit path of
// the wrapped operation.
func (t *Throttle) Acquire(ctx context.Context) (func(), error) {
	if t == nil || t.max < 0 {
		return func() {}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.active < t.max {
		t.active++
		t.mu.Unlock()
		return t.grant(), nil
	}
	if t.errorOnLimit {
		t.mu.Unlock()
		return nil, ErrNoSlots
	}
	w := &waiter{ready: make(chan struct{})}
	t.waiters = append(t.waiters, w)
	t.mu.Unlock()

	select {
	case <-w.ready:
		return t.grant(), nil
	case <-ctx.Done():
		t.mu.Lock()
		select {
		case <-w.ready:
			// The slot was handed over while we were cancelling; pass it on.
			t.freeLocked()
			t.mu.Unlock()
		default:
			t.removeLocked(w)
			t.mu.Unlock()
		}
		return nil, ctx.Err()
	}
}

// InUse reports the number of currently held slots.
func (t *Throttle) InUse() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Waiting reports the number of queued acquirers.
func (t *Throttle) Waiting() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}

// grant is called with a slot already counted. In windowed mode the slot
// expires on a timer and the caller's release does nothing.
func (t *Throttle) grant() func() {
	if t.window > 0 {
		time.AfterFunc(t.window, t.free)
		return func() {}
	}
	var once sync.Once
	return func() {
		once.Do(t.free)
	}
}

func (t *Throttle) free() {
	t.mu.Lock()
	t.freeLocked()
	t.mu.Unlock()
}

// freeLocked hands the slot to the oldest waiter, or decrements the active
// count when nobody is queued. Callers must hold t.mu.
func (t *Throttle) freeLocked() {
	if len(t.waiters) > 0 {
		w := t.waiters[0]
		t.waiters = t.waiters[1:]
		close(w.ready)
		return
	}
	t.active--
}

func (t *Throttle) removeLocked(target *waiter) {
	for i, w := range t.waiters {
		if w == target {
			t.waiters = append(t.waiters[:i], t.waiters[i+1:]...)
			return
		}
	}
}
