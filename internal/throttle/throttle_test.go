package throttle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestAdmissionBound(t *testing.T) {
	const limit = 3
	th := New(limit, 0, false)

	var inFlight, peak int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := th.Acquire(context.Background())
			if err != nil {
				t.Errorf("Acquire failed: %v", err)
				return
			}
			n := atomic.AddInt64(&inFlight, 1)
			for {
				old := atomic.LoadInt64(&peak)
				if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt64(&inFlight, -1)
			release()
		}()
	}
	wg.Wait()

	if p := atomic.LoadInt64(&peak); p > limit {
		t.Errorf("Expected at most %d concurrent slots, saw %d", limit, p)
	}
}

func TestFIFOFairness(t *testing.T) {
	th := New(1, 0, false)

	release, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	order := make(chan string, 2)
	start := func(name string) {
		go func() {
			r, err := th.Acquire(context.Background())
			if err != nil {
				t.Errorf("%s: Acquire failed: %v", name, err)
				return
			}
			order <- name
			r()
		}()
	}

	start("A")
	waitUntil(t, func() bool { return th.Waiting() == 1 })
	start("B")
	waitUntil(t, func() bool { return th.Waiting() == 2 })

	release()

	first := <-order
	second := <-order
	if first != "A" || second != "B" {
		t.Errorf("Expected FIFO grant order A then B, got %s then %s", first, second)
	}
}

func TestReleaseOnFailure(t *testing.T) {
	th := New(2, 0, false)

	failing := func() {
		release, err := th.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer release()
		panic("wrapped operation failed")
	}
	for i := 0; i < 2; i++ {
		func() {
			defer func() { recover() }()
			failing()
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	release, err := th.Acquire(ctx)
	if err != nil {
		t.Fatalf("Expected slots to be released after failures, got %v", err)
	}
	release()
}

func TestErrorOnLimit(t *testing.T) {
	th := New(1, 0, true)

	release, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if _, err := th.Acquire(context.Background()); !errors.Is(err, ErrNoSlots) {
		t.Errorf("Expected ErrNoSlots at the limit, got %v", err)
	}
	release()

	release, err = th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	release()
}

func TestWindowedSlotExpiry(t *testing.T) {
	const window = 100 * time.Millisecond
	th := New(1, window, false)

	release, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	// In windowed mode release is a no-op; the slot frees on the timer.
	release()

	start := time.Now()
	release, err = th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Second acquire failed: %v", err)
	}
	release()

	if elapsed := time.Since(start); elapsed < window/2 {
		t.Errorf("Expected second acquire to wait for the window, waited %s", elapsed)
	}
}

func TestUnlimited(t *testing.T) {
	th := New(Unlimited, 0, false)
	for i := 0; i < 100; i++ {
		release, err := th.Acquire(context.Background())
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		_ = release
	}
}

func TestContextCancelRemovesWaiter(t *testing.T) {
	th := New(1, 0, false)

	release, err := th.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := th.Acquire(ctx)
		done <- err
	}()
	waitUntil(t, func() bool { return th.Waiting() == 1 })
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	waitUntil(t, func() bool { return th.Waiting() == 0 })

	release()
	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	release, err = th.Acquire(ctx2)
	if err != nil {
		t.Fatalf("Expected a free slot after cancellation cleanup, got %v", err)
	}
	release()
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
