package worker

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLimiterAllowsUpToCapWithoutBlocking(t *testing.T) {
	l := NewLimiter(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.Increase(ctx); err != nil {
			t.Fatalf("unexpected error on Increase %d: %v", i, err)
		}
	}
}

func TestLimiterSuspendsPastCapUntilDecrease(t *testing.T) {
	l := NewLimiter(1)
	ctx := context.Background()

	if err := l.Increase(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		l.Increase(ctx)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("second Increase returned before Decrease freed a slot")
	case <-time.After(50 * time.Millisecond):
	}

	l.Decrease()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Increase never returned after Decrease")
	}
}

func TestLimiterIncreaseReturnsOnContextCancel(t *testing.T) {
	l := NewLimiter(1)
	if err := l.Increase(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Increase(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected a context error from the suspended Increase")
		}
	case <-time.After(time.Second):
		t.Fatal("Increase never returned after context cancellation")
	}
}

func TestLimiterConvergesToCapUnderSustainedLoad(t *testing.T) {
	l := NewLimiter(3)
	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	maxObserved := 0
	current := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Increase(ctx); err != nil {
				return
			}
			mu.Lock()
			current++
			if current > maxObserved {
				maxObserved = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
			l.Decrease()
		}()
	}
	wg.Wait()

	if maxObserved > 4 {
		t.Fatalf("observed %d concurrent holders, want close to the cap of 3 (small overshoot tolerated)", maxObserved)
	}
}
