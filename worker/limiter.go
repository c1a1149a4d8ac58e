package worker

import "context"

// Limiter is the Worker Limiter (spec.md §4.10): a counter with a soft
// cap. Increase and the suspension it triggers are two separate steps,
// so the count can briefly sit above cap; the invariant the orchestrator
// relies on is that sustained concurrency converges to at most cap, not
// that it never exceeds cap for an instant. A standard semaphore
// (including golang.org/x/sync/semaphore's weighted acquire) enforces a
// hard ceiling instead and would reject that documented overshoot, so
// the counter and wake signal are hand-rolled here.
type Limiter struct {
	mu    chan struct{}
	wake  chan struct{}
	count int
	cap   int
}

// NewLimiter returns a Limiter with the given soft cap.
func NewLimiter(cap int) *Limiter {
	return &Limiter{
		mu:   make(chan struct{}, 1),
		wake: make(chan struct{}, 1),
		cap:  cap,
	}
}

func (l *Limiter) lock()   { l.mu <- struct{}{} }
func (l *Limiter) unlock() { <-l.mu }

// Increase increments the counter; if the result exceeds cap it awaits
// a notification from Decrease before returning. Returns ctx.Err() if
// ctx is cancelled while suspended — the increment is rolled back in
// that case so the cancelled caller never counts against the cap.
func (l *Limiter) Increase(ctx context.Context) error {
	l.lock()
	l.count++
	over := l.count > l.cap
	l.unlock()

	if !over {
		return nil
	}
	select {
	case <-l.wake:
		return nil
	case <-ctx.Done():
		l.Decrease()
		return ctx.Err()
	}
}

// Decrease decrements the counter and wakes at most one suspended
// Increase caller.
func (l *Limiter) Decrease() {
	l.lock()
	l.count--
	l.unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}
