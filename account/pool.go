package account

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/stats"
)

// Pool is a per-SocialNetworkTag FIFO of authenticated Accounts,
// ordered by ascending refresh_time (spec.md §4.8). A single mutex
// guards the list; per-account session state is guarded separately by
// the Account itself, keeping cross-account contention low.
type Pool struct {
	mu    sync.Mutex
	queue *list.List // element type: *Account
	bank  *stats.Bank
}

// NewPool returns an empty pool reporting into bank. Accounts are
// added with Add, already authenticated by the caller.
func NewPool(bank *stats.Bank) *Pool {
	return &Pool{queue: list.New(), bank: bank}
}

// Add appends an already-authenticated account to the back of the
// queue and bumps the total_accounts counter (spec.md §4.2). Callers
// are expected to insert accounts roughly in refresh_time order at
// startup; GetAccount's re-insertion keeps the order correct as
// sessions get exhausted and refreshed.
func (p *Pool) Add(a *Account) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.PushBack(a)
	p.bank.IncTotalAccounts()
}

// Len reports the number of accounts currently held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// GetAccount implements spec.md §4.8's get_account: take the head
// account, try to acquire one of its remaining requests, re-queue it
// in refresh_time order if it just became exhausted, and return it. If
// the head has no requests remaining, release every lock and sleep
// cooperatively until its refresh_time, then retry from the top — the
// only blocking/back-pressure point between the orchestrator and
// upstream rate limits.
func (p *Pool) GetAccount(ctx context.Context, network model.SocialNetworkTag) (*Account, error) {
	for {
		p.mu.Lock()
		front := p.queue.Front()
		if front == nil {
			p.mu.Unlock()
			return nil, &EmptyPoolError{Network: network}
		}
		acct := front.Value.(*Account)

		acquired, exhausted, refreshTime := acct.TryAcquire()
		if acquired {
			if exhausted {
				p.queue.Remove(front)
				p.moveEnd(acct, refreshTime)
			}
			p.mu.Unlock()
			return acct, nil
		}
		p.mu.Unlock()

		p.bank.IncThreadsWaitingForRefresh()
		err := sleepUntil(ctx, refreshTime)
		p.bank.DecThreadsWaitingForRefresh()
		if err != nil {
			return nil, err
		}
	}
}

// moveEnd re-inserts acct into the queue so the ordering by ascending
// refresh_time is restored. It walks from the back toward the front,
// inserting acct immediately after the first candidate whose
// refresh_time is strictly less than acct's; if no such candidate is
// found, acct becomes the new head (spec.md §4.8). Callers must hold
// p.mu and must not perform any blocking I/O while doing so — this
// function never does.
func (p *Pool) moveEnd(acct *Account, refreshTime uint64) {
	for e := p.queue.Back(); e != nil; e = e.Prev() {
		candidate := e.Value.(*Account)
		if candidate.RefreshTime() < refreshTime {
			p.queue.InsertAfter(acct, e)
			return
		}
	}
	p.queue.PushFront(acct)
}

// sleepUntil cooperatively suspends the calling goroutine until
// refreshMillis (epoch milliseconds), or until ctx is cancelled.
func sleepUntil(ctx context.Context, refreshMillis uint64) error {
	now := common.NowMillis()
	if refreshMillis <= now {
		return nil
	}
	wait := time.Duration(refreshMillis-now) * time.Millisecond

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EmptyPoolError reports that a network's pool has no accounts at all
// — a configuration error distinct from every account being
// temporarily rate-limited.
type EmptyPoolError struct {
	Network model.SocialNetworkTag
}

func (e *EmptyPoolError) Error() string {
	return "account: pool for " + string(e.Network) + " has no accounts"
}
