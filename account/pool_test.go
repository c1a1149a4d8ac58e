package account

import (
	"context"
	"testing"
	"time"

	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/stats"
)

func newTestAccount(t *testing.T, retrieveTS, millisToRefresh uint64, limit int64) *Account {
	t.Helper()
	a, err := New(model.AccountData{SocialNetwork: model.Reddit}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a.SetSession(model.Session{
		RetrieveTimestamp: retrieveTS,
		MillisToRefresh:   millisToRefresh,
		RequestsLimit:     limit,
	})
	return a
}

func TestGetAccountReturnsHeadWhenRequestsRemain(t *testing.T) {
	p := NewPool(stats.New())
	a := newTestAccount(t, 1, 1000, 5)
	p.Add(a)

	got, err := p.GetAccount(context.Background(), model.Reddit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != a {
		t.Fatal("expected the only account in the pool to be returned")
	}
	if got.Session().RequestsLimit != 4 {
		t.Fatalf("got requests_limit %d, want 4", got.Session().RequestsLimit)
	}
}

func TestAddIncrementsTotalAccounts(t *testing.T) {
	bank := stats.New()
	p := NewPool(bank)
	p.Add(newTestAccount(t, 1, 1000, 5))
	p.Add(newTestAccount(t, 1, 1000, 5))

	if got := bank.Snapshot().TotalAccounts; got != 2 {
		t.Fatalf("got total_accounts %d, want 2", got)
	}
}

func TestGetAccountTracksThreadsWaitingForRefresh(t *testing.T) {
	bank := stats.New()
	p := NewPool(bank)
	// Exhausted, with a refresh_time far enough in the future that
	// sleepUntil actually blocks rather than returning immediately.
	future := common.NowMillis() + uint64(time.Minute/time.Millisecond)
	a := newTestAccount(t, future, 0, 0)
	p.Add(a)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.GetAccount(ctx, model.Reddit)
	if err == nil {
		t.Fatal("expected context deadline to cut the wait short")
	}
	if got := bank.Snapshot().ThreadsWaitingForRefresh; got != 0 {
		t.Fatalf("got threads_waiting_for_refresh %d after the wait ended, want 0", got)
	}
}

func TestGetAccountEmptyPool(t *testing.T) {
	p := NewPool(stats.New())
	_, err := p.GetAccount(context.Background(), model.Reddit)
	if _, ok := err.(*EmptyPoolError); !ok {
		t.Fatalf("got %v, want *EmptyPoolError", err)
	}
}

func TestMoveEndOrdersByRefreshTime(t *testing.T) {
	p := NewPool(stats.New())
	// a has refresh_time 2000; b has refresh_time 5000; c has
	// refresh_time 3000. moveEnd inserts after the first candidate
	// (walking from back) whose refresh_time is strictly less than a's.
	// Candidates from back: c(3000) -- not < 2000, keep walking;
	// b(5000) -- not < 2000; reaches front: push front.
	a := newTestAccount(t, 1000, 1000, 1) // refresh_time 2000, single use
	b := newTestAccount(t, 1000, 4000, 5) // refresh_time 5000
	c := newTestAccount(t, 1000, 2000, 5) // refresh_time 3000

	p.Add(b)
	p.Add(c)
	p.Add(a)

	// Force a to the front artificially for this unit test by directly
	// exercising moveEnd instead of relying on queue order from Add.
	p.mu.Lock()
	p.queue.Remove(p.queue.Back()) // remove a, added last
	p.mu.Unlock()

	p.mu.Lock()
	p.moveEnd(a, a.RefreshTime())
	front := p.queue.Front().Value.(*Account)
	p.mu.Unlock()

	if front != a {
		t.Fatalf("expected a (earliest refresh_time) to land at the front after moveEnd")
	}
}

func TestMoveEndInsertsAfterEarlierRefreshTime(t *testing.T) {
	p := NewPool(stats.New())
	early := newTestAccount(t, 1000, 1000, 5) // refresh_time 2000
	late := newTestAccount(t, 1000, 9000, 5)  // refresh_time 10000

	p.Add(early)
	p.Add(late)

	reinserted := newTestAccount(t, 1000, 5000, 5) // refresh_time 6000

	p.mu.Lock()
	p.moveEnd(reinserted, reinserted.RefreshTime())
	var order []*Account
	for e := p.queue.Front(); e != nil; e = e.Next() {
		order = append(order, e.Value.(*Account))
	}
	p.mu.Unlock()

	if len(order) != 3 || order[0] != early || order[1] != reinserted || order[2] != late {
		t.Fatalf("unexpected order after moveEnd")
	}
}
