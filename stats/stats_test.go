package stats

import "testing"

func TestBankIncDec(t *testing.T) {
	b := New()
	b.IncStartedTasks()
	b.IncStartedTasks()
	b.DecStartedTasks()

	snap := b.Snapshot()
	if snap.StartedTasks != 1 {
		t.Fatalf("got %d, want 1", snap.StartedTasks)
	}
}

func TestBankSnapshotIndependent(t *testing.T) {
	b := New()
	b.IncSuccessfulTasks()
	snap1 := b.Snapshot()
	b.IncSuccessfulTasks()
	snap2 := b.Snapshot()

	if snap1.SuccessfulTasks != 1 {
		t.Fatalf("snap1: got %d, want 1", snap1.SuccessfulTasks)
	}
	if snap2.SuccessfulTasks != 2 {
		t.Fatalf("snap2: got %d, want 2", snap2.SuccessfulTasks)
	}
}

func TestBankAllCountersIndependent(t *testing.T) {
	b := New()
	b.IncRunningThreads()
	b.IncFailedTasks()
	b.IncOtherErrors()
	b.IncAccessFailedTasks()
	b.IncTotalAccounts()
	b.IncThreadsWaitingForRefresh()

	snap := b.Snapshot()
	if snap.CurrentRunningThreads != 1 || snap.FailedTasks != 1 || snap.OtherErrors != 1 ||
		snap.AccessFailedTasks != 1 || snap.TotalAccounts != 1 || snap.ThreadsWaitingForRefresh != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.StartedTasks != 0 || snap.SuccessfulTasks != 0 {
		t.Fatalf("expected untouched counters to remain zero: %+v", snap)
	}
}
