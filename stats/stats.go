// Package stats is the process-wide counter bank (spec.md §4.2). All
// counters use relaxed atomic add/sub with no cross-counter ordering
// guarantee, following the atomic.Int64/atomic.Uint64 struct-field
// pattern the rest of this codebase uses for concurrent counters.
package stats

import "sync/atomic"

// Bank holds every counter the crawler tracks. The zero value is ready
// to use; there is normally exactly one Bank per process.
type Bank struct {
	currentRunningThreads   atomic.Int64
	startedTasks            atomic.Int64
	failedTasks             atomic.Int64
	otherErrors             atomic.Int64
	accessFailedTasks       atomic.Int64
	successfulTasks         atomic.Int64
	totalAccounts           atomic.Int64
	threadsWaitingForRefresh atomic.Int64
}

// New returns an empty Bank.
func New() *Bank {
	return &Bank{}
}

func (b *Bank) IncRunningThreads() { b.currentRunningThreads.Add(1) }
func (b *Bank) DecRunningThreads() { b.currentRunningThreads.Add(-1) }

func (b *Bank) IncStartedTasks() { b.startedTasks.Add(1) }
func (b *Bank) DecStartedTasks() { b.startedTasks.Add(-1) }

func (b *Bank) IncFailedTasks() { b.failedTasks.Add(1) }
func (b *Bank) DecFailedTasks() { b.failedTasks.Add(-1) }

func (b *Bank) IncOtherErrors() { b.otherErrors.Add(1) }
func (b *Bank) DecOtherErrors() { b.otherErrors.Add(-1) }

func (b *Bank) IncAccessFailedTasks() { b.accessFailedTasks.Add(1) }
func (b *Bank) DecAccessFailedTasks() { b.accessFailedTasks.Add(-1) }

func (b *Bank) IncSuccessfulTasks() { b.successfulTasks.Add(1) }
func (b *Bank) DecSuccessfulTasks() { b.successfulTasks.Add(-1) }

func (b *Bank) IncTotalAccounts() { b.totalAccounts.Add(1) }
func (b *Bank) DecTotalAccounts() { b.totalAccounts.Add(-1) }

func (b *Bank) IncThreadsWaitingForRefresh() { b.threadsWaitingForRefresh.Add(1) }
func (b *Bank) DecThreadsWaitingForRefresh() { b.threadsWaitingForRefresh.Add(-1) }

// Snapshot is a value-copy of every counter, suitable for logging or
// JSON serialization.
type Snapshot struct {
	CurrentRunningThreads    int64 `json:"current_running_threads"`
	StartedTasks             int64 `json:"started_tasks"`
	FailedTasks              int64 `json:"failed_tasks"`
	OtherErrors              int64 `json:"other_errors"`
	AccessFailedTasks        int64 `json:"access_failed_tasks"`
	SuccessfulTasks          int64 `json:"successful_tasks"`
	TotalAccounts            int64 `json:"total_accounts"`
	ThreadsWaitingForRefresh int64 `json:"threads_waiting_for_refresh"`
}

func (b *Bank) Snapshot() Snapshot {
	return Snapshot{
		CurrentRunningThreads:    b.currentRunningThreads.Load(),
		StartedTasks:             b.startedTasks.Load(),
		FailedTasks:              b.failedTasks.Load(),
		OtherErrors:              b.otherErrors.Load(),
		AccessFailedTasks:        b.accessFailedTasks.Load(),
		SuccessfulTasks:          b.successfulTasks.Load(),
		TotalAccounts:            b.totalAccounts.Load(),
		ThreadsWaitingForRefresh: b.threadsWaitingForRefresh.Load(),
	}
}
