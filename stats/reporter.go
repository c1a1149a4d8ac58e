package stats

import (
	"context"
	"time"

	"github.com/evalgo/mansa/common"
)

// StartReporter logs a Snapshot on every tick until ctx is cancelled,
// following the ticker-plus-select-loop pattern used elsewhere in this
// codebase for periodic background work.
func StartReporter(ctx context.Context, bank *Bank, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := bank.Snapshot()
				common.Logger.WithFields(map[string]interface{}{
					"current_running_threads":    snap.CurrentRunningThreads,
					"started_tasks":              snap.StartedTasks,
					"failed_tasks":               snap.FailedTasks,
					"other_errors":               snap.OtherErrors,
					"access_failed_tasks":        snap.AccessFailedTasks,
					"successful_tasks":           snap.SuccessfulTasks,
					"total_accounts":             snap.TotalAccounts,
					"threads_waiting_for_refresh": snap.ThreadsWaitingForRefresh,
				}).Info("stats snapshot")
			}
		}
	}()
}
