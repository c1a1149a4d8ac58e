// Package worker adapts the teacher's generic job-queue pool into the
// Parser Orchestrator (C10) and Worker Limiter (C11) described in
// spec.md §4.10: a single consumption loop over the publisher's task
// channel, fanning work out to per-network account pools and
// registered handlers under a soft concurrency cap.
package worker

import (
	"context"

	"github.com/evalgo/mansa/account"
	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/registry"
	"github.com/evalgo/mansa/stats"
)

// AccountPool is the slice of account.Pool the orchestrator depends
// on, declared here so tests can substitute a fake.
type AccountPool interface {
	GetAccount(ctx context.Context, network model.SocialNetworkTag) (*account.Account, error)
}

// HandlerDispatcher is the slice of registry.Registry the orchestrator
// depends on. Dispatch panics on an unregistered tag (spec.md §4.5);
// cli validates every settings-declared network is registered at
// startup, so that panic should never fire once the process is running.
type HandlerDispatcher interface {
	Dispatch(tag model.SocialNetworkTag) registry.Handler
}

// Orchestrator runs the main consumption loop described in spec.md
// §4.10. It owns no goroutines of its own beyond the ones it spawns
// per task; Start blocks until its input channel is closed or ctx is
// cancelled.
type Orchestrator struct {
	tasks    <-chan model.ParsingTask
	pools    map[model.SocialNetworkTag]AccountPool
	registry HandlerDispatcher
	limiter  *Limiter
	stats    *stats.Bank
}

// New constructs an Orchestrator reading from tasks, dispatching
// through registry, acquiring accounts from pools (keyed by network),
// and bounding concurrent handler invocations at cap.
func New(tasks <-chan model.ParsingTask, pools map[model.SocialNetworkTag]AccountPool, r HandlerDispatcher, bank *stats.Bank, cap int) *Orchestrator {
	return &Orchestrator{
		tasks:    tasks,
		pools:    pools,
		registry: r,
		limiter:  NewLimiter(cap),
		stats:    bank,
	}
}

// Start runs the consumption loop until ctx is cancelled or the task
// channel is closed (the publisher's signal that it has stopped
// producing work). Each task is handed to an independent goroutine
// once a worker slot and an account have both been acquired, per
// spec.md §4.10 steps 1-4; Start itself never blocks on handler.Parse.
func (o *Orchestrator) Start(ctx context.Context) error {
	for {
		if err := o.limiter.Increase(ctx); err != nil {
			return nil
		}

		var task model.ParsingTask
		var ok bool
		select {
		case task, ok = <-o.tasks:
		case <-ctx.Done():
			o.limiter.Decrease()
			return nil
		}
		if !ok {
			o.limiter.Decrease()
			return nil
		}

		pool, havePool := o.pools[task.SocialNetwork]
		if !havePool {
			common.Logger.WithField("social_network", task.SocialNetwork).Error("orchestrator: no account pool registered for this network")
			o.stats.IncOtherErrors()
			o.limiter.Decrease()
			continue
		}
		acct, err := pool.GetAccount(ctx, task.SocialNetwork)
		if err != nil {
			common.Logger.WithError(err).WithField("social_network", task.SocialNetwork).Error("orchestrator: acquiring an account")
			o.stats.IncOtherErrors()
			o.limiter.Decrease()
			continue
		}
		handler := o.registry.Dispatch(task.SocialNetwork)

		o.stats.IncStartedTasks()
		o.stats.IncRunningThreads()
		go func(task model.ParsingTask, acct *account.Account) {
			defer o.limiter.Decrease()
			defer o.stats.DecRunningThreads()
			if err := handler.Parse(ctx, task, acct); err != nil {
				o.stats.IncOtherErrors()
			}
		}(task, acct)
	}
}
