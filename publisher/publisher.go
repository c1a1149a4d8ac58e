// Package publisher drives the Task Store → channel pipeline described
// in spec.md §4.9: it seeds or recovers initial work at startup, then
// runs a 1-second steady-state loop that promotes due tasks to
// Processing and hands them to the orchestrator over a bounded channel.
package publisher

import (
	"context"
	"time"

	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/registry"
)

// Mode selects the Publisher's startup behavior.
type Mode int

const (
	// Manual seeds the Task Store from settings via each registered
	// handler's PrepareParsingTasks.
	Manual Mode = iota
	// Recovery re-publishes every task left in status Processing, the
	// signature of a prior process crash; a no-op if nothing crashed.
	Recovery
)

// taskStore is the slice of store.Client the publisher depends on.
// Declared here, not in package store, so tests can substitute a fake
// without standing up a CouchDB instance.
type taskStore interface {
	InsertMany(ctx context.Context, tasks []model.ParsingTask) error
	UpdateStatus(ctx context.Context, ids []string, status model.TaskStatus) error
	FetchEligible(ctx context.Context, statuses []model.TaskStatus, nowMillis uint64, limit int) ([]model.ParsingTask, error)
	FetchByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]model.ParsingTask, error)
	FetchGroupedByNetwork(ctx context.Context, nowMillis uint64) (map[model.SocialNetworkTag][]model.ParsingTask, error)
}

// handlerDispatcher is the slice of registry.Registry the publisher
// depends on. Dispatch panics on an unregistered tag (spec.md §4.5);
// cli validates every settings-declared network is registered before
// the publisher ever starts, so seed never triggers that panic.
type handlerDispatcher interface {
	Networks() []model.SocialNetworkTag
	Dispatch(tag model.SocialNetworkTag) registry.Handler
}

// Publisher owns the bounded channel the orchestrator reads from.
type Publisher struct {
	store    taskStore
	registry handlerDispatcher
	settings model.Settings
	mode     Mode
	limit    int

	tasks chan model.ParsingTask
}

// New constructs a Publisher with a channel of capacity limit, the
// synchronization point spec.md §4.9/§5 requires between publisher and
// orchestrator.
func New(s taskStore, r handlerDispatcher, settings model.Settings, mode Mode, limit int) *Publisher {
	return &Publisher{
		store:    s,
		registry: r,
		settings: settings,
		mode:     mode,
		limit:    limit,
		tasks:    make(chan model.ParsingTask, limit),
	}
}

// Tasks returns the channel the orchestrator consumes from.
func (p *Publisher) Tasks() <-chan model.ParsingTask {
	return p.tasks
}

// Start runs startup seeding/recovery, then the steady-state loop,
// until ctx is cancelled. It closes the task channel on exit so the
// orchestrator's receive loop sees the close and returns cleanly.
func (p *Publisher) Start(ctx context.Context) error {
	defer close(p.tasks)

	if err := p.startup(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := p.tick(ctx); err != nil {
				common.Logger.WithError(err).Error("publisher: steady-state tick failed")
			}
		}
	}
}

func (p *Publisher) startup(ctx context.Context) error {
	switch p.mode {
	case Recovery:
		return p.recover(ctx)
	default:
		return p.seed(ctx)
	}
}

// seed reads configuration-declared tasks from every registered
// handler, inserts them into the Task Store, then immediately
// publishes whatever is due so Manual-mode startup doesn't sit idle
// until the first steady-state tick.
func (p *Publisher) seed(ctx context.Context) error {
	for _, tag := range p.registry.Networks() {
		networkSettings, ok := p.settings.NetworkSettingsFor(tag)
		if !ok {
			continue
		}
		handler := p.registry.Dispatch(tag)
		tasks, err := handler.PrepareParsingTasks(networkSettings)
		if err != nil {
			return err
		}
		if err := p.store.InsertMany(ctx, tasks); err != nil {
			return err
		}
	}
	return p.publishDueGroupedByNetwork(ctx)
}

// publishDueGroupedByNetwork fetches due New tasks partitioned by
// social_network and publishes them round-robin across networks, so a
// network with a large backlog can't crowd out another's due work
// within the same limit-capped batch (spec.md §4.3's
// fetch_grouped_by_network, which preserves execution_time ordering
// within each bucket).
func (p *Publisher) publishDueGroupedByNetwork(ctx context.Context) error {
	buckets, err := p.store.FetchGroupedByNetwork(ctx, common.NowMillis())
	if err != nil {
		return err
	}
	return p.publish(ctx, roundRobinMerge(buckets, p.limit))
}

// roundRobinMerge interleaves per-network buckets one task at a time,
// preserving each bucket's own ordering, until limit tasks have been
// taken or every bucket is drained (limit<=0 means unlimited).
func roundRobinMerge(buckets map[model.SocialNetworkTag][]model.ParsingTask, limit int) []model.ParsingTask {
	var out []model.ParsingTask
	for {
		progressed := false
		for tag, tasks := range buckets {
			if len(tasks) == 0 {
				continue
			}
			out = append(out, tasks[0])
			buckets[tag] = tasks[1:]
			progressed = true
			if limit > 0 && len(out) >= limit {
				return out
			}
		}
		if !progressed {
			return out
		}
	}
}

// recover fetches every task stranded in status Processing (the
// signature of a crash mid-flight) and republishes it, up to limit.
func (p *Publisher) recover(ctx context.Context) error {
	tasks, err := p.store.FetchByStatus(ctx, model.StatusProcessing, p.limit)
	if err != nil {
		return err
	}
	return p.publish(ctx, tasks)
}

// tick implements one iteration of the steady-state loop (spec.md
// §4.9 step 1-2): fetch due New tasks, transition each to Processing,
// then send it — the channel send is the back-pressure point.
func (p *Publisher) tick(ctx context.Context) error {
	tasks, err := p.store.FetchEligible(ctx, []model.TaskStatus{model.StatusNew}, common.NowMillis(), p.limit)
	if err != nil {
		return err
	}
	return p.publish(ctx, tasks)
}

func (p *Publisher) publish(ctx context.Context, tasks []model.ParsingTask) error {
	for _, task := range tasks {
		if err := p.store.UpdateStatus(ctx, []string{task.ID}, model.StatusProcessing); err != nil {
			common.Logger.WithError(err).WithField("task_id", task.ID).Error("publisher: promoting task to Processing")
			continue
		}
		task.Status = model.StatusProcessing

		select {
		case p.tasks <- task:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}
