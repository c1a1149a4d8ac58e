package worker

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evalgo/mansa/account"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/registry"
	"github.com/evalgo/mansa/stats"
)

type fakePool struct {
	acct *account.Account
	err  error
}

func (f *fakePool) GetAccount(ctx context.Context, network model.SocialNetworkTag) (*account.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.acct, nil
}

type fakeDispatcher struct {
	handler *recordingHandler
}

func (f *fakeDispatcher) Dispatch(tag model.SocialNetworkTag) registry.Handler {
	return f.handler
}

type recordingHandler struct {
	calls int64
}

func (h *recordingHandler) Auth(ctx context.Context, data model.AccountData, client *http.Client) (model.Session, error) {
	return model.Session{}, nil
}
func (h *recordingHandler) Parse(ctx context.Context, task model.ParsingTask, acct *account.Account) error {
	atomic.AddInt64(&h.calls, 1)
	return nil
}
func (h *recordingHandler) PrepareParsingTasks(settings model.NetworkSettings) ([]model.ParsingTask, error) {
	return nil, nil
}
func (h *recordingHandler) PrepareAccounts(general model.GeneralSettings, settings model.NetworkSettings) ([]*account.Account, error) {
	return nil, nil
}

func TestOrchestratorDispatchesTasksToHandler(t *testing.T) {
	acct, err := account.New(model.AccountData{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handler := &recordingHandler{}
	tasks := make(chan model.ParsingTask, 2)
	tasks <- model.ParsingTask{SocialNetwork: model.Reddit}
	tasks <- model.ParsingTask{SocialNetwork: model.Reddit}
	close(tasks)

	o := New(tasks,
		map[model.SocialNetworkTag]AccountPool{model.Reddit: &fakePool{acct: acct}},
		&fakeDispatcher{handler: handler},
		stats.New(),
		5,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := o.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt64(&handler.calls) < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := atomic.LoadInt64(&handler.calls); got != 2 {
		t.Fatalf("got %d Parse calls, want 2", got)
	}
}

func TestOrchestratorStopsOnContextCancel(t *testing.T) {
	tasks := make(chan model.ParsingTask)
	o := New(tasks, map[model.SocialNetworkTag]AccountPool{}, &fakeDispatcher{handler: &recordingHandler{}}, stats.New(), 5)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		o.Start(ctx)
	}()

	cancel()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
