// Package registry is the process-lifetime table mapping a
// SocialNetworkTag to the Handler that knows how to authenticate,
// seed, and parse for that network (spec.md §4.5).
package registry

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/evalgo/mansa/account"
	"github.com/evalgo/mansa/model"
)

// Handler is the capability set every social-network integration must
// provide. Parse never returns a fatal error to its caller: failures
// are surfaced through statistics counters and Task Store status
// transitions instead, so one bad response never stops the orchestrator.
type Handler interface {
	// Auth obtains a fresh session for data, using client for the
	// request. It must populate RetrieveTimestamp, MillisToRefresh,
	// and RequestsLimit from the response.
	Auth(ctx context.Context, data model.AccountData, client *http.Client) (model.Session, error)

	// Parse performs one HTTP fetch for task using acct, transforms
	// the response, and emits derived tasks/entities through the
	// stores acct and the handler were constructed with.
	Parse(ctx context.Context, task model.ParsingTask, acct *account.Account) error

	// PrepareParsingTasks expands configuration-declared seeds into
	// concrete initial tasks.
	PrepareParsingTasks(settings model.NetworkSettings) ([]model.ParsingTask, error)

	// PrepareAccounts materializes Account values from settings,
	// binding each one's HTTP client to the proxy general assigns it
	// (spec.md §4.7). No authentication happens here; the caller runs
	// Auth on each account before adding it to a pool.
	PrepareAccounts(general model.GeneralSettings, settings model.NetworkSettings) ([]*account.Account, error)
}

// Registry is a process-lifetime, concurrency-safe table from
// SocialNetworkTag to Handler. It is built once at startup and never
// mutated afterward in normal operation, but the lock makes
// registration safe even if a future handler registers itself lazily.
type Registry struct {
	mu       sync.RWMutex
	handlers map[model.SocialNetworkTag]Handler
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{handlers: make(map[model.SocialNetworkTag]Handler)}
}

// Register associates tag with h, replacing any prior registration.
func (r *Registry) Register(tag model.SocialNetworkTag, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[tag] = h
}

// Dispatch returns the Handler registered for tag. Per spec.md §4.5,
// dispatch is a total function on registered tags: calling it with an
// unregistered tag is a programming error, not a runtime condition to
// recover from, so it panics rather than returning an error.
// EnsureRegistered lets callers validate a set of tags up front and
// fail gracefully at startup instead of hitting this panic later.
func (r *Registry) Dispatch(tag model.SocialNetworkTag) Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[tag]
	if !ok {
		panic(fmt.Sprintf("registry: no handler registered for social network %q", tag))
	}
	return h
}

// EnsureRegistered fails fast at startup (spec.md §4.5) if any of tags
// lacks a registered Handler, so a misconfigured settings directory
// naming an unsupported network produces a clear error instead of a
// panic once a task for that network reaches Dispatch.
func (r *Registry) EnsureRegistered(tags []model.SocialNetworkTag) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, tag := range tags {
		if _, ok := r.handlers[tag]; !ok {
			return fmt.Errorf("registry: settings configure network %q but no handler is registered for it", tag)
		}
	}
	return nil
}

// Networks returns the tags currently registered, for startup logging
// and settings-loader cross-checks.
func (r *Registry) Networks() []model.SocialNetworkTag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.SocialNetworkTag, 0, len(r.handlers))
	for tag := range r.handlers {
		out = append(out, tag)
	}
	return out
}
