package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/evalgo/mansa/account"
	"github.com/evalgo/mansa/common"
	"github.com/evalgo/mansa/model"
	"github.com/evalgo/mansa/registry"
	"github.com/evalgo/mansa/stats"
	"github.com/evalgo/mansa/store"
)

// postFollowUpDelay is the execution_time offset for a Post follow-up
// spawned by the parse cycle's spawn rules (spec.md §4.6).
const postFollowUpDelay = time.Hour

var _ registry.Handler = (*Handler)(nil)

// Handler implements registry.Handler for the Reddit social network.
type Handler struct {
	Store *store.Client
	Stats *stats.Bank

	// CommentsEnabled gates whether Post follow-ups are ever spawned
	// from thread pages, sourced from settings'
	// enable_comments_parsing toggle (supplemented beyond spec.md's
	// body text; present in the settings JSON shape but otherwise
	// unwired). Defaults to true.
	CommentsEnabled bool
}

// NewHandler constructs a Reddit Handler backed by the given store and
// statistics bank, with comment parsing enabled by default.
func NewHandler(s *store.Client, b *stats.Bank) *Handler {
	return &Handler{Store: s, Stats: b, CommentsEnabled: true}
}

// ApplySettings reads the enable_comments_parsing toggle out of
// settings' additional_properties bag.
func (h *Handler) ApplySettings(settings model.NetworkSettings) {
	h.CommentsEnabled = commentsEnabled(settings)
}

// Auth obtains a fresh session for data, per spec.md §4.6.
func (h *Handler) Auth(ctx context.Context, data model.AccountData, client *http.Client) (model.Session, error) {
	return Auth(ctx, data, client)
}

// PrepareParsingTasks expands each seed task into one or more
// concrete ParsingTasks. An "All" seed (task_type absent or "All")
// expands to the cross product of the five thread variants against
// that seed's thread, per spec.md §4.6. Post seeds are rejected: they
// only ever arise as follow-ups.
func (h *Handler) PrepareParsingTasks(settings model.NetworkSettings) ([]model.ParsingTask, error) {
	var tasks []model.ParsingTask

	for _, seed := range settings.ParsingTasks {
		thread, _ := seed["thread"].(string)
		if thread == "" {
			return nil, fmt.Errorf("reddit: seed task missing \"thread\"")
		}

		taskType, _ := seed["task_type"].(string)
		if taskType == "" || taskType == "All" {
			for _, variant := range model.RedditThreadVariants {
				tasks = append(tasks, newThreadTask(thread, variant))
			}
			continue
		}

		variant := model.RedditActionType(taskType)
		if variant == model.ActionPost {
			return nil, fmt.Errorf("reddit: Post seeds are not accepted from configuration")
		}
		if _, ok := threadVariants[variant]; !ok {
			return nil, fmt.Errorf("reddit: unknown task_type %q", taskType)
		}
		tasks = append(tasks, newThreadTask(thread, variant))
	}

	return tasks, nil
}

func newThreadTask(thread string, variant model.RedditActionType) model.ParsingTask {
	return model.ParsingTask{
		ExecutionTime: common.NowMillis(),
		Parameters:    model.RedditParameters{Action: variant, Thread: thread},
		ActionType:    string(variant),
		SocialNetwork: model.Reddit,
		Status:        model.StatusNew,
	}
}

// PrepareAccounts materializes unauthenticated Account values from
// settings' credential records, binding each one's HTTP client to a
// proxy selected from general's configured list (spec.md §4.7/§4.12).
func (h *Handler) PrepareAccounts(general model.GeneralSettings, settings model.NetworkSettings) ([]*account.Account, error) {
	accounts := make([]*account.Account, 0, len(settings.Accounts))
	for i, data := range settings.Accounts {
		a, err := account.New(data, selectProxy(general, i))
		if err != nil {
			return nil, fmt.Errorf("reddit: preparing account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// selectProxy round-robins general's configured proxies across
// account positions, returning nil when proxying is disabled or none
// are configured — account.New then leaves the account's HTTP client
// unproxied.
func selectProxy(general model.GeneralSettings, position int) *model.Proxy {
	if general.DisableProxy || len(general.Proxies) == 0 {
		return nil
	}
	p := general.Proxies[position%len(general.Proxies)]
	return &p
}

// commentsEnabled reads the enable_comments_parsing toggle from a
// NetworkSettings' free-form additional_properties bag, defaulting to
// true when absent.
func commentsEnabled(settings model.NetworkSettings) bool {
	v, ok := settings.AdditionalProperties["enable_comments_parsing"]
	if !ok {
		return true
	}
	enabled, ok := v.(bool)
	if !ok {
		return true
	}
	return enabled
}

// Parse performs one HTTP fetch for task using acct, following the
// five steps of spec.md §4.6's parse cycle. It never returns an error
// to its caller: every failure path is reflected through h.Stats and a
// Task Store status transition. The returned error is always nil; the
// signature matches registry.Handler so callers never need a special
// case for it.
func (h *Handler) Parse(ctx context.Context, task model.ParsingTask, acct *account.Account) error {
	defer common.LogDuration(common.NewContextLogger(nil, map[string]interface{}{
		"task_id":        task.ID,
		"social_network":  task.SocialNetwork,
		"action_type":     task.ActionType,
	}), "reddit.parse")()

	token := acct.Session().Token

	reqURL, err := BuildURL(task.Parameters)
	if err != nil {
		h.Stats.IncOtherErrors()
		common.Logger.WithError(err).Error("reddit: building request URL")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		h.Stats.IncOtherErrors()
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := acct.HTTPClient.Do(req)
	if err != nil {
		// Transport error: log only, leave the task's status untouched
		// (spec.md §4.6 step 5 — an acknowledged recovery gap).
		common.Logger.WithError(err).WithField("task_id", task.ID).Error("reddit: transport error")
		h.Stats.IncOtherErrors()
		return nil
	}
	defer resp.Body.Close()

	rateLimit := ParseRateLimitHeaders(resp.Header)

	switch {
	case resp.StatusCode == http.StatusOK:
		h.handleOK(ctx, task, resp.Body)
		acct.SetSession(model.Session{
			Token:             token,
			RetrieveTimestamp: rateLimit.RetrieveTimestamp,
			MillisToRefresh:   rateLimit.MillisToRefresh,
			RequestsLimit:     rateLimit.RequestsLimit,
		})
	case resp.StatusCode == http.StatusForbidden:
		h.Stats.IncFailedTasks()
		h.Stats.IncAccessFailedTasks()
		if err := h.Store.UpdateStatus(ctx, []string{task.ID}, model.StatusNew); err != nil {
			common.Logger.WithError(err).Error("reddit: reverting task status after 403")
		}
		if session, err := Auth(ctx, acct.Data, acct.HTTPClient); err == nil {
			acct.SetSession(session)
		} else {
			common.Logger.WithError(err).Error("reddit: re-authentication after 403 failed")
		}
	default:
		h.Stats.IncFailedTasks()
		if err := h.Store.UpdateStatus(ctx, []string{task.ID}, model.StatusNew); err != nil {
			common.Logger.WithError(err).Error("reddit: reverting task status")
		}
	}
	return nil
}

func (h *Handler) handleOK(ctx context.Context, task model.ParsingTask, body io.Reader) {
	raw, err := io.ReadAll(body)
	if err != nil {
		h.Stats.IncOtherErrors()
		return
	}

	var derived []model.ParsingTask
	var entities []model.Entity

	if task.Parameters.IsThreadVariant() {
		var page ThreadPage
		if err := json.Unmarshal(raw, &page); err != nil {
			h.Stats.IncOtherErrors()
			common.Logger.WithError(err).Error("reddit: parsing thread page")
			return
		}
		derived = h.spawnFromThreadPage(task, page)
		entities = ThreadEntities(page)
	} else {
		var page CommentPage
		if err := json.Unmarshal(raw, &page); err != nil {
			h.Stats.IncOtherErrors()
			common.Logger.WithError(err).Error("reddit: parsing comment page")
			return
		}
		derived = spawnFromPostPage(task)
		entities = CommentEntities(page)
	}

	if err := h.Store.InsertMany(ctx, derived); err != nil {
		common.Logger.WithError(err).Error("reddit: inserting derived tasks")
	}
	if err := h.Store.UpsertMany(ctx, entities); err != nil {
		common.Logger.WithError(err).Error("reddit: upserting entities")
	}
	if err := h.Store.UpdateStatus(ctx, []string{task.ID}, model.StatusProcessed); err != nil {
		common.Logger.WithError(err).Error("reddit: marking task processed")
	}
	h.Stats.IncSuccessfulTasks()
}

// spawnFromThreadPage implements spec.md §4.6's spawn rules for thread
// pages: a pagination follow-up when `after` is non-null, and one Post
// task (update_number=5) per child post — the latter skipped entirely
// when h.CommentsEnabled is false.
func (h *Handler) spawnFromThreadPage(task model.ParsingTask, page ThreadPage) []model.ParsingTask {
	var derived []model.ParsingTask

	if page.Posts.Data.After != nil {
		params := task.Parameters.WithAfter(*page.Posts.Data.After)
		derived = append(derived, model.ParsingTask{
			ExecutionTime: common.NowMillis(),
			Parameters:    params,
			ActionType:    string(params.Action),
			SocialNetwork: model.Reddit,
			Status:        model.StatusNew,
		})
	}

	if !h.CommentsEnabled {
		return derived
	}

	for _, child := range page.Posts.Data.Children {
		postParams := model.RedditParameters{
			Action:       model.ActionPost,
			Thread:       task.Parameters.Thread,
			ID:           child.Data.ID,
			UpdateNumber: 5,
		}
		derived = append(derived, model.ParsingTask{
			ExecutionTime: common.NowMillis(),
			Parameters:    postParams,
			ActionType:    string(model.ActionPost),
			SocialNetwork: model.Reddit,
			Status:        model.StatusNew,
		})
	}

	return derived
}

// spawnFromPostPage implements spec.md §4.6's spawn rule for Post
// pages: while update_number <= 2, emit one follow-up an hour out with
// update_number incremented; otherwise the chain ends.
func spawnFromPostPage(task model.ParsingTask) []model.ParsingTask {
	if task.Parameters.UpdateNumber > 2 {
		return nil
	}

	params := task.Parameters
	params.UpdateNumber++

	return []model.ParsingTask{{
		ExecutionTime: common.NowMillis() + uint64(postFollowUpDelay.Milliseconds()),
		Parameters:    params,
		ActionType:    string(model.ActionPost),
		SocialNetwork: model.Reddit,
		Status:        model.StatusNew,
	}}
}
