package store

import (
	"context"
	"encoding/json"
	"fmt"

	kivik "github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"

	"github.com/evalgo/mansa/model"
)

// taskDoc is the CouchDB wire shape for a model.ParsingTask. _id/_rev
// are Kivik's own bookkeeping fields, left unexported from the model
// type so the rest of the codebase never has to think about them.
type taskDoc struct {
	ID            string                  `json:"_id,omitempty"`
	Rev           string                  `json:"_rev,omitempty"`
	ExecutionTime uint64                  `json:"execution_time"`
	Parameters    model.RedditParameters  `json:"parameters"`
	ActionType    string                  `json:"action_type"`
	SocialNetwork model.SocialNetworkTag  `json:"social_network"`
	Status        model.TaskStatus        `json:"status"`
}

func toTaskDoc(t model.ParsingTask) taskDoc {
	return taskDoc{
		ID:            t.ID,
		ExecutionTime: t.ExecutionTime,
		Parameters:    t.Parameters,
		ActionType:    t.ActionType,
		SocialNetwork: t.SocialNetwork,
		Status:        t.Status,
	}
}

func (d taskDoc) toModel() model.ParsingTask {
	return model.ParsingTask{
		ID:            d.ID,
		ExecutionTime: d.ExecutionTime,
		Parameters:    d.Parameters,
		ActionType:    d.ActionType,
		SocialNetwork: d.SocialNetwork,
		Status:        d.Status,
	}
}

// InsertMany appends tasks to the durable queue. An empty slice is a
// no-op, not an error (spec.md §4.3). Individual document failures are
// reported via the returned error but do not roll back documents that
// succeeded — CouchDB's bulk endpoint has no cross-document atomicity.
// Tasks without an ID get one assigned client-side so the caller knows
// it immediately, without waiting on the bulk response.
func (c *Client) InsertMany(ctx context.Context, tasks []model.ParsingTask) error {
	if len(tasks) == 0 {
		return nil
	}

	docs := make([]interface{}, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		docs[i] = toTaskDoc(t)
	}

	results, err := c.tasks.BulkDocs(ctx, docs)
	if err != nil {
		return &Error{StatusCode: kivik.HTTPStatus(err), Op: "insert_many", Reason: err.Error()}
	}

	var failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return &Error{Op: "insert_many", Reason: fmt.Sprintf("%d/%d documents failed", failed, len(tasks))}
	}
	return nil
}

// UpdateStatus bulk-writes a new status onto the given task ids.
// Absent ids are ignored: fetching the current revision for a
// nonexistent document simply yields nothing to update (spec.md §4.3).
func (c *Client) UpdateStatus(ctx context.Context, ids []string, status model.TaskStatus) error {
	if len(ids) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		row := c.tasks.Get(ctx, id)
		var existing taskDoc
		if err := row.ScanDoc(&existing); err != nil {
			continue
		}
		existing.Status = status
		docs = append(docs, existing)
	}
	if len(docs) == 0 {
		return nil
	}

	results, err := c.tasks.BulkDocs(ctx, docs)
	if err != nil {
		return &Error{StatusCode: kivik.HTTPStatus(err), Op: "update_status", Reason: err.Error()}
	}
	var failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	if failed > 0 {
		return &Error{Op: "update_status", Reason: fmt.Sprintf("%d/%d documents failed", failed, len(docs))}
	}
	return nil
}

// FetchEligible returns tasks whose status is one of statuses and
// whose execution_time is before nowMillis, ordered by execution_time
// ascending, capped at limit (limit<=0 means unlimited). Sort happens
// server-side via the status-execution-time Mango index so the
// ordering is established before the limit is applied (spec.md §4.3).
func (c *Client) FetchEligible(ctx context.Context, statuses []model.TaskStatus, nowMillis uint64, limit int) ([]model.ParsingTask, error) {
	statusValues := make([]interface{}, len(statuses))
	for i, s := range statuses {
		statusValues[i] = string(s)
	}

	selector := map[string]interface{}{
		"status":         map[string]interface{}{"$in": statusValues},
		"execution_time": map[string]interface{}{"$lt": nowMillis},
	}
	params := map[string]interface{}{
		"sort": []map[string]string{{"execution_time": "asc"}},
	}
	if limit > 0 {
		params["limit"] = limit
	}

	return c.findTasks(ctx, selector, params)
}

// FetchByStatus returns tasks whose status matches, without regard to
// execution_time, capped at limit (limit<=0 means unlimited). Used by
// the publisher's Recovery startup mode, which must republish every
// task stranded in Processing regardless of when it was due.
func (c *Client) FetchByStatus(ctx context.Context, status model.TaskStatus, limit int) ([]model.ParsingTask, error) {
	selector := map[string]interface{}{"status": string(status)}
	params := map[string]interface{}{
		"sort": []map[string]string{{"execution_time": "asc"}},
	}
	if limit > 0 {
		params["limit"] = limit
	}
	return c.findTasks(ctx, selector, params)
}

// FetchGroupedByNetwork returns status-New tasks due now, partitioned
// into buckets keyed by social_network, preserving execution_time
// ordering within each bucket (spec.md §4.3).
func (c *Client) FetchGroupedByNetwork(ctx context.Context, nowMillis uint64) (map[model.SocialNetworkTag][]model.ParsingTask, error) {
	selector := map[string]interface{}{
		"status":         string(model.StatusNew),
		"execution_time": map[string]interface{}{"$lt": nowMillis},
	}
	params := map[string]interface{}{
		"sort": []map[string]string{{"execution_time": "asc"}},
	}

	tasks, err := c.findTasks(ctx, selector, params)
	if err != nil {
		return nil, err
	}

	buckets := make(map[model.SocialNetworkTag][]model.ParsingTask)
	for _, t := range tasks {
		buckets[t.SocialNetwork] = append(buckets[t.SocialNetwork], t)
	}
	return buckets, nil
}

func (c *Client) findTasks(ctx context.Context, selector, params map[string]interface{}) ([]model.ParsingTask, error) {
	rows := c.tasks.Find(ctx, selector, kivik.Params(params))
	defer rows.Close()

	var out []model.ParsingTask
	for rows.Next() {
		var raw json.RawMessage
		if err := rows.ScanDoc(&raw); err != nil {
			return nil, &Error{Op: "fetch_eligible", Reason: err.Error()}
		}
		var doc taskDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &Error{Op: "fetch_eligible", Reason: err.Error()}
		}
		out = append(out, doc.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{StatusCode: kivik.HTTPStatus(err), Op: "fetch_eligible", Reason: err.Error()}
	}
	return out, nil
}
