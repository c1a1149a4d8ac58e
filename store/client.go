// Package store is the durable persistence layer described in spec.md
// §4.3 (Task Store) and §4.4 (Entity Store), backed by CouchDB through
// the Kivik driver. Kivik provides the Go driver interface; the
// "couchdb" blank import registers the wire-protocol driver that
// actually talks to a CouchDB server over HTTP.
package store

import (
	"context"
	"fmt"

	kivik "github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb"
)

const (
	tasksSuffix    = "_tasks"
	entitiesSuffix = "_entities"
)

// Client owns the Kivik connection and the two database handles the
// crawler needs: one for the task queue, one for parsed entities.
// Kivik pools connections internally, so a single Client is meant to
// be shared across every goroutine in the process.
type Client struct {
	client   *kivik.Client
	tasks    *kivik.DB
	entities *kivik.DB
}

// Connect dials url and ensures the "<database>_tasks" and
// "<database>_entities" databases exist, creating them on first run.
func Connect(ctx context.Context, url, database string) (*Client, error) {
	kc, err := kivik.New("couch", url)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}

	tasksName := database + tasksSuffix
	entitiesName := database + entitiesSuffix

	if err := ensureDB(ctx, kc, tasksName); err != nil {
		return nil, err
	}
	if err := ensureDB(ctx, kc, entitiesName); err != nil {
		return nil, err
	}

	c := &Client{
		client:   kc,
		tasks:    kc.DB(tasksName),
		entities: kc.DB(entitiesName),
	}

	if err := c.createIndexes(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func ensureDB(ctx context.Context, kc *kivik.Client, name string) error {
	exists, err := kc.DBExists(ctx, name)
	if err != nil {
		return &Error{StatusCode: kivik.HTTPStatus(err), Op: "db_exists:" + name, Reason: err.Error()}
	}
	if exists {
		return nil
	}
	if err := kc.CreateDB(ctx, name); err != nil {
		return &Error{StatusCode: kivik.HTTPStatus(err), Op: "create_db:" + name, Reason: err.Error()}
	}
	return nil
}

// createIndexes builds the Mango indexes fetch_eligible and
// fetch_grouped_by_network rely on to push sort-before-limit down to
// the server instead of scanning the whole database.
func (c *Client) createIndexes(ctx context.Context) error {
	indexes := []struct {
		name   string
		fields []string
	}{
		{"status-execution-time", []string{"status", "execution_time"}},
		{"network-status-execution-time", []string{"social_network", "status", "execution_time"}},
	}
	for _, idx := range indexes {
		def := map[string]interface{}{
			"index": map[string]interface{}{"fields": idx.fields},
			"name":  idx.name,
			"type":  "json",
		}
		if err := c.tasks.CreateIndex(ctx, "", idx.name, def); err != nil {
			return &Error{StatusCode: kivik.HTTPStatus(err), Op: "create_index:" + idx.name, Reason: err.Error()}
		}
	}
	return nil
}

// Close releases the underlying HTTP connections.
func (c *Client) Close() error {
	return c.client.Close()
}
