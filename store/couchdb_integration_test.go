//go:build integration
// +build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/evalgo/mansa/model"
)

// setupCouchDBContainer starts a disposable CouchDB instance and
// returns a Client connected to it plus a teardown func.
func setupCouchDBContainer(t *testing.T) (*Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "couchdb:3.3",
		ExposedPorts: []string{"5984/tcp"},
		Env: map[string]string{
			"COUCHDB_USER":     "admin",
			"COUCHDB_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForHTTP("/_up").WithPort("5984/tcp").WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start CouchDB container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5984")
	require.NoError(t, err)

	url := fmt.Sprintf("http://admin:testpass@%s:%s", host, port.Port())
	client, err := Connect(ctx, url, "mansa_integration")
	require.NoError(t, err, "failed to connect to CouchDB")

	cleanup := func() {
		client.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
	return client, cleanup
}

func TestTaskStoreIntegration_InsertFetchUpdate(t *testing.T) {
	client, cleanup := setupCouchDBContainer(t)
	defer cleanup()
	ctx := context.Background()

	past := uint64(time.Now().Add(-time.Hour).UnixMilli())
	tasks := []model.ParsingTask{
		{
			ID:            "integration-1",
			ExecutionTime: past,
			Parameters:    model.RedditParameters{Action: model.ActionThreadNew, Thread: "golang"},
			ActionType:    string(model.ActionThreadNew),
			SocialNetwork: model.Reddit,
			Status:        model.StatusNew,
		},
		{
			ID:            "integration-2",
			ExecutionTime: past,
			Parameters:    model.RedditParameters{Action: model.ActionThreadNew, Thread: "rust"},
			ActionType:    string(model.ActionThreadNew),
			SocialNetwork: model.Twitter,
			Status:        model.StatusNew,
		},
	}
	require.NoError(t, client.InsertMany(ctx, tasks))

	eligible, err := client.FetchEligible(ctx, []model.TaskStatus{model.StatusNew}, uint64(time.Now().UnixMilli()), 0)
	require.NoError(t, err)
	require.Len(t, eligible, 2)

	grouped, err := client.FetchGroupedByNetwork(ctx, uint64(time.Now().UnixMilli()))
	require.NoError(t, err)
	require.Len(t, grouped[model.Reddit], 1)
	require.Len(t, grouped[model.Twitter], 1)

	require.NoError(t, client.UpdateStatus(ctx, []string{"integration-1"}, model.StatusProcessing))

	byStatus, err := client.FetchByStatus(ctx, model.StatusProcessing, 0)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, "integration-1", byStatus[0].ID)
}

func TestEntityStoreIntegration_UpsertIsIdempotent(t *testing.T) {
	client, cleanup := setupCouchDBContainer(t)
	defer cleanup()
	ctx := context.Background()

	title := "first title"
	entity := model.Entity{
		NetworkID:     "t3_abc",
		EntityType:    model.EntityPost,
		DateTime:      1700000000000,
		Source:        "golang",
		Title:         &title,
		SocialNetwork: model.Reddit,
	}
	require.NoError(t, client.UpsertMany(ctx, []model.Entity{entity}))

	updatedTitle := "updated title"
	entity.Title = &updatedTitle
	require.NoError(t, client.UpsertMany(ctx, []model.Entity{entity}))

	row := client.entities.Get(ctx, entityDocID(entity))
	var doc entityDoc
	require.NoError(t, row.ScanDoc(&doc))
	require.Equal(t, "updated title", *doc.Title)
}
