//go:build integration

package firestore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	gcfirestore "cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dtroode/signalements-server/internal/docstore/firestore"
	"github.com/dtroode/signalements-server/internal/model"
)

var store *firestore.Store

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "gcr.io/google.com/cloudsdktool/google-cloud-cli:emulators",
			ExposedPorts: []string{"8080/tcp"},
			Cmd:          []string{"gcloud", "emulators", "firestore", "start", "--host-port=0.0.0.0:8080"},
			WaitingFor:   wait.ForLog("Dev App Server is now running").WithStartupTimeout(3 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "8080")
	if err != nil {
		panic(err)
	}
	os.Setenv("FIRESTORE_EMULATOR_HOST", fmt.Sprintf("%s:%s", host, port.Port()))

	client, err := gcfirestore.NewClient(ctx, "signalements-test")
	if err != nil {
		panic(err)
	}
	store = firestore.NewStore(client)

	code := m.Run()
	_ = client.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, model.CollectionUsers, "u1", map[string]any{
		"email":    "u1@example.com",
		"username": "u1",
	}, false))
	require.NoError(t, store.Set(ctx, model.CollectionUsers, "u1", map[string]any{
		"lastLogin": time.Now(),
	}, true))

	doc, err := store.Get(ctx, model.CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", doc.Data["email"])
	assert.Contains(t, doc.Data, "lastLogin")

	found, err := store.WhereEqual(ctx, model.CollectionUsers, "email", "u1@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "u1", found[0].ID)

	require.NoError(t, store.Update(ctx, model.CollectionUsers, "u1", map[string]any{"username": "renamed"}))
	all, err := store.GetAll(ctx, model.CollectionUsers)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "renamed", all[0].Data["username"])

	require.NoError(t, store.Delete(ctx, model.CollectionUsers, "u1"))
	_, err = store.Get(ctx, model.CollectionUsers, "u1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = store.Update(ctx, model.CollectionUsers, "missing", map[string]any{"x": 1})
	assert.ErrorIs(t, err, model.ErrNotFound)
}
