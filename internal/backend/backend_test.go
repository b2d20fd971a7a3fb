// internal/backend/backend_test.go
package backend

import (
	"testing"

	"github.com/alitto/pond/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Corphon/DramaForgeMCP/internal/config"
	"github.com/Corphon/DramaForgeMCP/internal/services"
	"github.com/Corphon/DramaForgeMCP/internal/storage"
)

func newTestDeps(t *testing.T) *LocalDeps {
	t.Helper()
	store := storage.NewMemoryStore()
	dramas := services.NewDramaService(store)
	configs := services.NewAIConfigService(store)
	tasks := services.NewTaskService(store)
	pool := pond.NewPool(1)
	t.Cleanup(pool.StopAndWait)

	return &LocalDeps{
		Dramas:     dramas,
		Images:     services.NewImageGenerationService(store, dramas, configs, pool),
		Videos:     services.NewVideoGenerationService(store, dramas, configs, pool),
		Generation: services.NewGenerationService(dramas, configs, tasks, pool),
		Tasks:      tasks,
	}
}

func TestNewSelectsLocalBackend(t *testing.T) {
	b, err := New(&config.AppConfig{StorageMode: config.StorageModeLocal}, newTestDeps(t))
	require.NoError(t, err)
	assert.IsType(t, &LocalBackend{}, b)
}

func TestNewDefaultsToLocalOnEmptyMode(t *testing.T) {
	b, err := New(&config.AppConfig{}, newTestDeps(t))
	require.NoError(t, err)
	assert.IsType(t, &LocalBackend{}, b)
}

func TestNewLocalRequiresDeps(t *testing.T) {
	_, err := New(&config.AppConfig{StorageMode: config.StorageModeLocal}, nil)
	assert.Error(t, err)
}

func TestNewSelectsRemoteBackend(t *testing.T) {
	b, err := New(&config.AppConfig{
		StorageMode:   config.StorageModeRemote,
		RemoteBaseURL: "https://remote.example.com",
	}, nil)
	require.NoError(t, err)
	assert.IsType(t, &RemoteBackend{}, b)
}

func TestNewRemoteRequiresBaseURL(t *testing.T) {
	_, err := New(&config.AppConfig{StorageMode: config.StorageModeRemote}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote_base_url")
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New(&config.AppConfig{StorageMode: "s3"}, nil)
	assert.Error(t, err)
}
