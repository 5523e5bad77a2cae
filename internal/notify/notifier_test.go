package notify

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/rendercache"
	"github.com/objectivehq/scenesync/internal/server/storage"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelError}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// mockSceneStorage реализует storage.SceneStorage для тестов
type mockSceneStorage struct {
	touchedID  uuid.UUID
	touchedAt  float64
	touchCalls int
	touchErr   error
}

func (m *mockSceneStorage) CreateScene(ctx context.Context, scene *models.Scene) error {
	return nil
}

func (m *mockSceneStorage) GetScene(ctx context.Context, id uuid.UUID) (*models.Scene, error) {
	return nil, storage.ErrSceneNotFound
}

func (m *mockSceneStorage) TouchScene(ctx context.Context, id uuid.UUID, updatedAt float64) error {
	m.touchCalls++
	m.touchedID = id
	m.touchedAt = updatedAt
	return m.touchErr
}

func (m *mockSceneStorage) DeleteScene(ctx context.Context, id uuid.UUID, updatedAt float64) error {
	return nil
}

func setupTestCache(t *testing.T) *rendercache.Cache {
	t.Helper()

	cache, err := rendercache.New(filepath.Join(t.TempDir(), "render.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, cache.Close())
	})

	return cache
}

func TestNotifier_SceneChanged(t *testing.T) {
	ctx := context.Background()
	scenes := &mockSceneStorage{}
	cache := setupTestCache(t)

	sceneID := uuid.New()
	require.NoError(t, cache.Put(sceneID, "thumbnail", []byte("stale")))

	n := New(setupTestLogger(), scenes, cache)

	require.NoError(t, n.SceneChanged(ctx, sceneID))

	// Сцена помечена изменившейся
	assert.Equal(t, 1, scenes.touchCalls)
	assert.Equal(t, sceneID, scenes.touchedID)
	assert.Greater(t, scenes.touchedAt, 0.0)

	// Устаревшие артефакты рендера инвалидированы
	_, err := cache.Get(sceneID, "thumbnail")
	assert.ErrorIs(t, err, rendercache.ErrArtifactNotFound)
}

func TestNotifier_SceneChanged_TouchError(t *testing.T) {
	ctx := context.Background()
	scenes := &mockSceneStorage{touchErr: storage.ErrSceneNotFound}
	cache := setupTestCache(t)

	n := New(setupTestLogger(), scenes, cache)

	err := n.SceneChanged(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrSceneNotFound)
}
