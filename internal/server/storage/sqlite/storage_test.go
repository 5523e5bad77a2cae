package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/pkg/api"
)

// setupTestStorage создает in-memory хранилище для тестов
func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)

	cleanup := func() {
		require.NoError(t, s.Close())
	}

	return s, cleanup
}

// createTestUser создает тестового пользователя и возвращает его id
func createTestUser(t *testing.T, ctx context.Context, s *Storage) string {
	t.Helper()

	userID := uuid.New().String()
	user := &models.User{
		ID:           userID,
		Email:        userID + "@example.com",
		PasswordHash: "$2a$10$testhash",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(ctx, user))

	return userID
}

// createTestScene создает тестовую сцену и возвращает её
func createTestScene(t *testing.T, ctx context.Context, s *Storage, ownerID string, access api.Access) *models.Scene {
	t.Helper()

	scene := &models.Scene{
		ID:          uuid.New(),
		Name:        "test scene",
		Access:      access,
		CreatedByID: ownerID,
		CreatedAt:   100,
		UpdatedAt:   100,
	}
	require.NoError(t, s.CreateScene(ctx, scene))

	return scene
}

func TestStorage_New(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	require.NotNil(t, s.DB())
	require.NoError(t, s.DB().Ping())
}
