package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
)

// SceneStorage defines interface for scenes persistence
type SceneStorage interface {
	// CreateScene persists a new scene
	CreateScene(ctx context.Context, scene *models.Scene) error

	// GetScene retrieves a scene by id
	// Returns ErrSceneNotFound if scene doesn't exist or is deleted
	GetScene(ctx context.Context, id uuid.UUID) (*models.Scene, error)

	// TouchScene updates the scene's updated_at timestamp.
	// Called by the mutation notifier when scene content changed.
	TouchScene(ctx context.Context, id uuid.UUID, updatedAt float64) error

	// DeleteScene marks scene as deleted (soft delete)
	// Returns ErrSceneNotFound if scene doesn't exist
	DeleteScene(ctx context.Context, id uuid.UUID, updatedAt float64) error
}

// FileStorage defines interface for scene files persistence
type FileStorage interface {
	// CreateFile persists a new scene file
	// Returns ErrFileAlreadyExists if (scene_id, id) is already taken
	CreateFile(ctx context.Context, file *models.File) error

	// GetFile retrieves a file by scene id and file id
	// Returns ErrFileNotFound if file doesn't exist
	GetFile(ctx context.Context, sceneID uuid.UUID, fileID string) (*models.File, error)
}
