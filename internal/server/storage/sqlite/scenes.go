package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/server/storage"
	"github.com/objectivehq/scenesync/pkg/api"
)

// CreateScene persists a new scene
func (s *Storage) CreateScene(ctx context.Context, scene *models.Scene) error {
	query := `
		INSERT INTO scenes (id, name, access, created_by_id, is_deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		scene.ID.String(),
		scene.Name,
		string(scene.Access),
		scene.CreatedByID,
		boolToInt(scene.IsDeleted),
		scene.CreatedAt,
		scene.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scene: %w", err)
	}

	return nil
}

// GetScene retrieves a scene by id
// Returns ErrSceneNotFound if scene doesn't exist or is deleted
func (s *Storage) GetScene(ctx context.Context, id uuid.UUID) (*models.Scene, error) {
	query := `
		SELECT id, name, access, created_by_id, is_deleted, created_at, updated_at
		FROM scenes
		WHERE id = ?
	`

	scene := &models.Scene{}
	var sceneID, access string
	var deleted int

	err := s.db.QueryRowContext(ctx, query, id.String()).Scan(
		&sceneID,
		&scene.Name,
		&access,
		&scene.CreatedByID,
		&deleted,
		&scene.CreatedAt,
		&scene.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrSceneNotFound
		}
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}

	parsed, err := uuid.Parse(sceneID)
	if err != nil {
		return nil, fmt.Errorf("invalid scene id in storage: %w", err)
	}

	scene.ID = parsed
	scene.Access = api.Access(access)
	scene.IsDeleted = intToBool(deleted)

	// Удаленная сцена для синхронизации не существует
	if scene.IsDeleted {
		return nil, storage.ErrSceneNotFound
	}

	return scene, nil
}

// TouchScene updates the scene's updated_at timestamp
func (s *Storage) TouchScene(ctx context.Context, id uuid.UUID, updatedAt float64) error {
	query := `UPDATE scenes SET updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, updatedAt, id.String())
	if err != nil {
		return fmt.Errorf("failed to touch scene: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrSceneNotFound
	}

	return nil
}

// DeleteScene marks scene as deleted (soft delete)
// Returns ErrSceneNotFound if scene doesn't exist
func (s *Storage) DeleteScene(ctx context.Context, id uuid.UUID, updatedAt float64) error {
	query := `UPDATE scenes SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

	result, err := s.db.ExecContext(ctx, query, updatedAt, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete scene: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return storage.ErrSceneNotFound
	}

	return nil
}
