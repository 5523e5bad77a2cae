package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/server/storage"
)

// CreateFile persists a new scene file
// Returns ErrFileAlreadyExists if (scene_id, id) is already taken
func (s *Storage) CreateFile(ctx context.Context, file *models.File) error {
	query := `
		INSERT INTO files (scene_id, id, mime_type, kind, width, height, data_url, created_by_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		file.SceneID.String(),
		file.ID,
		file.MimeType,
		file.Kind,
		nullFloat(file.Width),
		nullFloat(file.Height),
		file.DataURL,
		file.CreatedByID,
		file.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrFileAlreadyExists
		}
		return fmt.Errorf("failed to insert file: %w", err)
	}

	return nil
}

// GetFile retrieves a file by scene id and file id
// Returns ErrFileNotFound if file doesn't exist
func (s *Storage) GetFile(ctx context.Context, sceneID uuid.UUID, fileID string) (*models.File, error) {
	query := `
		SELECT scene_id, id, mime_type, kind, width, height, data_url, created_by_id, created_at
		FROM files
		WHERE scene_id = ? AND id = ?
	`

	file := &models.File{}
	var scene string
	var width, height sql.NullFloat64

	err := s.db.QueryRowContext(ctx, query, sceneID.String(), fileID).Scan(
		&scene,
		&file.ID,
		&file.MimeType,
		&file.Kind,
		&width,
		&height,
		&file.DataURL,
		&file.CreatedByID,
		&file.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	parsed, err := uuid.Parse(scene)
	if err != nil {
		return nil, fmt.Errorf("invalid scene id in storage: %w", err)
	}

	file.SceneID = parsed
	file.Width = width.Float64
	file.Height = height.Float64

	return file, nil
}

// nullFloat преобразует ноль в NULL (ширина/высота опциональны)
func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: f != 0}
}
