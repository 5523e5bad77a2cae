package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
)

const elementColumns = `scene_id, id, version, version_nonce, updated,
	       is_deleted, file_id, status, payload, server_updated`

// GetCandidates retrieves elements whose id is among the given set OR
// whose server_updated strictly exceeds since. One query serves both
// the merge-candidate set and the "fresh for the client" set, avoiding
// a second round trip.
func (s *Storage) GetCandidates(ctx context.Context, sceneID uuid.UUID, ids []string, since float64) ([]*models.Element, error) {
	if len(ids) == 0 {
		return s.GetElementsSince(ctx, sceneID, since)
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	//nolint:gosec // только плейсхолдеры, значения передаются аргументами
	query := fmt.Sprintf(`
		SELECT `+elementColumns+`
		FROM elements
		WHERE scene_id = ? AND (server_updated > ? OR id IN (%s))
		ORDER BY server_updated ASC
	`, placeholders)

	args := make([]any, 0, len(ids)+2)
	args = append(args, sceneID.String(), since)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate elements: %w", err)
	}
	defer rows.Close()

	return scanElements(rows)
}

// GetElementsSince retrieves elements (including deleted) whose
// server_updated strictly exceeds since
func (s *Storage) GetElementsSince(ctx context.Context, sceneID uuid.UUID, since float64) ([]*models.Element, error) {
	query := `
		SELECT ` + elementColumns + `
		FROM elements
		WHERE scene_id = ? AND server_updated > ?
		ORDER BY server_updated ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sceneID.String(), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query elements since token: %w", err)
	}
	defer rows.Close()

	return scanElements(rows)
}

// ApplyElements persists creates and updates as a single transaction.
// Частично примененный батч невозможен: при любой ошибке транзакция
// откатывается целиком.
func (s *Storage) ApplyElements(ctx context.Context, sceneID uuid.UUID, creates, updates []*models.Element) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op после коммита

	insertQuery := `
		INSERT INTO elements (
			scene_id, id, version, version_nonce, updated,
			is_deleted, file_id, status, payload, server_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, el := range creates {
		_, err := tx.ExecContext(ctx, insertQuery,
			sceneID.String(),
			el.ID,
			el.Version,
			el.VersionNonce,
			el.Updated,
			boolToInt(el.IsDeleted),
			nullString(el.FileID),
			nullString(el.Status),
			el.Payload,
			el.ServerUpdated,
		)
		if err != nil {
			return fmt.Errorf("failed to insert element %s: %w", el.ID, err)
		}
	}

	updateQuery := `
		UPDATE elements
		SET version = ?, version_nonce = ?, updated = ?,
		    is_deleted = ?, file_id = ?, status = ?, payload = ?,
		    server_updated = ?
		WHERE scene_id = ? AND id = ?
	`
	for _, el := range updates {
		_, err := tx.ExecContext(ctx, updateQuery,
			el.Version,
			el.VersionNonce,
			el.Updated,
			boolToInt(el.IsDeleted),
			nullString(el.FileID),
			nullString(el.Status),
			el.Payload,
			el.ServerUpdated,
			sceneID.String(),
			el.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update element %s: %w", el.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit elements: %w", err)
	}

	return nil
}

// scanElements is a helper function to scan multiple elements from rows
func scanElements(rows *sql.Rows) ([]*models.Element, error) {
	var elements []*models.Element

	for rows.Next() {
		el := &models.Element{}
		var sceneID string
		var deleted int
		var fileID, status sql.NullString

		err := rows.Scan(
			&sceneID,
			&el.ID,
			&el.Version,
			&el.VersionNonce,
			&el.Updated,
			&deleted,
			&fileID,
			&status,
			&el.Payload,
			&el.ServerUpdated,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan element: %w", err)
		}

		parsed, err := uuid.Parse(sceneID)
		if err != nil {
			return nil, fmt.Errorf("invalid scene id in storage: %w", err)
		}

		el.SceneID = parsed
		el.IsDeleted = intToBool(deleted)
		el.FileID = fileID.String
		el.Status = status.String

		elements = append(elements, el)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return elements, nil
}

// nullString преобразует пустую строку в NULL
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
