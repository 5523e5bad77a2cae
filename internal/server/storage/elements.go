package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
)

// ElementStorage defines interface for scene elements persistence
type ElementStorage interface {
	// GetCandidates retrieves elements whose id is among the given set
	// OR whose server_updated strictly exceeds since. One query serves
	// both the merge-candidate set and the "fresh for the client" set.
	// Returns empty slice if nothing matched
	GetCandidates(ctx context.Context, sceneID uuid.UUID, ids []string, since float64) ([]*models.Element, error)

	// GetElementsSince retrieves elements (including deleted) whose
	// server_updated strictly exceeds since. Used by the read-only path.
	// Returns empty slice if nothing matched
	GetElementsSince(ctx context.Context, sceneID uuid.UUID, since float64) ([]*models.Element, error)

	// ApplyElements persists creates and updates as a single
	// transaction: either the whole accepted subset is applied or
	// nothing is. Elements must carry ServerUpdated already stamped.
	ApplyElements(ctx context.Context, sceneID uuid.UUID, creates, updates []*models.Element) error
}
