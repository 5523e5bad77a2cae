// Package notify реализует side-channel уведомление сцены об изменении
// её содержимого реконсиляцией.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/reconcile"
	"github.com/objectivehq/scenesync/internal/rendercache"
	"github.com/objectivehq/scenesync/internal/server/storage"
)

// Notifier помечает сцену изменившейся: обновляет её updated_at и
// инвалидирует закэшированные артефакты рендера.
type Notifier struct {
	logger *slog.Logger
	scenes storage.SceneStorage
	cache  *rendercache.Cache
	now    func() float64
}

// New creates a new scene mutation notifier
func New(logger *slog.Logger, scenes storage.SceneStorage, cache *rendercache.Cache) *Notifier {
	return &Notifier{
		logger: logger,
		scenes: scenes,
		cache:  cache,
		now:    reconcile.EpochNow,
	}
}

// SceneChanged вызывается движком реконсиляции, когда сохраненное
// состояние сцены изменилось.
func (n *Notifier) SceneChanged(ctx context.Context, sceneID uuid.UUID) error {
	if err := n.scenes.TouchScene(ctx, sceneID, n.now()); err != nil {
		return fmt.Errorf("failed to touch scene: %w", err)
	}

	if err := n.cache.Invalidate(sceneID); err != nil {
		return fmt.Errorf("failed to invalidate render cache: %w", err)
	}

	n.logger.DebugContext(ctx, "scene marked as changed", slog.String("scene_id", sceneID.String()))

	return nil
}
