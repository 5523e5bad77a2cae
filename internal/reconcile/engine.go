package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/server/storage"
)

// SceneNotifier уведомляет владеющую сцену о том, что её содержимое
// изменилось (инвалидация закэшированных артефактов рендера и т.п.).
// Вызывается ровно тогда, когда реконсиляция изменила сохраненное
// состояние.
type SceneNotifier interface {
	SceneChanged(ctx context.Context, sceneID uuid.UUID) error
}

// Engine выполняет реконсиляцию элементов сцены: сливает батч
// клиентских изменений с состоянием сервера и возвращает элементы,
// которых не хватает клиенту, вместе с новым sync token.
type Engine struct {
	logger   *slog.Logger
	scenes   storage.SceneStorage
	elements storage.ElementStorage
	notifier SceneNotifier
	locks    sceneLocks

	// now возвращает серверное epoch-время в секундах.
	// Подменяется в тестах.
	now func() float64
}

// NewEngine создает новый движок реконсиляции
func NewEngine(logger *slog.Logger, scenes storage.SceneStorage, elements storage.ElementStorage, notifier SceneNotifier) *Engine {
	return &Engine{
		logger:   logger,
		scenes:   scenes,
		elements: elements,
		notifier: notifier,
		now:      EpochNow,
	}
}

// EpochNow возвращает текущее время сервера как epoch-секунды.
// Значение используется и как server_updated элементов, и как sync token.
func EpochNow() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}

// checkAccess проверяет, что сцена существует и у пользователя есть
// нужные права. write требуется только для непустого батча.
// Выполняется ДО захвата блокировки и любых записей.
func (e *Engine) checkAccess(ctx context.Context, userID string, sceneID uuid.UUID, write bool) (*models.Scene, error) {
	scene, err := e.scenes.GetScene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if !scene.CanRead(userID) {
		return nil, fmt.Errorf("user %s cannot read scene %s: %w", userID, sceneID, storage.ErrNotEnoughRights)
	}
	if write && !scene.CanWrite(userID) {
		return nil, fmt.Errorf("user %s cannot write scene %s: %w", userID, sceneID, storage.ErrNotEnoughRights)
	}
	return scene, nil
}

// Reconcile сливает батч входящих элементов с состоянием сцены.
//
// Возвращает элементы, которых не хватает клиенту (свежие для его
// sync token плюс существующие версии, победившие его правки), и новый
// sync token. На время вызова удерживается блокировка сцены: две
// конкурирующие реконсиляции одной сцены никогда не перемежаются.
//
// Повторная отправка того же батча безопасна: уже применённые элементы
// дедуплицируются по равенству version nonce.
func (e *Engine) Reconcile(ctx context.Context, userID string, sceneID uuid.UUID, incoming []*models.Element, syncToken float64) ([]*models.Element, float64, error) {
	if _, err := e.checkAccess(ctx, userID, sceneID, len(incoming) > 0); err != nil {
		return nil, 0, err
	}

	// Блокировка удерживается от выборки кандидатов до коммита,
	// освобождение гарантировано на всех путях.
	unlock := e.locks.lock(sceneID)
	defer unlock()

	ids := make([]string, 0, len(incoming))
	for _, el := range incoming {
		ids = append(ids, el.ID)
	}

	candidates, err := e.elements.GetCandidates(ctx, sceneID, ids, syncToken)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get candidate elements: %w", err)
	}

	existing := make(map[string]*models.Element, len(candidates))
	for _, el := range candidates {
		existing[el.ID] = el
	}
	inBatch := make(map[string]bool, len(incoming))
	for _, el := range incoming {
		inBatch[el.ID] = true
	}

	var creates, updates, response []*models.Element

	for _, el := range incoming {
		prev := existing[el.ID]
		switch Resolve(el, prev) {
		case Apply:
			el.SceneID = sceneID
			el.ServerUpdated = e.now()
			if prev == nil {
				creates = append(creates, el)
			} else {
				updates = append(updates, el)
			}
		case Keep:
			// Проигравшему клиенту возвращаем актуальную версию,
			// чтобы он слил её локально.
			response = append(response, prev)
		case Noop:
		}
	}

	// Элементы, свежие для клиента и не присутствующие в его батче.
	for _, el := range candidates {
		if !inBatch[el.ID] {
			response = append(response, el)
		}
	}

	if len(creates)+len(updates) > 0 {
		if err := e.elements.ApplyElements(ctx, sceneID, creates, updates); err != nil {
			return nil, 0, fmt.Errorf("failed to apply elements: %w", err)
		}
		if err := e.notifier.SceneChanged(ctx, sceneID); err != nil {
			// Состояние уже закоммичено, синхронизацию не ломаем.
			e.logger.WarnContext(ctx, "scene change notification failed",
				slog.String("scene_id", sceneID.String()),
				slog.Any("error", err))
		}
	}

	// Sync token снимается строго ПОСЛЕ коммита. Токен, снятый на
	// входе, открыл бы окно: клиент получил бы собственную только что
	// принятую запись как "новую" на следующем запросе, либо пропустил
	// бы записи держателя блокировки, сделанные прямо перед нами.
	next := e.now()

	e.logger.InfoContext(ctx, "scene reconciled",
		slog.String("scene_id", sceneID.String()),
		slog.Int("incoming", len(incoming)),
		slog.Int("created", len(creates)),
		slog.Int("updated", len(updates)),
		slog.Int("returned", len(response)))

	return response, next, nil
}

// Get возвращает элементы сцены, изменившиеся после syncToken, без
// записей и без блокировки. Чтение может наблюдать состояние посреди
// чужой реконсиляции — для точечного чтения это допустимо, поэтому
// токен снимается перед выборкой, а не после нее.
func (e *Engine) Get(ctx context.Context, userID string, sceneID uuid.UUID, syncToken float64) ([]*models.Element, float64, error) {
	if _, err := e.checkAccess(ctx, userID, sceneID, false); err != nil {
		return nil, 0, err
	}

	// Токен снимается до выборки: записи, успевшие лечь между снятием
	// и запросом, переотдаются на следующем опросе.
	next := e.now()

	items, err := e.elements.GetElementsSince(ctx, sceneID, syncToken)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get elements: %w", err)
	}

	return items, next, nil
}
