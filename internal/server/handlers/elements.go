package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/server/storage"
	"github.com/objectivehq/scenesync/pkg/api"
)

// Reconciler определяет интерфейс движка синхронизации элементов
type Reconciler interface {
	// Reconcile сливает батч клиентских изменений с состоянием сцены
	Reconcile(ctx context.Context, userID string, sceneID uuid.UUID, incoming []*models.Element, syncToken float64) ([]*models.Element, float64, error)

	// Get возвращает элементы, изменившиеся после syncToken, без записей
	Get(ctx context.Context, userID string, sceneID uuid.UUID, syncToken float64) ([]*models.Element, float64, error)
}

// ElementsHandler handles scene element synchronization requests
type ElementsHandler struct {
	logger *slog.Logger
	engine Reconciler
}

// NewElementsHandler creates a new elements handler
func NewElementsHandler(logger *slog.Logger, engine Reconciler) *ElementsHandler {
	return &ElementsHandler{
		logger: logger,
		engine: engine,
	}
}

// sceneIDParam извлекает и парсит sceneID из URL
func sceneIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "sceneID"))
}

// syncTokenParam парсит query-параметр sync_token; 0 означает "всё"
func syncTokenParam(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("sync_token")
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

// HandleGet обрабатывает GET /api/v2/scenes/{sceneID}/elements?sync_token=F
// Возвращает элементы, изменившиеся после sync_token, и новый токен
func (h *ElementsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("user id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sceneID, err := sceneIDParam(r)
	if err != nil {
		sendError(h.logger, w, "invalid scene id", http.StatusBadRequest)
		return
	}

	syncToken, err := syncTokenParam(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid sync_token parameter", slog.Any("error", err))
		sendError(h.logger, w, "invalid sync_token parameter", http.StatusBadRequest)
		return
	}

	items, next, err := h.engine.Get(ctx, userID, sceneID, syncToken)
	if err != nil {
		h.respondEngineError(ctx, w, sceneID, err)
		return
	}

	h.respondElements(ctx, w, items, next)
}

// HandlePost обрабатывает POST /api/v2/scenes/{sceneID}/elements?sync_token=F
// Принимает батч изменений от клиента и возвращает элементы, которых
// ему не хватает, вместе с новым токеном
func (h *ElementsHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.logger.Error("user id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	sceneID, err := sceneIDParam(r)
	if err != nil {
		sendError(h.logger, w, "invalid scene id", http.StatusBadRequest)
		return
	}

	syncToken, err := syncTokenParam(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid sync_token parameter", slog.Any("error", err))
		sendError(h.logger, w, "invalid sync_token parameter", http.StatusBadRequest)
		return
	}

	var req api.SyncElementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode sync request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	incoming := make([]*models.Element, 0, len(req.Items))
	for i := range req.Items {
		incoming = append(incoming, models.ElementFromAPI(sceneID, &req.Items[i]))
	}

	h.logger.InfoContext(ctx, "reconcile request",
		slog.String("scene_id", sceneID.String()),
		slog.Float64("sync_token", syncToken),
		slog.Int("items", len(incoming)))

	items, next, err := h.engine.Reconcile(ctx, userID, sceneID, incoming, syncToken)
	if err != nil {
		h.respondEngineError(ctx, w, sceneID, err)
		return
	}

	h.respondElements(ctx, w, items, next)
}

// respondElements конвертирует элементы хранилища в формат провода
func (h *ElementsHandler) respondElements(ctx context.Context, w http.ResponseWriter, items []*models.Element, next float64) {
	apiItems := make([]api.Element, 0, len(items))
	for _, el := range items {
		apiEl, err := el.ToAPI()
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to decode stored element",
				slog.String("element_id", el.ID), slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
		apiItems = append(apiItems, apiEl)
	}

	sendJSON(h.logger, w, api.ElementsResponse{
		Items:         apiItems,
		NextSyncToken: next,
	}, http.StatusOK)
}

// respondEngineError переводит ошибки движка в HTTP статусы
func (h *ElementsHandler) respondEngineError(ctx context.Context, w http.ResponseWriter, sceneID uuid.UUID, err error) {
	switch {
	case errors.Is(err, storage.ErrSceneNotFound):
		sendError(h.logger, w, "scene not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrNotEnoughRights):
		sendError(h.logger, w, "not enough rights", http.StatusForbidden)
	default:
		h.logger.ErrorContext(ctx, "reconciliation failed",
			slog.String("scene_id", sceneID.String()), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
	}
}
