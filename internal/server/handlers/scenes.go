package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/reconcile"
	"github.com/objectivehq/scenesync/internal/rendercache"
	"github.com/objectivehq/scenesync/internal/server/storage"
	"github.com/objectivehq/scenesync/pkg/api"
)

// maxRenderArtifactSize ограничивает размер загружаемого артефакта (8 MiB)
const maxRenderArtifactSize = 8 << 20

// ScenesHandler обрабатывает CRUD сцен и их артефакты рендера
type ScenesHandler struct {
	logger *slog.Logger
	scenes storage.SceneStorage
	cache  *rendercache.Cache
	now    func() float64
}

// NewScenesHandler creates a new scenes handler
func NewScenesHandler(logger *slog.Logger, scenes storage.SceneStorage, cache *rendercache.Cache) *ScenesHandler {
	return &ScenesHandler{
		logger: logger,
		scenes: scenes,
		cache:  cache,
		now:    reconcile.EpochNow,
	}
}

// sceneToAPI конвертирует модель сцены в формат ответа
func sceneToAPI(s *models.Scene) api.Scene {
	return api.Scene{
		ID:          s.ID.String(),
		Name:        s.Name,
		Access:      s.Access,
		CreatedByID: s.CreatedByID,
		IsDeleted:   s.IsDeleted,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// Create обрабатывает POST /api/v2/scenes
func (h *ScenesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateSceneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		sendError(h.logger, w, "name is required", http.StatusBadRequest)
		return
	}

	access := req.Access
	if access == "" {
		access = api.AccessPrivate
	}
	switch access {
	case api.AccessPrivate, api.AccessProtected, api.AccessPublic:
	default:
		sendError(h.logger, w, "invalid access level", http.StatusBadRequest)
		return
	}

	now := h.now()
	scene := &models.Scene{
		ID:          uuid.New(),
		Name:        req.Name,
		Access:      access,
		CreatedByID: userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.scenes.CreateScene(ctx, scene); err != nil {
		h.logger.ErrorContext(ctx, "failed to create scene", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "scene created",
		slog.String("scene_id", scene.ID.String()),
		slog.String("user_id", userID))

	sendJSON(h.logger, w, sceneToAPI(scene), http.StatusCreated)
}

// Get обрабатывает GET /api/v2/scenes/{sceneID}
func (h *ScenesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scene, httpErr := h.loadScene(r, userID, false)
	if httpErr != nil {
		sendError(h.logger, w, httpErr.message, httpErr.status)
		return
	}

	sendJSON(h.logger, w, sceneToAPI(scene), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v2/scenes/{sceneID}
// Сцена удаляется мягко: помечается is_deleted и пропадает из выдачи.
func (h *ScenesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scene, httpErr := h.loadScene(r, userID, false)
	if httpErr != nil {
		sendError(h.logger, w, httpErr.message, httpErr.status)
		return
	}

	// Удалять сцену может только владелец, независимо от access
	if scene.CreatedByID != userID {
		sendError(h.logger, w, "not enough rights", http.StatusForbidden)
		return
	}

	if err := h.scenes.DeleteScene(ctx, scene.ID, h.now()); err != nil {
		if errors.Is(err, storage.ErrSceneNotFound) {
			sendError(h.logger, w, "scene not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete scene", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.cache.Invalidate(scene.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to invalidate render cache", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "scene deleted", slog.String("scene_id", scene.ID.String()))

	w.WriteHeader(http.StatusNoContent)
}

// GetRender обрабатывает GET /api/v2/scenes/{sceneID}/render?kind=thumbnail
func (h *ScenesHandler) GetRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scene, httpErr := h.loadScene(r, userID, false)
	if httpErr != nil {
		sendError(h.logger, w, httpErr.message, httpErr.status)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "thumbnail"
	}

	data, err := h.cache.Get(scene.ID, kind)
	if err != nil {
		if errors.Is(err, rendercache.ErrArtifactNotFound) {
			sendError(h.logger, w, "render artifact not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to read render cache", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write render artifact", slog.Any("error", err))
	}
}

// PutRender обрабатывает POST /api/v2/scenes/{sceneID}/render?kind=thumbnail
// Тело запроса — готовый артефакт как есть (клиент рендерит сам)
func (h *ScenesHandler) PutRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scene, httpErr := h.loadScene(r, userID, true)
	if httpErr != nil {
		sendError(h.logger, w, httpErr.message, httpErr.status)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "thumbnail"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxRenderArtifactSize+1))
	if err != nil {
		sendError(h.logger, w, "failed to read request body", http.StatusBadRequest)
		return
	}
	if len(data) > maxRenderArtifactSize {
		sendError(h.logger, w, "artifact too large", http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) == 0 {
		sendError(h.logger, w, "artifact body is empty", http.StatusBadRequest)
		return
	}

	if err := h.cache.Put(scene.ID, kind, data); err != nil {
		h.logger.ErrorContext(ctx, "failed to store render artifact", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "render artifact stored",
		slog.String("scene_id", scene.ID.String()),
		slog.String("kind", kind),
		slog.Int("size", len(data)))

	w.WriteHeader(http.StatusNoContent)
}

// handlerError пара статус/сообщение для ранних выходов
type handlerError struct {
	status  int
	message string
}

// loadScene загружает сцену из URL и проверяет права доступа
func (h *ScenesHandler) loadScene(r *http.Request, userID string, write bool) (*models.Scene, *handlerError) {
	sceneID, err := sceneIDParam(r)
	if err != nil {
		return nil, &handlerError{http.StatusBadRequest, "invalid scene id"}
	}

	scene, err := h.scenes.GetScene(r.Context(), sceneID)
	if err != nil {
		if errors.Is(err, storage.ErrSceneNotFound) {
			return nil, &handlerError{http.StatusNotFound, "scene not found"}
		}
		h.logger.ErrorContext(r.Context(), "failed to get scene", slog.Any("error", err))
		return nil, &handlerError{http.StatusInternalServerError, "internal server error"}
	}

	if write {
		if !scene.CanWrite(userID) {
			return nil, &handlerError{http.StatusForbidden, "not enough rights"}
		}
	} else if !scene.CanRead(userID) {
		return nil, &handlerError{http.StatusForbidden, "not enough rights"}
	}

	return scene, nil
}
