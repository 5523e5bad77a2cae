package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/reconcile"
	"github.com/objectivehq/scenesync/internal/server/storage"
	"github.com/objectivehq/scenesync/pkg/api"
)

// FilesHandler обрабатывает вложения сцены (картинки, thumbnail'ы)
type FilesHandler struct {
	logger *slog.Logger
	scenes storage.SceneStorage
	files  storage.FileStorage
	now    func() float64
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(logger *slog.Logger, scenes storage.SceneStorage, files storage.FileStorage) *FilesHandler {
	return &FilesHandler{
		logger: logger,
		scenes: scenes,
		files:  files,
		now:    reconcile.EpochNow,
	}
}

// fileToAPI конвертирует модель файла в формат ответа
func fileToAPI(f *models.File) api.File {
	return api.File{
		ID:          f.ID,
		MimeType:    f.MimeType,
		Kind:        api.FileKind(f.Kind),
		Width:       f.Width,
		Height:      f.Height,
		DataURL:     f.DataURL,
		CreatedByID: f.CreatedByID,
		CreatedAt:   f.CreatedAt,
	}
}

// checkSceneAccess загружает сцену и проверяет права
func (h *FilesHandler) checkSceneAccess(r *http.Request, userID string, write bool) (*models.Scene, *handlerError) {
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

// Create обрабатывает POST /api/v2/scenes/{sceneID}/files
// Идемпотентен: повторная загрузка файла с тем же id возвращает
// уже сохраненную запись, клиенты ретраят загрузки свободно.
func (h *FilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scene, httpErr := h.checkSceneAccess(r, userID, true)
	if httpErr != nil {
		sendError(h.logger, w, httpErr.message, httpErr.status)
		return
	}

	var req api.CreateFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		sendError(h.logger, w, "id is required", http.StatusBadRequest)
		return
	}
	if req.DataURL == "" {
		sendError(h.logger, w, "dataURL is required", http.StatusBadRequest)
		return
	}

	kind := req.Kind
	if kind == "" {
		kind = api.FileKindImage
	}

	file := &models.File{
		ID:          req.ID,
		SceneID:     scene.ID,
		MimeType:    req.MimeType,
		Kind:        string(kind),
		Width:       req.Width,
		Height:      req.Height,
		DataURL:     req.DataURL,
		CreatedByID: userID,
		CreatedAt:   h.now(),
	}

	if err := h.files.CreateFile(ctx, file); err != nil {
		if errors.Is(err, storage.ErrFileAlreadyExists) {
			existing, getErr := h.files.GetFile(ctx, scene.ID, req.ID)
			if getErr != nil {
				h.logger.ErrorContext(ctx, "failed to get existing file", slog.Any("error", getErr))
				sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
				return
			}
			sendJSON(h.logger, w, fileToAPI(existing), http.StatusOK)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create file", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "file created",
		slog.String("scene_id", scene.ID.String()),
		slog.String("file_id", req.ID))

	sendJSON(h.logger, w, fileToAPI(file), http.StatusCreated)
}

// Get обрабатывает GET /api/v2/scenes/{sceneID}/files/{fileID}
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	scene, httpErr := h.checkSceneAccess(r, userID, false)
	if httpErr != nil {
		sendError(h.logger, w, httpErr.message, httpErr.status)
		return
	}

	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		sendError(h.logger, w, "file id is required", http.StatusBadRequest)
		return
	}

	file, err := h.files.GetFile(ctx, scene.ID, fileID)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			sendError(h.logger, w, "file not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get file", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, fileToAPI(file), http.StatusOK)
}
