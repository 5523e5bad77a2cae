package models

import (
	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/pkg/api"
)

// Scene представляет сцену — разделяемый документ-холст с элементами.
// Сцена является единицей блокировки при синхронизации элементов.
type Scene struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Access      api.Access `json:"access"`
	CreatedByID string     `json:"created_by_id"`
	IsDeleted   bool       `json:"is_deleted"` // soft delete
	CreatedAt   float64    `json:"created_at"`
	UpdatedAt   float64    `json:"updated_at"` // обновляется нотификатором при изменении элементов
}

// CanRead проверяет право пользователя читать сцену.
// Владелец читает всегда, остальные — если сцена не private.
func (s *Scene) CanRead(userID string) bool {
	if s.CreatedByID == userID {
		return true
	}
	return s.Access == api.AccessProtected || s.Access == api.AccessPublic
}

// CanWrite проверяет право пользователя изменять элементы сцены.
// Владелец пишет всегда, остальные — только в public сцены.
func (s *Scene) CanWrite(userID string) bool {
	if s.CreatedByID == userID {
		return true
	}
	return s.Access == api.AccessPublic
}

// File представляет бинарный ресурс (изображение), привязанный к сцене.
// ID клиентский — HEX SHA-1 содержимого, уникален в пределах сцены.
type File struct {
	ID          string    `json:"id"`
	SceneID     uuid.UUID `json:"scene_id"`
	MimeType    string    `json:"mime_type"`
	Kind        string    `json:"kind"` // image / thumbnail / render
	Width       float64   `json:"width,omitempty"`
	Height      float64   `json:"height,omitempty"`
	DataURL     string    `json:"data_url"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   float64   `json:"created_at"`
}
