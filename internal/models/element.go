package models

import (
	"github.com/google/uuid"

	"github.com/objectivehq/scenesync/pkg/api"
)

// Element представляет элемент сцены в хранилище.
// Уникален в пределах сцены, первичный ключ — пара (SceneID, ID).
type Element struct {
	SceneID uuid.UUID `json:"scene_id"`
	ID      string    `json:"id"`

	// Метаданные синхронизации (клиентские):

	Version      int64   `json:"version"`       // не участвует в слиянии, хранится как есть
	VersionNonce int64   `json:"version_nonce"` // отпечаток содержимого для дедупликации
	Updated      float64 `json:"updated"`       // клиентское время правки, сигнал tie-break
	IsDeleted    bool    `json:"is_deleted"`    // soft delete, элементы физически не удаляются

	// Свойства image-элементов:

	FileID string `json:"file_id,omitempty"`
	Status string `json:"status,omitempty"`

	// Payload полный JSON элемента как он пришел от клиента.
	// Сервер хранит и возвращает его байт-в-байт.
	Payload []byte `json:"payload"`

	// ServerUpdated серверное время записи. Единственное поле, по
	// которому определяется свежесть элемента относительно sync token
	// клиента.
	ServerUpdated float64 `json:"server_updated"`
}

// ElementFromAPI конвертирует элемент с провода в модель хранилища.
func ElementFromAPI(sceneID uuid.UUID, el *api.Element) *Element {
	return &Element{
		SceneID:      sceneID,
		ID:           el.ID,
		Version:      el.Version,
		VersionNonce: el.VersionNonce,
		Updated:      el.Updated,
		IsDeleted:    el.IsDeleted,
		FileID:       el.FileID,
		Status:       string(el.Status),
		Payload:      el.Raw(),
	}
}

// ToAPI восстанавливает элемент провода из сохраненного payload.
func (e *Element) ToAPI() (api.Element, error) {
	return api.ElementFromRaw(e.Payload)
}

// Clone создает глубокую копию элемента
func (e *Element) Clone() *Element {
	payload := make([]byte, len(e.Payload))
	copy(payload, e.Payload)

	clone := *e
	clone.Payload = payload
	return &clone
}
