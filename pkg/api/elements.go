package api

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// FileStatus описывает состояние привязанного к элементу файла (image element).
type FileStatus string

const (
	FileStatusPending FileStatus = "pending"
	FileStatusSaved   FileStatus = "saved"
	FileStatusError   FileStatus = "error"
)

// Element представляет один графический элемент сцены на проводе.
//
// Схема открытая: клиент присылает произвольный набор полей, сервер
// обязан вернуть их без изменений. Известные поля (используемые при
// синхронизации) вынесены в структуру, всё остальное сохраняется в raw
// и отдается назад байт-в-байт.
type Element struct {
	ID        string `json:"id"`
	IsDeleted bool   `json:"isDeleted"`

	// Метаданные синхронизации:

	// Version монотонно растет на каждом локальном изменении.
	// Алгоритмом слияния НЕ используется, хранится для обратной
	// совместимости с клиентами.
	Version int64 `json:"version"`
	// VersionNonce случайное число, перегенерируется на каждом
	// локальном изменении. Равенство nonce трактуется как повторная
	// отправка уже применённого изменения.
	VersionNonce int64 `json:"versionNonce"`
	// Updated epoch-время последнего изменения по часам клиента.
	// Единственный сигнал для разрешения конфликтов.
	Updated float64 `json:"updated"`

	// Свойства image-элементов:

	FileID string     `json:"fileId,omitempty"`
	Status FileStatus `json:"status,omitempty"`

	// raw хранит исходный JSON элемента как он пришел от клиента,
	// включая неизвестные поля.
	raw json.RawMessage
}

// elementAlias повторяет Element без методов, чтобы избежать рекурсии
// в UnmarshalJSON/MarshalJSON.
type elementAlias struct {
	ID           string     `json:"id"`
	IsDeleted    bool       `json:"isDeleted"`
	Version      int64      `json:"version"`
	VersionNonce int64      `json:"versionNonce"`
	Updated      float64    `json:"updated"`
	FileID       string     `json:"fileId,omitempty"`
	Status       FileStatus `json:"status,omitempty"`
}

// UnmarshalJSON разбирает известные поля и сохраняет исходный payload
// целиком для последующего round-trip.
func (e *Element) UnmarshalJSON(data []byte) error {
	var alias elementAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return fmt.Errorf("failed to unmarshal element: %w", err)
	}
	if alias.ID == "" {
		return fmt.Errorf("element id is required")
	}

	e.ID = alias.ID
	e.IsDeleted = alias.IsDeleted
	e.Version = alias.Version
	e.VersionNonce = alias.VersionNonce
	e.Updated = alias.Updated
	e.FileID = alias.FileID
	e.Status = alias.Status

	// Копируем: data переиспользуется декодером после возврата
	e.raw = make(json.RawMessage, len(data))
	copy(e.raw, data)

	return nil
}

// MarshalJSON возвращает исходный payload, если элемент был разобран из
// JSON, иначе собирает JSON из известных полей.
func (e Element) MarshalJSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(elementAlias{
		ID:           e.ID,
		IsDeleted:    e.IsDeleted,
		Version:      e.Version,
		VersionNonce: e.VersionNonce,
		Updated:      e.Updated,
		FileID:       e.FileID,
		Status:       e.Status,
	})
}

// Raw возвращает полный payload элемента (включая неизвестные поля).
func (e *Element) Raw() []byte {
	if e.raw != nil {
		return e.raw
	}
	data, _ := e.MarshalJSON()
	return data
}

// ElementFromRaw восстанавливает Element из сохраненного payload.
func ElementFromRaw(raw []byte) (Element, error) {
	var e Element
	if err := e.UnmarshalJSON(raw); err != nil {
		return Element{}, err
	}
	return e, nil
}

// SyncElementsRequest представляет батч изменений от клиента.
type SyncElementsRequest struct {
	// Items элементы для добавления или слияния с текущим состоянием сцены.
	Items []Element `json:"items"`
}

// ElementsResponse представляет ответ сервера на запрос синхронизации.
type ElementsResponse struct {
	Items []Element `json:"items"` // Элементы, которых не хватает клиенту
	// NextSyncToken токен для следующего запроса: вернёт всё, что
	// изменилось после него.
	NextSyncToken float64 `json:"nextSyncToken"`
}
