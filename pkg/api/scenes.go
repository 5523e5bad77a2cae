package api

// Access определяет уровень доступа к сцене для не-владельцев.
type Access string

const (
	AccessPrivate   Access = "private"   // только владелец
	AccessProtected Access = "protected" // чтение для всех
	AccessPublic    Access = "public"    // чтение и запись для всех
)

// CreateSceneRequest представляет запрос на создание сцены
type CreateSceneRequest struct {
	Name   string `json:"name"`
	Access Access `json:"access,omitempty"` // по умолчанию private
}

// Scene представляет сцену в ответах API
type Scene struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Access      Access  `json:"access"`
	CreatedByID string  `json:"createdById"`
	IsDeleted   bool    `json:"isDeleted"`
	CreatedAt   float64 `json:"createdAt"`
	UpdatedAt   float64 `json:"updatedAt"`
}

// FileKind определяет назначение файла, привязанного к сцене.
type FileKind string

const (
	FileKindImage     FileKind = "image"
	FileKindThumbnail FileKind = "thumbnail"
	FileKindRender    FileKind = "render"
)

// CreateFileRequest представляет запрос на сохранение файла сцены.
// ID клиентский, длиной с HEX SHA-1 (40 символов) от содержимого.
type CreateFileRequest struct {
	ID       string   `json:"id"`
	MimeType string   `json:"mimeType"`
	Kind     FileKind `json:"kind,omitempty"` // по умолчанию image
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	DataURL  string   `json:"dataURL"`
}

// File представляет файл сцены в ответах API
type File struct {
	ID          string   `json:"id"`
	MimeType    string   `json:"mimeType"`
	Kind        FileKind `json:"kind"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	DataURL     string   `json:"dataURL,omitempty"`
	CreatedByID string   `json:"createdById"`
	CreatedAt   float64  `json:"createdAt"`
}
