package model

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Основные типы документов.
const (
	TypeNotes          = "notes"
	TypeChats          = "chats"
	TypeSettings       = "settings"
	TypeSystemSettings = "system_settings"
	TypeFeedback       = "feedback"
)

const (
	VisibilityPrivate = "private"
	VisibilityShared  = "shared"
)

// DateLayout — формат строковых дат документов. Фиксированная ширина
// сохраняет лексикографический порядок.
const DateLayout = "2006-01-02 15:04:05.000000"

// FormatDate приводит время к строковому формату хранения (UTC).
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Document — серверная модель документа пользователя.
type Document struct {
	ID     string `gorm:"primaryKey;size:36"`
	UserID string `gorm:"not null;size:255;index:idx_documents_user_type,priority:1"` // ссылка на users.id

	// Type — грубая категория (папка): notes, chats, settings...
	Type string `gorm:"not null;size:255;index:idx_documents_user_type,priority:2;index:idx_documents_type"`
	Name string `gorm:"not null"`

	Visibility string `gorm:"not null;size:32;default:'private'"`

	CreatedDate string `gorm:"not null;size:32"`
	UpdatedDate string `gorm:"not null;size:32"`

	Properties datatypes.JSON `gorm:"not null"`
	Content    datatypes.JSON `gorm:"not null"`
}

func (Document) TableName() string { return "documents" }

// Metadata — метаданные документа в каноническом внешнем виде.
type Metadata struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Visibility  string          `json:"visibility"`
	CreatedDate string          `json:"created_date"`
	UpdatedDate string          `json:"updated_date"`
	Tags        []string        `json:"tags"`
	Properties  json.RawMessage `json:"properties"`
}

// DocumentView — документ целиком: метаданные и содержимое.
type DocumentView struct {
	Metadata Metadata        `json:"metadata"`
	Content  json.RawMessage `json:"content"`
}

// Meta собирает метаданные документа с переданным набором тегов.
func (d *Document) Meta(tags []string) Metadata {
	if tags == nil {
		tags = []string{}
	}
	visibility := d.Visibility
	if visibility == "" {
		visibility = VisibilityPrivate
	}
	return Metadata{
		ID:          d.ID,
		UserID:      d.UserID,
		Type:        d.Type,
		Name:        d.Name,
		Visibility:  visibility,
		CreatedDate: d.CreatedDate,
		UpdatedDate: d.UpdatedDate,
		Tags:        tags,
		Properties:  RawOrEmptyObject(d.Properties),
	}
}

// View собирает полное представление документа.
func (d *Document) View(tags []string) *DocumentView {
	content := json.RawMessage(d.Content)
	if len(content) == 0 {
		content = json.RawMessage(`{}`)
	}
	return &DocumentView{Metadata: d.Meta(tags), Content: content}
}

// ListResult — результат листинга документов одного типа.
type ListResult struct {
	FileCount  int        `json:"file_count"`
	ErrorCount int        `json:"error_count"`
	Status     string     `json:"status"`
	Message    string     `json:"message"`
	Documents  []Metadata `json:"documents"`
}

// RawOrEmptyObject возвращает JSON как есть либо "{}" для пустого значения.
func RawOrEmptyObject(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(raw)
}
