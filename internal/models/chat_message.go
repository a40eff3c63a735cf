// internal/models/chat_message.go
package models

import (
	"github.com/google/uuid"
)

// ChatMessage is an append-only event on an order's conversation. System
// messages have no sender and can never be deleted; user messages are
// immutable once created except for read state and translation fields.
type ChatMessage struct {
	BaseModel
	OrderID  uuid.UUID   `json:"order_id" gorm:"type:uuid;not null;index"`
	SenderID *uuid.UUID  `json:"sender_id" gorm:"type:uuid;index"`
	Type     MessageType `json:"type" gorm:"type:varchar(10);not null;default:'text'"`
	Content  string      `json:"content" gorm:"type:text;not null"`

	OriginalLanguage   string `json:"original_language" gorm:"size:10;not null;default:'en'"`
	TranslatedContent  string `json:"translated_content,omitempty" gorm:"type:text"`
	TranslatedLanguage string `json:"translated_language,omitempty" gorm:"size:10"`

	FileID    *uuid.UUID `json:"file_id" gorm:"type:uuid"`
	ReplyToID *uuid.UUID `json:"reply_to_id" gorm:"type:uuid"`
	IsRead    bool       `json:"is_read" gorm:"default:false;index"`

	// Relationships
	Order   Order        `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Sender  *User        `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	File    *File        `json:"file,omitempty" gorm:"foreignKey:FileID"`
	ReplyTo *ChatMessage `json:"reply_to,omitempty" gorm:"foreignKey:ReplyToID"`
}

// IsSystem reports whether the message was generated by the platform.
func (m *ChatMessage) IsSystem() bool {
	return m.Type == MessageTypeSystem
}

// DisplayContent returns the text to show a viewer with the given preferred
// language: the original when languages match, the translated text when one
// exists for that language, otherwise the untranslated original.
func (m *ChatMessage) DisplayContent(viewerLanguage string) string {
	if viewerLanguage == "" || m.OriginalLanguage == viewerLanguage {
		return m.Content
	}
	if m.TranslatedContent != "" && m.TranslatedLanguage == viewerLanguage {
		return m.TranslatedContent
	}
	return m.Content
}
