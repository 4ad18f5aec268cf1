package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeAudio    = "audio"
	MessageTypeVideo    = "video"
	MessageTypeDocument = "document"
	MessageTypeLocation = "location"
	MessageTypeSystem   = "system"
)

type Message struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Content        *string    `json:"content,omitempty"`
	Type           string     `json:"type"`
	AttachmentURL  *string    `json:"attachment_url,omitempty"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	DeletedAt      *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	// Joined fields
	SenderDisplayName string  `json:"sender_display_name,omitempty"`
	SenderAvatarURL   *string `json:"sender_avatar_url,omitempty"`
}

// ValidMessageType reports whether t is a client-sendable message type.
// System messages are produced server-side only.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeAudio,
		MessageTypeVideo, MessageTypeDocument, MessageTypeLocation:
		return true
	}
	return false
}
