// Package client is the ConsoGab messaging session SDK. It keeps a local
// view of one signed-in user's conversations and messages, performs
// optimistic sends with server reconciliation, and merges realtime pushes
// with paginated history into a single ordered, de-duplicated sequence.
package client

import "time"

// Message statuses. Confirmed server records are "sent"; a locally inserted
// optimistic entry is "sending" until the server write settles.
const (
	StatusSending = "sending"
	StatusSent    = "sent"
)

// localIDPrefix marks optimistic message ids so they can never collide with
// server-assigned uuids.
const localIDPrefix = "local-"

// Conversation types mirror the server's.
const (
	ConversationDirect   = "direct"
	ConversationBusiness = "business"
	ConversationGroup    = "group"
)

type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type Conversation struct {
	ID               string           `json:"id"`
	Type             string           `json:"type"`
	BusinessID       string           `json:"business_id,omitempty"`
	Title            string           `json:"title"`
	LastActivity     time.Time        `json:"last_activity"`
	UnreadCount      int              `json:"unread_count"`
	LastMessage      *MessageSummary  `json:"last_message,omitempty"`
	BusinessName     string           `json:"business_name,omitempty"`
	BusinessLogoURL  string           `json:"business_logo_url,omitempty"`
	OtherUserID      string           `json:"other_user_id,omitempty"`
	OtherDisplayName string           `json:"other_display_name,omitempty"`
	OtherAvatarURL   string           `json:"other_avatar_url,omitempty"`
}

type MessageSummary struct {
	ID        string    `json:"id"`
	Content   string    `json:"content,omitempty"`
	Type      string    `json:"type"`
	SenderID  string    `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID              string     `json:"id"`
	ConversationID  string     `json:"conversation_id"`
	SenderID        string     `json:"sender_id"`
	Content         string     `json:"content,omitempty"`
	Type            string     `json:"type"`
	AttachmentURL   string     `json:"attachment_url,omitempty"`
	Latitude        *float64   `json:"latitude,omitempty"`
	Longitude       *float64   `json:"longitude,omitempty"`
	EditedAt        *time.Time `json:"edited_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	Status          string     `json:"status,omitempty"`
	SenderName      string     `json:"sender_display_name,omitempty"`
	SenderAvatarURL string     `json:"sender_avatar_url,omitempty"`
}

// IsLocal reports whether the message is an unconfirmed optimistic entry.
func (m Message) IsLocal() bool {
	return len(m.ID) > len(localIDPrefix) && m.ID[:len(localIDPrefix)] == localIDPrefix
}

type SendInput struct {
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	AttachmentURL string   `json:"attachment_url,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}
