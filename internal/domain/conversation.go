package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation types. Business conversations are keyed by
// (business_id, customer_id); direct ones by the canonical user pair
// (user1_id < user2_id). Uniqueness is enforced by the database.
const (
	ConversationTypeDirect   = "direct"
	ConversationTypeBusiness = "business"
	ConversationTypeGroup    = "group"
)

const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type Conversation struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	BusinessID   *uuid.UUID `json:"business_id,omitempty"`
	CustomerID   *uuid.UUID `json:"customer_id,omitempty"`
	User1ID      *uuid.UUID `json:"user1_id,omitempty"`
	User2ID      *uuid.UUID `json:"user2_id,omitempty"`
	Title        string     `json:"title"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	// Per-viewer joined fields
	UnreadCount      int             `json:"unread_count"`
	LastReadAt       time.Time       `json:"last_read_at"`
	LastMessage      *MessageSummary `json:"last_message,omitempty"`
	BusinessName     string          `json:"business_name,omitempty"`
	BusinessLogoURL  *string         `json:"business_logo_url,omitempty"`
	OtherUserID      *uuid.UUID      `json:"other_user_id,omitempty"`
	OtherDisplayName string          `json:"other_display_name,omitempty"`
	OtherAvatarURL   *string         `json:"other_avatar_url,omitempty"`
	Participants     []Participant   `json:"participants,omitempty"`
}

type Participant struct {
	ConversationID uuid.UUID  `json:"conversation_id"`
	UserID         uuid.UUID  `json:"user_id"`
	Role           string     `json:"role"`
	JoinedAt       time.Time  `json:"joined_at"`
	LastReadAt     time.Time  `json:"last_read_at"`
	LeftAt         *time.Time `json:"left_at,omitempty"`
	// Joined fields
	DisplayName string  `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
}

// MessageSummary is the last-message preview attached to a listed conversation.
type MessageSummary struct {
	ID        uuid.UUID `json:"id"`
	Content   *string   `json:"content,omitempty"`
	Type      string    `json:"type"`
	SenderID  uuid.UUID `json:"sender_id"`
	CreatedAt time.Time `json:"created_at"`
}
