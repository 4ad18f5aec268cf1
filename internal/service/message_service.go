package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/consogab/backend/internal/domain"
	"github.com/consogab/backend/internal/repository"
)

var (
	ErrMessageNotFound    = errors.New("message not found")
	ErrNotMessageOwner    = errors.New("only the message sender can perform this action")
	ErrEmptyMessage       = errors.New("message content is required")
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMissingAttachment  = errors.New("attachment_url is required for this message type")
	ErrMissingLocation    = errors.New("latitude and longitude are required for location messages")
)

// Notifier broadcasts real-time events to connected clients.
type Notifier interface {
	NotifyNewMessage(msg *domain.Message)
	NotifyEditedMessage(msg *domain.Message)
	NotifyDeletedMessage(conversationID, messageID uuid.UUID)
	NotifyConversationUpdated(conversationID uuid.UUID)
}

type MessageService struct {
	messageRepo repository.MessageRepository
	convRepo    repository.ConversationRepository
	notifier    Notifier
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		convRepo:    convRepo,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *MessageService) SetNotifier(n Notifier) {
	s.notifier = n
}

type SendMessageInput struct {
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	AttachmentURL *string  `json:"attachment_url,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

type EditMessageInput struct {
	Content string `json:"content"`
}

type MessagePageResponse struct {
	Messages []domain.Message `json:"messages"`
	Page     int              `json:"page"`
	HasMore  bool             `json:"has_more"`
}

func (s *MessageService) Send(ctx context.Context, userID, conversationID uuid.UUID, input SendMessageInput) (*domain.Message, error) {
	if err := s.checkParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if input.Type == "" {
		input.Type = domain.MessageTypeText
	}
	if err := validateSendInput(input); err != nil {
		return nil, err
	}

	var content *string
	if input.Content != "" {
		content = &input.Content
	}

	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       userID,
		Content:        content,
		Type:           input.Type,
		AttachmentURL:  input.AttachmentURL,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		CreatedAt:      time.Now(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("creating message: %w", err)
	}

	full, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(full)
	}

	return full, nil
}

// Page returns one ascending window of the conversation history. Page 0 is
// the oldest window; callers append later pages.
func (s *MessageService) Page(ctx context.Context, userID, conversationID uuid.UUID, page, size int) (*MessagePageResponse, error) {
	if err := s.checkParticipant(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 50
	}

	messages, err := s.messageRepo.ListPage(ctx, conversationID, page, size)
	if err != nil {
		return nil, err
	}

	if messages == nil {
		messages = []domain.Message{}
	}

	return &MessagePageResponse{
		Messages: messages,
		Page:     page,
		HasMore:  len(messages) == size,
	}, nil
}

func (s *MessageService) Edit(ctx context.Context, userID, messageID uuid.UUID, input EditMessageInput) (*domain.Message, error) {
	if input.Content == "" {
		return nil, ErrEmptyMessage
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil || msg.DeletedAt != nil {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return nil, ErrNotMessageOwner
	}

	msg.Content = &input.Content
	if err := s.messageRepo.Update(ctx, msg); err != nil {
		return nil, fmt.Errorf("updating message: %w", err)
	}

	updated, err := s.messageRepo.GetByID(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyEditedMessage(updated)
	}

	return updated, nil
}

// Delete tombstones a message. The row keeps its position in the history.
func (s *MessageService) Delete(ctx context.Context, userID, messageID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg == nil {
		return ErrMessageNotFound
	}
	if msg.SenderID != userID {
		return ErrNotMessageOwner
	}

	if err := s.messageRepo.SoftDelete(ctx, messageID); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyDeletedMessage(msg.ConversationID, messageID)
	}

	return nil
}

func validateSendInput(input SendMessageInput) error {
	if !domain.ValidMessageType(input.Type) {
		return ErrInvalidMessageType
	}
	switch input.Type {
	case domain.MessageTypeText:
		if input.Content == "" {
			return ErrEmptyMessage
		}
	case domain.MessageTypeLocation:
		if input.Latitude == nil || input.Longitude == nil {
			return ErrMissingLocation
		}
	default:
		if input.AttachmentURL == nil {
			return ErrMissingAttachment
		}
	}
	return nil
}

func (s *MessageService) checkParticipant(ctx context.Context, userID, conversationID uuid.UUID) error {
	p, err := s.convRepo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrNotParticipant
	}
	return nil
}
