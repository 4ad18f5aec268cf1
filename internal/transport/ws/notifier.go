package ws

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/consogab/backend/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, &msg.ConversationID, MessagePayload{Message: *msg})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToConversation(msg.ConversationID, evt, nil)
}

func (n *HubNotifier) NotifyEditedMessage(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageEdited, &msg.ConversationID, MessagePayload{Message: *msg})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToConversation(msg.ConversationID, evt, nil)
}

func (n *HubNotifier) NotifyDeletedMessage(conversationID, messageID uuid.UUID) {
	evt, err := NewEvent(EventTypeMessageDeleted, &conversationID, MessageDeletedPayload{ID: messageID})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToConversation(conversationID, evt, nil)
}

// NotifyConversationUpdated signals metadata changes (participants, context).
// Clients respond with a full conversation list refresh rather than patching
// fields piecemeal.
func (n *HubNotifier) NotifyConversationUpdated(conversationID uuid.UUID) {
	evt, err := NewEvent(EventTypeConversationUpdated, &conversationID, struct{}{})
	if err != nil {
		log.Error().Err(err).Msg("ws notifier: marshal error")
		return
	}
	n.hub.BroadcastToConversation(conversationID, evt, nil)
}
