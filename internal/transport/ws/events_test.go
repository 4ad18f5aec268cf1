package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consogab/backend/internal/domain"
)

func TestNewEventEnvelope(t *testing.T) {
	convID := uuid.New()
	content := "bonjour"
	msg := &domain.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       uuid.New(),
		Content:        &content,
		Type:           domain.MessageTypeText,
		CreatedAt:      time.Now(),
	}

	ev, err := NewEvent(EventTypeMessageNew, &convID, MessagePayload{Message: *msg})
	require.NoError(t, err)

	assert.Equal(t, EventTypeMessageNew, ev.Type)
	require.NotNil(t, ev.ConversationID)
	assert.Equal(t, convID, *ev.ConversationID)
	assert.NotZero(t, ev.Timestamp)

	var decoded domain.Message
	require.NoError(t, json.Unmarshal(ev.Payload, &decoded))
	assert.Equal(t, msg.ID, decoded.ID)
	require.NotNil(t, decoded.Content)
	assert.Equal(t, "bonjour", *decoded.Content)
}

func TestEventRoundTrip(t *testing.T) {
	convID := uuid.New()
	ev, err := NewEvent(EventTypeMessageDeleted, &convID, MessageDeletedPayload{ID: uuid.New()})
	require.NoError(t, err)

	raw, err := json.Marshal(ev)
	require.NoError(t, err)

	var back Event
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, ev.Type, back.Type)
	require.NotNil(t, back.ConversationID)
	assert.Equal(t, convID, *back.ConversationID)

	var payload MessageDeletedPayload
	require.NoError(t, json.Unmarshal(back.Payload, &payload))
	assert.NotEqual(t, uuid.Nil, payload.ID)
}

func TestClientEventParsing(t *testing.T) {
	convID := uuid.New()
	raw := []byte(`{"type":"conversation.subscribe","payload":{"conversation_id":"` + convID.String() + `"}}`)

	var ev Event
	require.NoError(t, json.Unmarshal(raw, &ev))
	assert.Equal(t, EventTypeSubscribe, ev.Type)

	var payload ConversationPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &payload))
	assert.Equal(t, convID, payload.ConversationID)
}
