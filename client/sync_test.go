package client

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records subscriptions and lets tests drive status changes
// and events by hand.
type fakeTransport struct {
	mu         sync.Mutex
	subscribed []string
	stopped    []string
	dialErr    error

	onStatus func(string, string)
	onEvent  func(Event)
}

func (t *fakeTransport) Subscribe(conversationID string, onStatus func(string, string), onEvent func(Event)) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dialErr != nil {
		return nil, t.dialErr
	}
	t.subscribed = append(t.subscribed, conversationID)
	t.onStatus = onStatus
	t.onEvent = onEvent
	onStatus(StatusSubscribed, "")
	return func() {
		t.mu.Lock()
		t.stopped = append(t.stopped, conversationID)
		t.mu.Unlock()
	}, nil
}

func (t *fakeTransport) emitStatus(status, reason string) {
	t.mu.Lock()
	onStatus := t.onStatus
	t.mu.Unlock()
	onStatus(status, reason)
}

func (t *fakeTransport) emit(ev Event) {
	t.mu.Lock()
	onEvent := t.onEvent
	t.mu.Unlock()
	onEvent(ev)
}

func TestSyncChannelStatusTransitions(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewSyncChannel(ft)

	require.NoError(t, ch.Subscribe("conv-1", func(Event) {}))

	connected, lastErr := ch.State()
	assert.True(t, connected)
	assert.Empty(t, lastErr)

	ft.emitStatus(StatusError, "connection lost")
	connected, lastErr = ch.State()
	assert.False(t, connected)
	assert.Equal(t, "connection lost", lastErr)

	ft.emitStatus(StatusConnecting, "")
	connected, lastErr = ch.State()
	assert.False(t, connected)
	assert.Equal(t, "connection lost", lastErr)

	ft.emitStatus(StatusSubscribed, "")
	connected, lastErr = ch.State()
	assert.True(t, connected)
	assert.Empty(t, lastErr)
}

func TestSyncChannelTimedOutKeepsReason(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewSyncChannel(ft)
	require.NoError(t, ch.Subscribe("conv-1", func(Event) {}))

	ft.emitStatus(StatusTimedOut, "")
	connected, lastErr := ch.State()
	assert.False(t, connected)
	assert.Equal(t, StatusTimedOut, lastErr)
}

func TestSyncChannelResubscribeTearsDownPrevious(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewSyncChannel(ft)

	require.NoError(t, ch.Subscribe("conv-1", func(Event) {}))
	require.NoError(t, ch.Subscribe("conv-2", func(Event) {}))

	assert.Equal(t, []string{"conv-1", "conv-2"}, ft.subscribed)
	assert.Equal(t, []string{"conv-1"}, ft.stopped)
}

func TestSyncChannelUnsubscribeIdempotent(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewSyncChannel(ft)
	require.NoError(t, ch.Subscribe("conv-1", func(Event) {}))

	ch.Unsubscribe()
	ch.Unsubscribe()

	assert.Equal(t, []string{"conv-1"}, ft.stopped)
	connected, _ := ch.State()
	assert.False(t, connected)
}

func TestSyncChannelSubscribeError(t *testing.T) {
	ft := &fakeTransport{dialErr: errors.New("dial refused")}
	ch := NewSyncChannel(ft)

	err := ch.Subscribe("conv-1", func(Event) {})
	require.Error(t, err)

	connected, lastErr := ch.State()
	assert.False(t, connected)
	assert.Equal(t, "dial refused", lastErr)
}

func TestSyncChannelDropsEventsForOtherConversations(t *testing.T) {
	ft := &fakeTransport{}
	ch := NewSyncChannel(ft)

	var got []Event
	require.NoError(t, ch.Subscribe("conv-1", func(ev Event) { got = append(got, ev) }))

	ft.emit(Event{Type: EventMessageNew, ConversationID: "conv-2"})
	ft.emit(Event{Type: EventMessageNew, ConversationID: "conv-1"})

	require.Len(t, got, 1)
	assert.Equal(t, "conv-1", got[0].ConversationID)
}
