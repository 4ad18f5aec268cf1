package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Subscription lifecycle statuses as reported by the transport.
const (
	StatusConnecting = "connecting"
	StatusSubscribed = "subscribed"
	StatusError      = "error"
	StatusTimedOut   = "timed_out"
)

// Event is a realtime push delivered to the session.
type Event struct {
	Type           string
	ConversationID string
	MessageID      string
	Message        *Message
}

// Realtime event types.
const (
	EventMessageNew          = "message.new"
	EventMessageEdited       = "message.edited"
	EventMessageDeleted      = "message.deleted"
	EventConversationUpdated = "conversation.updated"
)

// Transport opens a realtime subscription for one conversation. It calls
// onStatus for lifecycle changes and onEvent for pushes, and returns a stop
// function that tears the subscription down.
type Transport interface {
	Subscribe(conversationID string, onStatus func(status string, reason string), onEvent func(Event)) (stop func(), err error)
}

// SyncChannel manages the realtime subscription for the active
// conversation. Subscribing to a new conversation tears the previous
// subscription down first, and a transport error flips the channel to
// disconnected with a human-readable reason until it recovers.
type SyncChannel struct {
	transport Transport

	mu        sync.Mutex
	convID    string
	stop      func()
	connected bool
	lastError string
	onEvent   func(Event)
}

func NewSyncChannel(transport Transport) *SyncChannel {
	return &SyncChannel{transport: transport}
}

// Subscribe switches the channel to a conversation. Passing the id the
// channel is already on resubscribes from scratch.
func (c *SyncChannel) Subscribe(conversationID string, onEvent func(Event)) error {
	c.mu.Lock()
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	c.convID = conversationID
	c.connected = false
	c.lastError = ""
	c.onEvent = onEvent
	c.mu.Unlock()

	stop, err := c.transport.Subscribe(conversationID, c.handleStatus, c.handleEvent)
	if err != nil {
		c.mu.Lock()
		c.connected = false
		c.lastError = err.Error()
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if c.convID != conversationID {
		// lost a race with a newer Subscribe or an Unsubscribe
		c.mu.Unlock()
		stop()
		return nil
	}
	c.stop = stop
	c.mu.Unlock()
	return nil
}

// Unsubscribe tears down the current subscription. Safe to call when
// nothing is subscribed.
func (c *SyncChannel) Unsubscribe() {
	c.mu.Lock()
	stop := c.stop
	c.stop = nil
	c.convID = ""
	c.connected = false
	c.lastError = ""
	c.onEvent = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// State reports whether the channel is live and, when it is not, why.
func (c *SyncChannel) State() (connected bool, lastError string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected, c.lastError
}

func (c *SyncChannel) handleStatus(status, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch status {
	case StatusSubscribed:
		c.connected = true
		c.lastError = ""
	case StatusConnecting:
		c.connected = false
	case StatusError, StatusTimedOut:
		c.connected = false
		if reason != "" {
			c.lastError = reason
		} else {
			c.lastError = status
		}
	}
}

func (c *SyncChannel) handleEvent(ev Event) {
	c.mu.Lock()
	convID, onEvent := c.convID, c.onEvent
	c.mu.Unlock()

	if onEvent == nil || ev.ConversationID != convID {
		return
	}
	onEvent(ev)
}

// WSTransport implements Transport over the server's websocket endpoint.
type WSTransport struct {
	url   string
	token string

	// DialTimeout bounds the initial connect; zero means 10s.
	DialTimeout time.Duration
}

func NewWSTransport(url, accessToken string) *WSTransport {
	return &WSTransport{url: url, token: accessToken}
}

type wsEnvelope struct {
	Type           string          `json:"type"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

func (t *WSTransport) Subscribe(conversationID string, onStatus func(string, string), onEvent func(Event)) (func(), error) {
	onStatus(StatusConnecting, "")

	dialTimeout := t.DialTimeout
	if dialTimeout == 0 {
		dialTimeout = 10 * time.Second
	}
	dialCtx, dialCancel := context.WithTimeout(context.Background(), dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, t.url+"?token="+t.token, nil)
	dialCancel()
	if err != nil {
		if dialCtx.Err() == context.DeadlineExceeded {
			onStatus(StatusTimedOut, "connection timed out")
		} else {
			onStatus(StatusError, err.Error())
		}
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	sub, err := subscribeEnvelope("conversation.subscribe", conversationID)
	if err == nil {
		err = wsjson.Write(ctx, conn, sub)
	}
	if err != nil {
		cancel()
		conn.Close(websocket.StatusInternalError, "subscribe failed")
		onStatus(StatusError, err.Error())
		return nil, err
	}
	onStatus(StatusSubscribed, "")

	go t.readLoop(ctx, conn, onStatus, onEvent)
	go t.pingLoop(ctx, conn)

	stop := func() {
		if unsub, err := subscribeEnvelope("conversation.unsubscribe", conversationID); err == nil {
			wctx, wcancel := context.WithTimeout(context.Background(), 2*time.Second)
			_ = wsjson.Write(wctx, conn, unsub)
			wcancel()
		}
		cancel()
		conn.Close(websocket.StatusNormalClosure, "")
	}
	return stop, nil
}

// subscribeEnvelope builds a client event whose conversation id travels in
// the payload, which is where the server reads it from.
func subscribeEnvelope(eventType, conversationID string) (wsEnvelope, error) {
	payload, err := json.Marshal(map[string]string{"conversation_id": conversationID})
	if err != nil {
		return wsEnvelope{}, err
	}
	return wsEnvelope{Type: eventType, Payload: payload}, nil
}

func (t *WSTransport) readLoop(ctx context.Context, conn *websocket.Conn, onStatus func(string, string), onEvent func(Event)) {
	for {
		var env wsEnvelope
		if err := wsjson.Read(ctx, conn, &env); err != nil {
			if ctx.Err() == nil {
				onStatus(StatusError, err.Error())
			}
			return
		}

		switch env.Type {
		case EventMessageNew, EventMessageEdited:
			var msg Message
			if err := json.Unmarshal(env.Payload, &msg); err != nil {
				continue
			}
			onEvent(Event{Type: env.Type, ConversationID: env.ConversationID, MessageID: msg.ID, Message: &msg})
		case EventMessageDeleted:
			var payload struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(env.Payload, &payload); err != nil {
				continue
			}
			onEvent(Event{Type: env.Type, ConversationID: env.ConversationID, MessageID: payload.ID})
		case EventConversationUpdated:
			onEvent(Event{Type: env.Type, ConversationID: env.ConversationID})
		}
	}
}

func (t *WSTransport) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wsjson.Write(ctx, conn, wsEnvelope{Type: "ping"}); err != nil {
				return
			}
		}
	}
}
