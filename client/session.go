package client

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// resolveTimeout bounds profile and conversation lookups triggered by
// realtime events, which have no caller-supplied context.
const resolveTimeout = 5 * time.Second

// Session is the messaging facade for one signed-in user. It owns the
// conversation list, the active conversation's message history, the
// profile cache, and the realtime subscription, and keeps them consistent
// with each other.
type Session struct {
	userID   string
	api      API
	resolver *ProfileResolver
	convs    *ConversationStore
	messages *MessageStore
	sync     *SyncChannel
	log      zerolog.Logger
}

func NewSession(userID string, api API, transport Transport, log zerolog.Logger) *Session {
	return &Session{
		userID:   userID,
		api:      api,
		resolver: NewProfileResolver(api),
		convs:    NewConversationStore(),
		messages: NewMessageStore(),
		sync:     NewSyncChannel(transport),
		log:      log.With().Str("component", "session").Logger(),
	}
}

// Refresh reloads the conversation list from the server. This is also the
// reconciliation point for any optimistic local state, unread counters
// included.
func (s *Session) Refresh(ctx context.Context) error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	convs, err := s.api.ListConversations(ctx)
	if err != nil {
		return err
	}
	s.convs.Replace(convs)
	return nil
}

// Conversations returns the current list, newest activity first.
func (s *Session) Conversations() []Conversation {
	return s.convs.List()
}

// OpenBusinessConversation returns the user's thread with a business,
// creating it server-side on first contact. The same thread is always
// returned for the same pair; the session never invents a local stand-in
// when resolution fails.
func (s *Session) OpenBusinessConversation(ctx context.Context, businessID string) (Conversation, error) {
	if s.userID == "" {
		return Conversation{}, ErrNotAuthenticated
	}
	if conv, ok := s.convs.FindBusiness(businessID); ok {
		return conv, nil
	}
	conv, err := s.api.OpenBusinessConversation(ctx, businessID)
	if err != nil {
		return Conversation{}, fmt.Errorf("%w: %s", ErrConversationUnavailable, err)
	}
	s.convs.Merge(*conv)
	return *conv, nil
}

// OpenDirectConversation returns the one-to-one thread with another user,
// creating it on first contact. Opening from either side lands on the same
// thread.
func (s *Session) OpenDirectConversation(ctx context.Context, userID string) (Conversation, error) {
	if s.userID == "" {
		return Conversation{}, ErrNotAuthenticated
	}
	if conv, ok := s.convs.FindDirect(userID); ok {
		return conv, nil
	}
	conv, err := s.api.OpenDirectConversation(ctx, userID)
	if err != nil {
		return Conversation{}, fmt.Errorf("%w: %s", ErrConversationUnavailable, err)
	}
	s.convs.Merge(*conv)
	return *conv, nil
}

// Enter makes a conversation active: clears prior history, subscribes the
// realtime channel, loads the first page, and marks the thread read.
func (s *Session) Enter(ctx context.Context, conversationID string) error {
	if s.userID == "" {
		return ErrNotAuthenticated
	}
	s.messages.SetActive(conversationID)

	if err := s.sync.Subscribe(conversationID, s.handleRealtime); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("realtime subscribe failed")
	}
	if err := s.LoadPage(ctx, 0); err != nil {
		return err
	}
	s.MarkRead(ctx, conversationID)
	return nil
}

// LeaveActive closes the active conversation and its subscription.
func (s *Session) LeaveActive() {
	s.sync.Unsubscribe()
	s.messages.SetActive("")
}

// LoadPage fetches one history page for the active conversation and merges
// it in, enriching sender profiles from the resolver. A page that comes
// back after the user switched conversations is dropped.
func (s *Session) LoadPage(ctx context.Context, page int) error {
	convID := s.messages.ActiveID()
	if convID == "" {
		return nil
	}
	msgs, err := s.api.ListMessages(ctx, convID, page, 50)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.SenderID)
	}
	profiles := s.resolver.Resolve(ctx, ids)
	for i := range msgs {
		if p, ok := profiles[msgs[i].SenderID]; ok {
			msgs[i].SenderName = p.DisplayName
			msgs[i].SenderAvatarURL = p.AvatarURL
		}
	}

	s.messages.MergePage(convID, msgs)
	return nil
}

// Messages returns the active conversation's ordered history, optimistic
// entries included.
func (s *Session) Messages() []Message {
	return s.messages.Messages()
}

// Send performs an optimistic send: the message appears immediately with
// status "sending", then converges to the confirmed server record, or
// disappears entirely if the server rejects it.
func (s *Session) Send(ctx context.Context, input SendInput) (Message, error) {
	if s.userID == "" {
		return Message{}, ErrNotAuthenticated
	}
	convID := s.messages.ActiveID()
	if convID == "" {
		return Message{}, fmt.Errorf("%w: no active conversation", ErrSendFailed)
	}

	localID := s.messages.AddPending(s.userID, input)
	confirmed, err := s.api.SendMessage(ctx, convID, input)
	if err != nil {
		s.messages.RollbackPending(localID)
		return Message{}, fmt.Errorf("%w: %s", ErrSendFailed, err)
	}

	s.messages.ConfirmPending(localID, *confirmed)
	s.convs.ApplyMessage(*confirmed, s.userID, convID)
	return *confirmed, nil
}

// MarkRead zeroes the unread counter locally and tells the server. A
// failed server call is only logged; the next Refresh reconciles.
func (s *Session) MarkRead(ctx context.Context, conversationID string) {
	s.convs.MarkRead(conversationID)
	if err := s.api.MarkRead(ctx, conversationID); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("mark read failed")
	}
}

// Connected reports the realtime channel state for the active
// conversation.
func (s *Session) Connected() (bool, string) {
	return s.sync.State()
}

// Close tears down the session's realtime state and local caches.
func (s *Session) Close() {
	s.sync.Unsubscribe()
	s.messages.Clear()
	s.convs.Clear()
	s.resolver.Clear()
}

func (s *Session) handleRealtime(ev Event) {
	switch ev.Type {
	case EventMessageNew:
		if ev.Message == nil {
			return
		}
		msg := *ev.Message
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		if p, ok := s.resolver.Resolve(ctx, []string{msg.SenderID})[msg.SenderID]; ok {
			msg.SenderName = p.DisplayName
			msg.SenderAvatarURL = p.AvatarURL
		}
		cancel()
		s.messages.Append(msg)
		s.convs.ApplyMessage(msg, s.userID, s.messages.ActiveID())
	case EventMessageEdited:
		if ev.Message != nil {
			s.messages.ApplyEdit(*ev.Message)
		}
	case EventMessageDeleted:
		s.messages.ApplyDelete(ev.ConversationID, ev.MessageID)
	case EventConversationUpdated:
		ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
		if conv, err := s.api.GetConversation(ctx, ev.ConversationID); err == nil {
			s.convs.Merge(*conv)
		}
		cancel()
	}
}
