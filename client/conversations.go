package client

import (
	"sort"
	"sync"
	"time"
)

// ConversationStore holds the session's conversation list. All mutations
// dedupe by conversation id and keep the list ordered by last activity,
// newest first.
type ConversationStore struct {
	mu    sync.RWMutex
	convs []Conversation
	index map[string]int
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{index: map[string]int{}}
}

// Replace swaps the whole list for a fresh server page. Duplicate ids
// collapse to the first occurrence; duplicate business pairs (legacy rows,
// concurrent creates that raced a refresh) collapse to the most recently
// active thread so the user never sees two threads for one business.
func (s *ConversationStore) Replace(convs []Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.convs = s.convs[:0]
	s.index = map[string]int{}
	seen := map[string]bool{}
	pairs := map[string]int{}
	for _, c := range convs {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		if key, ok := businessPairKey(c); ok {
			if i, dup := pairs[key]; dup {
				if c.LastActivity.After(s.convs[i].LastActivity) {
					s.convs[i] = c
				}
				continue
			}
			pairs[key] = len(s.convs)
		}
		s.convs = append(s.convs, c)
	}
	s.sortLocked()
}

// businessPairKey identifies the (business, counterparty) pair of a business
// thread. OtherUserID is empty when the viewer is the customer, which is
// fine: a customer has exactly one thread per business either way.
func businessPairKey(c Conversation) (string, bool) {
	if c.Type != ConversationBusiness || c.BusinessID == "" {
		return "", false
	}
	return c.BusinessID + ":" + c.OtherUserID, true
}

// Merge inserts or updates a single conversation.
func (s *ConversationStore) Merge(conv Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[conv.ID]; ok {
		s.convs[i] = conv
	} else {
		s.index[conv.ID] = len(s.convs)
		s.convs = append(s.convs, conv)
	}
	s.sortLocked()
}

// List returns a copy of the current ordering.
func (s *ConversationStore) List() []Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Conversation, len(s.convs))
	copy(out, s.convs)
	return out
}

func (s *ConversationStore) Get(id string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[id]; ok {
		return s.convs[i], true
	}
	return Conversation{}, false
}

// FindBusiness returns the existing thread for a business, if the session
// already knows about one.
func (s *ConversationStore) FindBusiness(businessID string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.convs {
		if c.Type == ConversationBusiness && c.BusinessID == businessID {
			return c, true
		}
	}
	return Conversation{}, false
}

// FindDirect returns the existing one-to-one thread with the given user.
func (s *ConversationStore) FindDirect(userID string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.convs {
		if c.Type == ConversationDirect && c.OtherUserID == userID {
			return c, true
		}
	}
	return Conversation{}, false
}

// MarkRead zeroes the unread counter locally. The server copy is
// reconciled by the next list refresh.
func (s *ConversationStore) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[id]; ok {
		s.convs[i].UnreadCount = 0
	}
}

// ApplyMessage bumps a conversation on an incoming message: updates the
// preview and last activity, and increments unread unless the message is
// the session user's own or the conversation is currently open.
func (s *ConversationStore) ApplyMessage(msg Message, ownUserID, activeConversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[msg.ConversationID]
	if !ok {
		return
	}
	c := &s.convs[i]
	c.LastMessage = &MessageSummary{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Type:      msg.Type,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if msg.CreatedAt.After(c.LastActivity) {
		c.LastActivity = msg.CreatedAt
	}
	if msg.SenderID != ownUserID && msg.ConversationID != activeConversationID {
		c.UnreadCount++
	}
	s.sortLocked()
}

// Touch bumps last activity without a message, used when only metadata
// changed server-side.
func (s *ConversationStore) Touch(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[id]; ok && at.After(s.convs[i].LastActivity) {
		s.convs[i].LastActivity = at
		s.sortLocked()
	}
}

func (s *ConversationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.convs = nil
	s.index = map[string]int{}
}

func (s *ConversationStore) sortLocked() {
	sort.SliceStable(s.convs, func(i, j int) bool {
		return s.convs[i].LastActivity.After(s.convs[j].LastActivity)
	})
	for i, c := range s.convs {
		s.index[c.ID] = i
	}
}
