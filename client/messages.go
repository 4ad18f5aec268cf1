package client

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MessageStore holds the message history of the single active conversation.
// Whatever the source of an entry, realtime push, a fetched page, or an
// optimistic send, the store ends up with one copy per id, ordered by
// creation time.
type MessageStore struct {
	mu       sync.RWMutex
	activeID string
	msgs     []Message
	ids      map[string]bool
	localSeq int
}

func NewMessageStore() *MessageStore {
	return &MessageStore{ids: map[string]bool{}}
}

// SetActive switches the store to a conversation, dropping any history
// from the previous one. Setting the same id again is a no-op.
func (s *MessageStore) SetActive(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == conversationID {
		return
	}
	s.activeID = conversationID
	s.msgs = nil
	s.ids = map[string]bool{}
}

func (s *MessageStore) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// MergePage folds a fetched history page into the store. Pages that arrive
// after the user switched conversations are discarded.
func (s *MessageStore) MergePage(conversationID string, page []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID != s.activeID {
		return
	}
	for _, m := range page {
		s.mergeLocked(m)
	}
	s.sortLocked()
}

// Append adds a single realtime message. Duplicate ids are ignored, so a
// push racing a page fetch cannot double an entry.
func (s *MessageStore) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ConversationID != s.activeID {
		return
	}
	s.mergeLocked(msg)
	s.sortLocked()
}

// AddPending inserts an optimistic local entry for an in-flight send and
// returns its local id.
func (s *MessageStore) AddPending(senderID string, input SendInput) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localSeq++
	m := Message{
		ID:             fmt.Sprintf("%s%d", localIDPrefix, s.localSeq),
		ConversationID: s.activeID,
		SenderID:       senderID,
		Content:        input.Content,
		Type:           input.Type,
		AttachmentURL:  input.AttachmentURL,
		Latitude:       input.Latitude,
		Longitude:      input.Longitude,
		CreatedAt:      time.Now(),
		Status:         StatusSending,
	}
	s.ids[m.ID] = true
	s.msgs = append(s.msgs, m)
	return m.ID
}

// ConfirmPending replaces the optimistic entry with the server record. If
// the record already arrived over realtime, the local entry is just
// removed.
func (s *MessageStore) ConfirmPending(localID string, confirmed Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(localID)
	if confirmed.ConversationID != s.activeID {
		return
	}
	confirmed.Status = StatusSent
	s.mergeLocked(confirmed)
	s.sortLocked()
}

// RollbackPending drops the optimistic entry after a failed send.
func (s *MessageStore) RollbackPending(localID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(localID)
}

// ApplyEdit updates content and edit time of a confirmed message in place.
func (s *MessageStore) ApplyEdit(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ConversationID != s.activeID || !s.ids[msg.ID] {
		return
	}
	for i := range s.msgs {
		if s.msgs[i].ID == msg.ID {
			s.msgs[i].Content = msg.Content
			s.msgs[i].EditedAt = msg.EditedAt
			return
		}
	}
}

// ApplyDelete turns a message into its tombstone form.
func (s *MessageStore) ApplyDelete(conversationID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conversationID != s.activeID {
		return
	}
	for i := range s.msgs {
		if s.msgs[i].ID == messageID {
			s.msgs[i].Content = ""
			s.msgs[i].Type = "system"
			s.msgs[i].AttachmentURL = ""
			return
		}
	}
}

// Messages returns a copy of the current ordered history.
func (s *MessageStore) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = ""
	s.msgs = nil
	s.ids = map[string]bool{}
}

func (s *MessageStore) mergeLocked(m Message) {
	if m.Status == "" {
		m.Status = StatusSent
	}
	if s.ids[m.ID] {
		for i := range s.msgs {
			if s.msgs[i].ID == m.ID {
				s.msgs[i] = m
				return
			}
		}
		return
	}
	s.ids[m.ID] = true
	s.msgs = append(s.msgs, m)
}

func (s *MessageStore) removeLocked(id string) {
	if !s.ids[id] {
		return
	}
	delete(s.ids, id)
	for i := range s.msgs {
		if s.msgs[i].ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			return
		}
	}
}

func (s *MessageStore) sortLocked() {
	sort.SliceStable(s.msgs, func(i, j int) bool {
		a, b := s.msgs[i], s.msgs[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
