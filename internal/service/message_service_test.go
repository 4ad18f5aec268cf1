package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consogab/backend/internal/domain"
)

type fakeMessageRepo struct {
	mu   sync.Mutex
	msgs map[uuid.UUID]*domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{msgs: map[uuid.UUID]*domain.Message{}}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	r.msgs[msg.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.msgs[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeMessageRepo) ListPage(ctx context.Context, conversationID uuid.UUID, page, size int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Update(ctx context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *msg
	now := time.Now()
	cp.EditedAt = &now
	r.msgs[msg.ID] = &cp
	return nil
}

func (r *fakeMessageRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.msgs[id]; ok {
		now := time.Now()
		m.Content = nil
		m.Type = domain.MessageTypeSystem
		m.DeletedAt = &now
	}
	return nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	news    []uuid.UUID
	edits   []uuid.UUID
	deletes []uuid.UUID
	updates []uuid.UUID
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.news = append(n.news, msg.ID)
}

func (n *recordingNotifier) NotifyEditedMessage(msg *domain.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.edits = append(n.edits, msg.ID)
}

func (n *recordingNotifier) NotifyDeletedMessage(conversationID, messageID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deletes = append(n.deletes, messageID)
}

func (n *recordingNotifier) NotifyConversationUpdated(conversationID uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, conversationID)
}

func newMessageFixture(t *testing.T) (*MessageService, *fakeMessageRepo, *fakeConvRepo, *recordingNotifier, uuid.UUID, uuid.UUID) {
	t.Helper()

	convRepo := newFakeConvRepo()
	msgRepo := newFakeMessageRepo()
	notifier := &recordingNotifier{}

	svc := NewMessageService(msgRepo, convRepo)
	svc.SetNotifier(notifier)

	customer := uuid.New()
	owner := uuid.New()
	convID, err := convRepo.GetOrCreateBusiness(context.Background(), uuid.New(), customer, owner)
	require.NoError(t, err)

	return svc, msgRepo, convRepo, notifier, customer, convID
}

func TestSendRequiresParticipant(t *testing.T) {
	svc, _, _, _, _, convID := newMessageFixture(t)

	_, err := svc.Send(context.Background(), uuid.New(), convID, SendMessageInput{Content: "hi"})
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendDefaultsToTextAndNotifies(t *testing.T) {
	svc, _, _, notifier, customer, convID := newMessageFixture(t)

	msg, err := svc.Send(context.Background(), customer, convID, SendMessageInput{Content: "bonjour"})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageTypeText, msg.Type)
	require.NotNil(t, msg.Content)
	assert.Equal(t, "bonjour", *msg.Content)

	require.Len(t, notifier.news, 1)
	assert.Equal(t, msg.ID, notifier.news[0])
}

func TestSendValidation(t *testing.T) {
	svc, _, _, _, customer, convID := newMessageFixture(t)
	ctx := context.Background()

	_, err := svc.Send(ctx, customer, convID, SendMessageInput{Type: domain.MessageTypeText})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = svc.Send(ctx, customer, convID, SendMessageInput{Type: "telepathy"})
	assert.ErrorIs(t, err, ErrInvalidMessageType)

	_, err = svc.Send(ctx, customer, convID, SendMessageInput{Type: domain.MessageTypeImage})
	assert.ErrorIs(t, err, ErrMissingAttachment)

	lat := 0.3901
	_, err = svc.Send(ctx, customer, convID, SendMessageInput{Type: domain.MessageTypeLocation, Latitude: &lat})
	assert.ErrorIs(t, err, ErrMissingLocation)

	lng := 9.4544
	msg, err := svc.Send(ctx, customer, convID, SendMessageInput{Type: domain.MessageTypeLocation, Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, domain.MessageTypeLocation, msg.Type)
}

func TestPageClampsArguments(t *testing.T) {
	svc, _, _, _, customer, convID := newMessageFixture(t)
	ctx := context.Background()

	resp, err := svc.Page(ctx, customer, convID, -3, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Page)
	assert.NotNil(t, resp.Messages)
	assert.False(t, resp.HasMore)

	resp, err = svc.Page(ctx, customer, convID, 0, 500)
	require.NoError(t, err)
	assert.False(t, resp.HasMore)
}

func TestPageRequiresParticipant(t *testing.T) {
	svc, _, _, _, _, convID := newMessageFixture(t)

	_, err := svc.Page(context.Background(), uuid.New(), convID, 0, 50)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestEditOnlyOwner(t *testing.T) {
	svc, _, _, notifier, customer, convID := newMessageFixture(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, customer, convID, SendMessageInput{Content: "v1"})
	require.NoError(t, err)

	_, err = svc.Edit(ctx, uuid.New(), msg.ID, EditMessageInput{Content: "hacked"})
	assert.ErrorIs(t, err, ErrNotMessageOwner)

	edited, err := svc.Edit(ctx, customer, msg.ID, EditMessageInput{Content: "v2"})
	require.NoError(t, err)
	require.NotNil(t, edited.Content)
	assert.Equal(t, "v2", *edited.Content)
	assert.NotNil(t, edited.EditedAt)
	assert.Len(t, notifier.edits, 1)
}

func TestEditEmptyContent(t *testing.T) {
	svc, _, _, _, customer, convID := newMessageFixture(t)

	msg, err := svc.Send(context.Background(), customer, convID, SendMessageInput{Content: "v1"})
	require.NoError(t, err)

	_, err = svc.Edit(context.Background(), customer, msg.ID, EditMessageInput{})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestDeleteTombstones(t *testing.T) {
	svc, msgRepo, _, notifier, customer, convID := newMessageFixture(t)
	ctx := context.Background()

	msg, err := svc.Send(ctx, customer, convID, SendMessageInput{Content: "oops"})
	require.NoError(t, err)

	err = svc.Delete(ctx, uuid.New(), msg.ID)
	assert.ErrorIs(t, err, ErrNotMessageOwner)

	require.NoError(t, svc.Delete(ctx, customer, msg.ID))

	stored, err := msgRepo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Content)
	assert.Equal(t, domain.MessageTypeSystem, stored.Type)
	assert.NotNil(t, stored.DeletedAt)

	require.Len(t, notifier.deletes, 1)

	// a tombstone cannot be edited
	_, err = svc.Edit(ctx, customer, msg.ID, EditMessageInput{Content: "resurrect"})
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestDeleteUnknownMessage(t *testing.T) {
	svc, _, _, _, _, _ := newMessageFixture(t)

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrMessageNotFound)
}
