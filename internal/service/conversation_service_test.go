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

type fakeConvRepo struct {
	mu sync.Mutex

	byBusinessPair map[string]uuid.UUID
	byDirectPair   map[string]uuid.UUID
	convs          map[uuid.UUID]*domain.Conversation
	participants   map[uuid.UUID][]domain.Participant
	directCalls    [][2]uuid.UUID
	markReadCalls  int
	leaveCalls     int
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{
		byBusinessPair: map[string]uuid.UUID{},
		byDirectPair:   map[string]uuid.UUID{},
		convs:          map[uuid.UUID]*domain.Conversation{},
		participants:   map[uuid.UUID][]domain.Participant{},
	}
}

func (r *fakeConvRepo) GetOrCreateBusiness(ctx context.Context, businessID, customerID, ownerID uuid.UUID) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := businessID.String() + ":" + customerID.String()
	if id, ok := r.byBusinessPair[key]; ok {
		return id, nil
	}
	id := uuid.New()
	bid, cid := businessID, customerID
	r.convs[id] = &domain.Conversation{
		ID:           id,
		Type:         domain.ConversationTypeBusiness,
		BusinessID:   &bid,
		CustomerID:   &cid,
		BusinessName: "Chez Mireille",
		LastActivity: time.Now(),
	}
	r.participants[id] = []domain.Participant{
		{ConversationID: id, UserID: customerID, Role: domain.RoleMember},
		{ConversationID: id, UserID: ownerID, Role: domain.RoleOwner},
	}
	r.byBusinessPair[key] = id
	return id, nil
}

func (r *fakeConvRepo) GetOrCreateDirect(ctx context.Context, user1ID, user2ID uuid.UUID) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.directCalls = append(r.directCalls, [2]uuid.UUID{user1ID, user2ID})
	key := user1ID.String() + ":" + user2ID.String()
	if id, ok := r.byDirectPair[key]; ok {
		return id, nil
	}
	id := uuid.New()
	u1, u2 := user1ID, user2ID
	r.convs[id] = &domain.Conversation{
		ID:           id,
		Type:         domain.ConversationTypeDirect,
		User1ID:      &u1,
		User2ID:      &u2,
		LastActivity: time.Now(),
	}
	r.participants[id] = []domain.Participant{
		{ConversationID: id, UserID: user1ID, Role: domain.RoleMember},
		{ConversationID: id, UserID: user2ID, Role: domain.RoleMember},
	}
	r.byDirectPair[key] = id
	return id, nil
}

func (r *fakeConvRepo) GetByID(ctx context.Context, id, viewerID uuid.UUID) (*domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.convs[id]
	if !ok {
		return nil, nil
	}
	cp := *conv
	return &cp, nil
}

func (r *fakeConvRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Conversation
	for id, conv := range r.convs {
		for _, p := range r.participants[id] {
			if p.UserID == userID {
				out = append(out, *conv)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeConvRepo) GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.participants[conversationID] {
		if p.UserID == userID {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeConvRepo) ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Participant(nil), r.participants[conversationID]...), nil
}

func (r *fakeConvRepo) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markReadCalls++
	return nil
}

func (r *fakeConvRepo) Leave(ctx context.Context, conversationID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveCalls++
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error { return nil }

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error) {
	out := map[uuid.UUID]domain.Profile{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out[id] = domain.Profile{UserID: id, DisplayName: u.DisplayName}
		}
	}
	return out, nil
}

type fakeBusinessRepo struct {
	businesses map[uuid.UUID]*domain.Business
}

func (r *fakeBusinessRepo) Create(ctx context.Context, b *domain.Business) error { return nil }

func (r *fakeBusinessRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	return r.businesses[id], nil
}

func (r *fakeBusinessRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Business, error) {
	return nil, nil
}

func (r *fakeBusinessRepo) Search(ctx context.Context, query, category, city string, limit int) ([]domain.Business, error) {
	return nil, nil
}

func (r *fakeBusinessRepo) Update(ctx context.Context, b *domain.Business) error { return nil }

func newConvFixture() (*ConversationService, *fakeConvRepo, *fakeUserRepo, *fakeBusinessRepo) {
	convRepo := newFakeConvRepo()
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	businessRepo := &fakeBusinessRepo{businesses: map[uuid.UUID]*domain.Business{}}
	return NewConversationService(convRepo, userRepo, businessRepo), convRepo, userRepo, businessRepo
}

func TestOpenBusinessConvergesOnOneConversation(t *testing.T) {
	svc, _, _, businessRepo := newConvFixture()

	owner := uuid.New()
	customer := uuid.New()
	businessID := uuid.New()
	businessRepo.businesses[businessID] = &domain.Business{ID: businessID, OwnerID: owner, Name: "Chez Mireille"}

	const n = 12
	ids := make([]uuid.UUID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := svc.OpenBusiness(context.Background(), customer, businessID)
			errs[i] = err
			if conv != nil {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
}

func TestOpenBusinessRejectsOwnBusiness(t *testing.T) {
	svc, _, _, businessRepo := newConvFixture()

	owner := uuid.New()
	businessID := uuid.New()
	businessRepo.businesses[businessID] = &domain.Business{ID: businessID, OwnerID: owner, Name: "Chez Mireille"}

	_, err := svc.OpenBusiness(context.Background(), owner, businessID)
	assert.ErrorIs(t, err, ErrCannotMessageOwnBusiness)
}

func TestOpenBusinessUnknownBusiness(t *testing.T) {
	svc, _, _, _ := newConvFixture()

	_, err := svc.OpenBusiness(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestOpenDirectCanonicalizesPair(t *testing.T) {
	svc, convRepo, userRepo, _ := newConvFixture()

	a := uuid.New()
	b := uuid.New()
	userRepo.users[a] = &domain.User{ID: a, DisplayName: "Awa"}
	userRepo.users[b] = &domain.User{ID: b, DisplayName: "Brice"}

	fromA, err := svc.OpenDirect(context.Background(), a, b)
	require.NoError(t, err)

	fromB, err := svc.OpenDirect(context.Background(), b, a)
	require.NoError(t, err)

	assert.Equal(t, fromA.ID, fromB.ID)

	require.Len(t, convRepo.directCalls, 2)
	assert.Equal(t, convRepo.directCalls[0], convRepo.directCalls[1],
		"both sides must present the same canonical pair")
}

func TestOpenDirectRejectsSelf(t *testing.T) {
	svc, _, _, _ := newConvFixture()

	id := uuid.New()
	_, err := svc.OpenDirect(context.Background(), id, id)
	assert.ErrorIs(t, err, ErrCannotMessageSelf)
}

func TestOpenDirectUnknownUser(t *testing.T) {
	svc, _, _, _ := newConvFixture()

	_, err := svc.OpenDirect(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetRejectsNonParticipant(t *testing.T) {
	svc, _, _, businessRepo := newConvFixture()

	owner := uuid.New()
	customer := uuid.New()
	businessID := uuid.New()
	businessRepo.businesses[businessID] = &domain.Business{ID: businessID, OwnerID: owner, Name: "Chez Mireille"}

	conv, err := svc.OpenBusiness(context.Background(), customer, businessID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), conv.ID)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestGetUnknownConversation(t *testing.T) {
	svc, _, _, _ := newConvFixture()

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListDedupesBusinessPairs(t *testing.T) {
	svc, convRepo, _, _ := newConvFixture()

	userID := uuid.New()
	businessID := uuid.New()
	bid := businessID

	// two legacy rows for the same (business, customer) pair
	older := uuid.New()
	newer := uuid.New()
	cid := userID
	convRepo.convs[older] = &domain.Conversation{
		ID: older, Type: domain.ConversationTypeBusiness,
		BusinessID: &bid, CustomerID: &cid, BusinessName: "Chez Mireille",
		LastActivity: time.Now().Add(-time.Hour),
	}
	convRepo.convs[newer] = &domain.Conversation{
		ID: newer, Type: domain.ConversationTypeBusiness,
		BusinessID: &bid, CustomerID: &cid, BusinessName: "Chez Mireille",
		LastActivity: time.Now(),
	}
	convRepo.participants[older] = []domain.Participant{{ConversationID: older, UserID: userID}}
	convRepo.participants[newer] = []domain.Participant{{ConversationID: newer, UserID: userID}}

	// the fake repo iterates a map, so row order is arbitrary; the most
	// recently active row must survive either way
	convs, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, newer, convs[0].ID)
}

func TestListSortsByLastActivity(t *testing.T) {
	svc, convRepo, _, _ := newConvFixture()

	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	quiet := uuid.New()
	busy := uuid.New()
	u2 := uuid.New()
	u3 := uuid.New()
	convRepo.convs[quiet] = &domain.Conversation{
		ID: quiet, Type: domain.ConversationTypeDirect,
		User1ID: &userID, User2ID: &u2, LastActivity: base,
	}
	convRepo.convs[busy] = &domain.Conversation{
		ID: busy, Type: domain.ConversationTypeDirect,
		User1ID: &userID, User2ID: &u3, LastActivity: base.Add(time.Hour),
	}
	convRepo.participants[quiet] = []domain.Participant{{ConversationID: quiet, UserID: userID}}
	convRepo.participants[busy] = []domain.Participant{{ConversationID: busy, UserID: userID}}

	convs, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, busy, convs[0].ID)
	assert.Equal(t, quiet, convs[1].ID)
}

func TestListEmptyIsNotNil(t *testing.T) {
	svc, _, _, _ := newConvFixture()

	convs, err := svc.List(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, convs)
	assert.Empty(t, convs)
}

func TestDeriveTitleBusinessAndDirect(t *testing.T) {
	bid := uuid.New()
	cid := uuid.New()
	other := uuid.New()

	biz := &domain.Conversation{
		Type:         domain.ConversationTypeBusiness,
		BusinessID:   &bid,
		BusinessName: "Chez Mireille",
	}
	deriveTitle(biz)
	assert.Equal(t, "Chez Mireille", biz.Title)

	// the business owner sees the customer's name
	ownerView := &domain.Conversation{
		Type:             domain.ConversationTypeBusiness,
		BusinessID:       &bid,
		CustomerID:       &cid,
		OtherUserID:      &other,
		OtherDisplayName: "Awa",
		BusinessName:     "Chez Mireille",
	}
	deriveTitle(ownerView)
	assert.Equal(t, "Awa", ownerView.Title)

	direct := &domain.Conversation{
		Type:             domain.ConversationTypeDirect,
		OtherDisplayName: "Brice",
	}
	deriveTitle(direct)
	assert.Equal(t, "Brice", direct.Title)
}

func TestMarkReadRequiresMembership(t *testing.T) {
	svc, convRepo, _, businessRepo := newConvFixture()

	owner := uuid.New()
	customer := uuid.New()
	businessID := uuid.New()
	businessRepo.businesses[businessID] = &domain.Business{ID: businessID, OwnerID: owner, Name: "Chez Mireille"}

	conv, err := svc.OpenBusiness(context.Background(), customer, businessID)
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), customer, conv.ID))
	assert.Equal(t, 1, convRepo.markReadCalls)

	err = svc.MarkRead(context.Background(), uuid.New(), conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
