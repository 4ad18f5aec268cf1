package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/consogab/backend/internal/domain"
	"github.com/consogab/backend/internal/repository"
)

var (
	ErrConversationNotFound     = errors.New("conversation not found")
	ErrNotParticipant           = errors.New("you are not a participant of this conversation")
	ErrCannotMessageSelf        = errors.New("cannot start a conversation with yourself")
	ErrCannotMessageOwnBusiness = errors.New("cannot open a customer conversation with your own business")
	ErrBusinessNotFound         = errors.New("business not found")
	ErrUserNotFound             = errors.New("user not found")
)

type ConversationService struct {
	convRepo     repository.ConversationRepository
	userRepo     repository.UserRepository
	businessRepo repository.BusinessRepository
	notifier     Notifier
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	businessRepo repository.BusinessRepository,
) *ConversationService {
	return &ConversationService{
		convRepo:     convRepo,
		userRepo:     userRepo,
		businessRepo: businessRepo,
	}
}

func (s *ConversationService) SetNotifier(n Notifier) {
	s.notifier = n
}

// OpenBusiness resolves the single conversation between a customer and a
// business. The find-or-create is one atomic repo operation, so concurrent
// opens (both sides, double clicks) converge on the same conversation.
func (s *ConversationService) OpenBusiness(ctx context.Context, userID, businessID uuid.UUID) (*domain.Conversation, error) {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, ErrBusinessNotFound
	}
	if business.OwnerID == userID {
		return nil, ErrCannotMessageOwnBusiness
	}

	id, err := s.convRepo.GetOrCreateBusiness(ctx, businessID, userID, business.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("resolving business conversation: %w", err)
	}

	return s.Get(ctx, userID, id)
}

// OpenDirect resolves the single conversation between two users. The pair is
// canonicalized (lower id first) so that (a, b) and (b, a) hit the same
// uniqueness key.
func (s *ConversationService) OpenDirect(ctx context.Context, userID, otherUserID uuid.UUID) (*domain.Conversation, error) {
	if userID == otherUserID {
		return nil, ErrCannotMessageSelf
	}

	other, err := s.userRepo.GetByID(ctx, otherUserID)
	if err != nil {
		return nil, err
	}
	if other == nil {
		return nil, ErrUserNotFound
	}

	u1, u2 := userID, otherUserID
	if u1.String() > u2.String() {
		u1, u2 = u2, u1
	}

	id, err := s.convRepo.GetOrCreateDirect(ctx, u1, u2)
	if err != nil {
		return nil, fmt.Errorf("resolving direct conversation: %w", err)
	}

	return s.Get(ctx, userID, id)
}

// List returns the user's conversations sorted by last activity. Duplicate
// business-origin rows should not exist (the atomic upsert prevents them),
// but reads tolerate legacy rows by keeping the most recently active one.
func (s *ConversationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error) {
	convs, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int, len(convs))
	deduped := make([]domain.Conversation, 0, len(convs))
	for i := range convs {
		conv := convs[i]
		deriveTitle(&conv)
		if key, ok := businessPairKey(&conv); ok {
			if j, dup := seen[key]; dup {
				if conv.LastActivity.After(deduped[j].LastActivity) {
					deduped[j] = conv
				}
				continue
			}
			seen[key] = len(deduped)
		}
		deduped = append(deduped, conv)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].LastActivity.After(deduped[j].LastActivity)
	})
	return deduped, nil
}

// Get fetches one conversation with its participant list. The viewer must be
// an active participant.
func (s *ConversationService) Get(ctx context.Context, userID, conversationID uuid.UUID) (*domain.Conversation, error) {
	var (
		conv         *domain.Conversation
		participants []domain.Participant
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		conv, err = s.convRepo.GetByID(gctx, conversationID, userID)
		return err
	})
	g.Go(func() error {
		var err error
		participants, err = s.convRepo.ListParticipants(gctx, conversationID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if conv == nil {
		return nil, ErrConversationNotFound
	}

	isParticipant := false
	for _, p := range participants {
		if p.UserID == userID {
			isParticipant = true
			break
		}
	}
	if !isParticipant {
		return nil, ErrNotParticipant
	}

	conv.Participants = participants
	deriveTitle(conv)
	return conv, nil
}

func (s *ConversationService) MarkRead(ctx context.Context, userID, conversationID uuid.UUID) error {
	p, err := s.convRepo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrConversationNotFound
	}
	return s.convRepo.MarkRead(ctx, conversationID, userID)
}

func (s *ConversationService) Leave(ctx context.Context, userID, conversationID uuid.UUID) error {
	p, err := s.convRepo.GetParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return ErrConversationNotFound
	}

	if err := s.convRepo.Leave(ctx, conversationID, userID); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.NotifyConversationUpdated(conversationID)
	}
	return nil
}

// businessPairKey identifies a business conversation by its
// (business, customer) pair for defensive read-side de-duplication.
func businessPairKey(conv *domain.Conversation) (string, bool) {
	if conv.Type != domain.ConversationTypeBusiness || conv.BusinessID == nil || conv.CustomerID == nil {
		return "", false
	}
	return conv.BusinessID.String() + ":" + conv.CustomerID.String(), true
}

// deriveTitle fills the display name: business name for business threads,
// the counterparty's display name for direct ones.
func deriveTitle(conv *domain.Conversation) {
	switch conv.Type {
	case domain.ConversationTypeBusiness:
		if conv.CustomerID != nil && conv.OtherUserID != nil {
			// Viewer is the business side; title is the customer's name.
			conv.Title = conv.OtherDisplayName
			return
		}
		conv.Title = conv.BusinessName
	case domain.ConversationTypeDirect:
		conv.Title = conv.OtherDisplayName
	}
}
