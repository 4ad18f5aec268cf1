package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/consogab/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetProfiles resolves display identity for a set of user ids in a
	// single query. Ids without a matching user are omitted from the map.
	GetProfiles(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Profile, error)
}

type BusinessRepository interface {
	Create(ctx context.Context, business *domain.Business) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Business, error)
	Search(ctx context.Context, query, category, city string, limit int) ([]domain.Business, error)
	Update(ctx context.Context, business *domain.Business) error
}

type ConversationRepository interface {
	// GetOrCreateBusiness atomically finds or creates the one conversation
	// for a (business, customer) pair. Safe under concurrent callers.
	GetOrCreateBusiness(ctx context.Context, businessID, customerID, ownerID uuid.UUID) (uuid.UUID, error)
	// GetOrCreateDirect atomically finds or creates the one conversation for
	// a canonical user pair (user1 < user2).
	GetOrCreateDirect(ctx context.Context, user1ID, user2ID uuid.UUID) (uuid.UUID, error)
	GetByID(ctx context.Context, id, viewerID uuid.UUID) (*domain.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Conversation, error)
	GetParticipant(ctx context.Context, conversationID, userID uuid.UUID) (*domain.Participant, error)
	ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]domain.Participant, error)
	MarkRead(ctx context.Context, conversationID, userID uuid.UUID) error
	Leave(ctx context.Context, conversationID, userID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error)
	ListPage(ctx context.Context, conversationID uuid.UUID, page, size int) ([]domain.Message, error)
	Update(ctx context.Context, msg *domain.Message) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, businessID uuid.UUID) error
	Remove(ctx context.Context, userID, businessID uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error)
}
