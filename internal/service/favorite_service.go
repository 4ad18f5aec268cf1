package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/consogab/backend/internal/domain"
	"github.com/consogab/backend/internal/repository"
)

type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	businessRepo repository.BusinessRepository
}

func NewFavoriteService(favoriteRepo repository.FavoriteRepository, businessRepo repository.BusinessRepository) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		businessRepo: businessRepo,
	}
}

func (s *FavoriteService) Add(ctx context.Context, userID, businessID uuid.UUID) error {
	business, err := s.businessRepo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if business == nil {
		return ErrBusinessNotFound
	}
	return s.favoriteRepo.Add(ctx, userID, businessID)
}

func (s *FavoriteService) Remove(ctx context.Context, userID, businessID uuid.UUID) error {
	return s.favoriteRepo.Remove(ctx, userID, businessID)
}

func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]domain.Favorite, error) {
	favorites, err := s.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if favorites == nil {
		favorites = []domain.Favorite{}
	}
	return favorites, nil
}
