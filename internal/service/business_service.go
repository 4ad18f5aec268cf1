package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/consogab/backend/internal/domain"
	"github.com/consogab/backend/internal/repository"
)

type BusinessService struct {
	businessRepo repository.BusinessRepository
}

func NewBusinessService(businessRepo repository.BusinessRepository) *BusinessService {
	return &BusinessService{businessRepo: businessRepo}
}

type CreateBusinessInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Category    string  `json:"category"`
	City        string  `json:"city"`
	Phone       *string `json:"phone,omitempty"`
	LogoURL     *string `json:"logo_url,omitempty"`
}

func (s *BusinessService) Create(ctx context.Context, ownerID uuid.UUID, input CreateBusinessInput) (*domain.Business, error) {
	now := time.Now()
	business := &domain.Business{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		City:        input.City,
		Phone:       input.Phone,
		LogoURL:     input.LogoURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.businessRepo.Create(ctx, business); err != nil {
		return nil, fmt.Errorf("creating business: %w", err)
	}
	return business, nil
}

func (s *BusinessService) Get(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	business, err := s.businessRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, ErrBusinessNotFound
	}
	return business, nil
}

func (s *BusinessService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Business, error) {
	businesses, err := s.businessRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return businesses, nil
}

func (s *BusinessService) Search(ctx context.Context, query, category, city string, limit int) ([]domain.Business, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	businesses, err := s.businessRepo.Search(ctx, query, category, city, limit)
	if err != nil {
		return nil, err
	}
	if businesses == nil {
		businesses = []domain.Business{}
	}
	return businesses, nil
}
