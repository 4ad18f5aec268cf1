package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/consogab/backend/internal/domain"
	"github.com/consogab/backend/internal/repository"
)

// ProfileService batch-resolves display identity. A lookup failure degrades
// to an empty map so callers fall back to placeholders instead of failing
// the whole page.
type ProfileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

func (s *ProfileService) Resolve(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]domain.Profile {
	unique := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	profiles, err := s.userRepo.GetProfiles(ctx, unique)
	if err != nil {
		log.Warn().Err(err).Int("ids", len(unique)).Msg("profile batch lookup failed")
		return map[uuid.UUID]domain.Profile{}
	}
	return profiles
}
