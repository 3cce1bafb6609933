package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"gorm.io/gorm"
)

// Actor identifies the authenticated user performing an operation
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// GymAccessService validates that a user may act within a gym
type GymAccessService struct {
	repo repository.GymRepository
}

func NewGymAccessService(repo repository.GymRepository) *GymAccessService {
	return &GymAccessService{repo: repo}
}

// HasAccess returns true if the user owns the gym or actively collaborates in it
func (s *GymAccessService) HasAccess(ctx context.Context, gymID, userID uint) (bool, error) {
	return s.repo.HasAccess(ctx, gymID, userID)
}

// ValidateOwnership loads the gym if the actor may see it. Gyms the actor
// has no access to are reported as not found so their existence is not leaked.
func (s *GymAccessService) ValidateOwnership(ctx context.Context, gymID uint, actor Actor) (*models.Gym, error) {
	if !actor.IsAdmin {
		ok, err := s.repo.HasAccess(ctx, gymID, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to check gym access: %w", err)
		}
		if !ok {
			return nil, NewNotFoundError(ResourceGym)
		}
	}

	gym, err := s.repo.FindByID(ctx, gymID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(ResourceGym)
		}
		return nil, fmt.Errorf("failed to load gym: %w", err)
	}
	return gym, nil
}
