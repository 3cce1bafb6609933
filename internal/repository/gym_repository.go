package repository

import (
	"context"

	"github.com/sjperalta/gymflow-api/internal/models"
	"gorm.io/gorm"
)

// GymRepository defines read access to gyms and their collaborators
type GymRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Gym, error)
	HasAccess(ctx context.Context, gymID, userID uint) (bool, error)
}

type gymRepository struct {
	db *gorm.DB
}

// NewGymRepository creates a new gym repository
func NewGymRepository(db *gorm.DB) GymRepository {
	return &gymRepository{db: db}
}

// FindByID loads a gym together with its organization (currency owner)
func (r *gymRepository) FindByID(ctx context.Context, id uint) (*models.Gym, error) {
	var gym models.Gym
	err := r.db.WithContext(ctx).
		Joins("Organization").
		First(&gym, id).Error
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

// HasAccess returns true if the user owns the gym or is one of its active collaborators
func (r *gymRepository) HasAccess(ctx context.Context, gymID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Gym{}).
		Where("gyms.id = ? AND gyms.status = ?", gymID, models.StatusActive).
		Where("gyms.owner_id = ? OR EXISTS (SELECT 1 FROM gym_collaborators gc WHERE gc.gym_id = gyms.id AND gc.user_id = ? AND gc.status = ?)",
			userID, userID, models.StatusActive).
		Count(&count).Error
	return count > 0, err
}
