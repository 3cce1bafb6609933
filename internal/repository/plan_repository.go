package repository

import (
	"context"

	"github.com/sjperalta/gymflow-api/internal/models"
	"gorm.io/gorm"
)

// PlanRepository defines read access to the membership plan catalog
type PlanRepository interface {
	FindActivePlan(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error)
	FindByID(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error)
}

type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) FindActivePlan(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.WithContext(ctx).
		Where("id = ? AND gym_id = ? AND status = ?", planID, gymID, models.StatusActive).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// FindByID returns the plan regardless of status. Renewals use it so that a
// deactivated plan does not strand existing members.
func (r *planRepository) FindByID(ctx context.Context, planID, gymID uint) (*models.MembershipPlan, error) {
	var plan models.MembershipPlan
	err := r.db.WithContext(ctx).
		Where("id = ? AND gym_id = ?", planID, gymID).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
