package models

import (
	"time"
)

// MembershipPlan is a priced catalog entry contracts are created from.
// Exactly one of DurationMonths or DurationDays is expected to be set.
type MembershipPlan struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	GymID            uint      `gorm:"not null;index" json:"gym_id"`
	Name             string    `gorm:"not null" json:"name"`
	BasePrice        float64   `gorm:"type:decimal(12,2);not null" json:"base_price"`
	DurationMonths   *int      `json:"duration_months"`
	DurationDays     *int      `json:"duration_days"`
	PaymentFrequency string    `gorm:"not null;default:monthly" json:"payment_frequency"`
	Status           string    `gorm:"not null;default:active;index" json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for MembershipPlan
func (MembershipPlan) TableName() string {
	return "membership_plans"
}

// IsActive returns true if new contracts may be created from the plan
func (p *MembershipPlan) IsActive() bool {
	return p.Status == StatusActive
}
