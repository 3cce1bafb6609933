package models

import (
	"time"
)

// Contract represents a client's paid membership period at a gym
type Contract struct {
	ID                    uint       `gorm:"primaryKey" json:"id"`
	GymID                 uint       `gorm:"not null;index" json:"gym_id"`
	ClientID              uint       `gorm:"not null;index" json:"client_id"`
	MembershipPlanID      uint       `gorm:"not null;index" json:"membership_plan_id"`
	CreatedByID           uint       `gorm:"not null" json:"created_by_id"`
	UpdatedByID           *uint      `json:"updated_by_id"`
	CancelledByID         *uint      `json:"cancelled_by_id"`
	RenewedFromContractID *uint      `gorm:"index" json:"renewed_from_contract_id"`
	StartDate             time.Time  `gorm:"not null" json:"start_date"`
	EndDate               time.Time  `gorm:"not null;index" json:"end_date"`
	CancelledAt           *time.Time `json:"cancelled_at"`
	BasePrice             float64    `gorm:"type:decimal(12,2);not null" json:"base_price"`
	CustomPrice           *float64   `gorm:"type:decimal(12,2)" json:"custom_price"`
	DiscountPercentage    *float64   `gorm:"type:decimal(5,2)" json:"discount_percentage"`
	FinalAmount           float64    `gorm:"type:decimal(12,2);not null" json:"final_amount"`
	Currency              string     `gorm:"size:3;not null" json:"currency"`
	PaymentFrequency      string     `gorm:"not null;default:monthly" json:"payment_frequency"`
	Status                string     `gorm:"not null;default:active;index" json:"status"`
	Notes                 *string    `gorm:"type:text" json:"notes"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	// Freeze and cancellation history, oldest first
	Events []ContractEvent `gorm:"type:jsonb;serializer:json" json:"events"`

	// Associations
	Client         *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	MembershipPlan *MembershipPlan `gorm:"foreignKey:MembershipPlanID" json:"membership_plan,omitempty"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusActive    = "active"
	ContractStatusExpired   = "expired"
	ContractStatusCancelled = "cancelled"

	// ContractStatusExpiringSoon is a reporting bucket only. It is never stored.
	ContractStatusExpiringSoon = "expiring_soon"
)

// Payment frequency constants
const (
	PaymentFrequencyMonthly   = "monthly"
	PaymentFrequencyQuarterly = "quarterly"
	PaymentFrequencyYearly    = "yearly"
	PaymentFrequencyOnce      = "one_time"
)

// IsActive returns true if the contract currently grants access
func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// MayRenew returns true if a successor contract can be created from this one
func (c *Contract) MayRenew() bool {
	return c.Status == ContractStatusActive || c.Status == ContractStatusExpired
}

// MayFreeze returns true if the contract period can be extended by a freeze
func (c *Contract) MayFreeze() bool {
	return c.Status == ContractStatusActive
}

// MayCancel returns true if contract can be cancelled
func (c *Contract) MayCancel() bool {
	return c.Status != ContractStatusCancelled
}

// IsExpiringSoon reports whether an active contract ends within window of now.
// Reconciliation reporting and listings must use this (or the equivalent
// repository scope) instead of re-deriving the bucket.
func IsExpiringSoon(status string, endDate, now time.Time, window time.Duration) bool {
	if status != ContractStatusActive {
		return false
	}
	return !endDate.Before(now) && !endDate.After(now.Add(window))
}

// DisplayStatus returns the status shown to users, including the expiring_soon bucket
func (c *Contract) DisplayStatus(now time.Time, window time.Duration) string {
	if IsExpiringSoon(c.Status, c.EndDate, now, window) {
		return ContractStatusExpiringSoon
	}
	return c.Status
}

// AppendEvent records a lifecycle event at the end of the contract history
func (c *Contract) AppendEvent(event ContractEvent) {
	c.Events = append(c.Events, event)
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID                    uint            `json:"id"`
	GymID                 uint            `json:"gym_id"`
	ClientID              uint            `json:"client_id"`
	ClientName            string          `json:"client_name,omitempty"`
	MembershipPlanID      uint            `json:"membership_plan_id"`
	MembershipPlanName    string          `json:"membership_plan_name,omitempty"`
	RenewedFromContractID *uint           `json:"renewed_from_contract_id"`
	StartDate             time.Time       `json:"start_date"`
	EndDate               time.Time       `json:"end_date"`
	CancelledAt           *time.Time      `json:"cancelled_at"`
	BasePrice             float64         `json:"base_price"`
	CustomPrice           *float64        `json:"custom_price"`
	DiscountPercentage    *float64        `json:"discount_percentage"`
	FinalAmount           float64         `json:"final_amount"`
	Currency              string          `json:"currency"`
	PaymentFrequency      string          `json:"payment_frequency"`
	Status                string          `json:"status"`
	DisplayStatus         string          `json:"display_status"`
	DaysRemaining         int             `json:"days_remaining"`
	Notes                 *string         `json:"notes"`
	Events                []ContractEvent `json:"events"`
	CreatedByID           uint            `json:"created_by_id"`
	CancelledByID         *uint           `json:"cancelled_by_id"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// ToResponse converts Contract to ContractResponse
func (c *Contract) ToResponse(now time.Time, expiringSoonWindow time.Duration) ContractResponse {
	resp := ContractResponse{
		ID:                    c.ID,
		GymID:                 c.GymID,
		ClientID:              c.ClientID,
		MembershipPlanID:      c.MembershipPlanID,
		RenewedFromContractID: c.RenewedFromContractID,
		StartDate:             c.StartDate,
		EndDate:               c.EndDate,
		CancelledAt:           c.CancelledAt,
		BasePrice:             c.BasePrice,
		CustomPrice:           c.CustomPrice,
		DiscountPercentage:    c.DiscountPercentage,
		FinalAmount:           c.FinalAmount,
		Currency:              c.Currency,
		PaymentFrequency:      c.PaymentFrequency,
		Status:                c.Status,
		DisplayStatus:         c.DisplayStatus(now, expiringSoonWindow),
		Notes:                 c.Notes,
		Events:                c.Events,
		CreatedByID:           c.CreatedByID,
		CancelledByID:         c.CancelledByID,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
	}
	if resp.Events == nil {
		resp.Events = []ContractEvent{}
	}

	if c.Client != nil {
		resp.ClientName = c.Client.FullName
	}
	if c.MembershipPlan != nil {
		resp.MembershipPlanName = c.MembershipPlan.Name
	}

	if c.IsActive() && c.EndDate.After(now) {
		resp.DaysRemaining = int(c.EndDate.Sub(now).Hours() / 24)
	}

	return resp
}
