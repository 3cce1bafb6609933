package models

import (
	"time"
)

// Organization owns one or more gyms and fixes the billing currency
type Organization struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Currency  string    `gorm:"size:3;not null;default:USD" json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Organization
func (Organization) TableName() string {
	return "organizations"
}

// Gym is the tenant every contract is scoped to
type Gym struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"not null;index" json:"organization_id"`
	OwnerID        uint      `gorm:"not null;index" json:"owner_id"`
	Name           string    `gorm:"not null" json:"name"`
	Status         string    `gorm:"not null;default:active" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// TableName specifies the table name for Gym
func (Gym) TableName() string {
	return "gyms"
}

// GymCollaborator grants a non-owner user access to a gym
type GymCollaborator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GymID     uint      `gorm:"not null;index" json:"gym_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Role      string    `gorm:"not null;default:staff" json:"role"`
	Status    string    `gorm:"not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GymCollaborator
func (GymCollaborator) TableName() string {
	return "gym_collaborators"
}

// Shared record status constants for gyms, collaborators, clients and plans
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)
