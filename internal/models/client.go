package models

import (
	"time"
)

// Client is a gym member who can hold contracts
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GymID     uint      `gorm:"not null;index" json:"gym_id"`
	FullName  string    `gorm:"not null" json:"full_name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Status    string    `gorm:"not null;default:active;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}
