package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Contract ContractRepository
	Gym      GymRepository
	Client   ClientRepository
	Plan     PlanRepository
	Audit    AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contract: NewContractRepository(db),
		Gym:      NewGymRepository(db),
		Client:   NewClientRepository(db),
		Plan:     NewPlanRepository(db),
		Audit:    NewAuditRepository(db),
	}
}
