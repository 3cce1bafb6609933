package repository

import (
	"context"

	"github.com/sjperalta/gymflow-api/internal/models"
	"gorm.io/gorm"
)

// ClientRepository defines read access to the client directory
type ClientRepository interface {
	FindActiveClient(ctx context.Context, clientID, gymID uint) (*models.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) FindActiveClient(ctx context.Context, clientID, gymID uint) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND gym_id = ? AND status = ?", clientID, gymID, models.StatusActive).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}
