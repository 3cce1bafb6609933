package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/statemachine"
	"gorm.io/gorm"
)

// ErrContractChanged is returned when a conditional write finds the contract
// in a different state than the one it was read in (e.g. cancelled meanwhile).
var ErrContractChanged = errors.New("contract state changed concurrently")

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByIDInGym(ctx context.Context, gymID, id uint) (*models.Contract, error)
	FindActiveByClient(ctx context.Context, clientID uint) (*models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	Renew(ctx context.Context, previous *models.Contract, next *models.Contract) error
	List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error)
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	CountExpiringSoon(ctx context.Context, now time.Time, window time.Duration) (int64, error)
	FindExpiringSoon(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.Contract, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// ContractQuery extends ListQuery with contract-specific filters
type ContractQuery struct {
	*ListQuery
	GymID    uint
	ClientID uint
	Status   string

	// Now and ExpiringSoonWindow resolve the expiring_soon status filter
	Now                time.Time
	ExpiringSoonWindow time.Duration
}

// ExpiringSoonScope selects active contracts whose end date falls inside
// [now, now+window]. It is the query-side twin of models.IsExpiringSoon.
func ExpiringSoonScope(now time.Time, window time.Duration) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("contracts.status = ? AND contracts.end_date BETWEEN ? AND ?",
			models.ContractStatusActive, now, now.Add(window))
	}
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

// FindByIDInGym loads a contract only if it belongs to the given gym
func (r *contractRepository) FindByIDInGym(ctx context.Context, gymID, id uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Joins("Client").
		Joins("MembershipPlan").
		Where("contracts.gym_id = ?", gymID).
		First(&contract, id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) FindActiveByClient(ctx context.Context, clientID uint) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND status = ?", clientID, models.ContractStatusActive).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Omit("Client", "MembershipPlan").Create(contract).Error
}

func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Omit("Client", "MembershipPlan").Save(contract).Error
}

// Renew expires the previous contract and inserts its successor in one transaction.
// The previous contract is only expired if it has not been cancelled meanwhile.
func (r *contractRepository) Renew(ctx context.Context, previous *models.Contract, next *models.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Contract{}).
			Where("id = ? AND status <> ?", previous.ID, models.ContractStatusCancelled).
			Updates(map[string]interface{}{
				"status":        models.ContractStatusExpired,
				"updated_by_id": previous.UpdatedByID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrContractChanged
		}

		return tx.Omit("Client", "MembershipPlan").Create(next).Error
	})
}

func (r *contractRepository) List(ctx context.Context, query *ContractQuery) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Contract{})

	if query.GymID > 0 {
		db = db.Where("contracts.gym_id = ?", query.GymID)
	}
	if query.ClientID > 0 {
		db = db.Where("contracts.client_id = ?", query.ClientID)
	}

	switch query.Status {
	case "":
	case models.ContractStatusExpiringSoon:
		db = db.Scopes(ExpiringSoonScope(query.Now, query.ExpiringSoonWindow))
	default:
		db = db.Where("contracts.status = ?", query.Status)
	}

	// Apply start/end date range filters
	if query.Filters != nil {
		if val, ok := query.Filters["start_from"]; ok && val != "" {
			db = db.Where("contracts.start_date >= ?", val)
		}
		if val, ok := query.Filters["start_to"]; ok && val != "" {
			// Ensure we include the full day if only date is provided
			if len(val) == 10 { // YYYY-MM-DD
				val += " 23:59:59"
			}
			db = db.Where("contracts.start_date <= ?", val)
		}
		if val, ok := query.Filters["end_from"]; ok && val != "" {
			db = db.Where("contracts.end_date >= ?", val)
		}
		if val, ok := query.Filters["end_to"]; ok && val != "" {
			if len(val) == 10 {
				val += " 23:59:59"
			}
			db = db.Where("contracts.end_date <= ?", val)
		}
	}

	// Search by client name (JOIN only for filtering; association loaded via Preload below)
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Joins("LEFT JOIN clients ON clients.id = contracts.client_id").
			Where("clients.full_name ILIKE ? OR clients.email ILIKE ?", search, search)
	}

	// Count total using a separate session so the main query is not altered by Count()
	countDB := db.Session(&gorm.Session{})
	if err := countDB.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply sorting, newest first unless a whitelisted column is requested
	switch query.SortBy {
	case "start_date", "end_date", "final_amount", "created_at":
		order := "contracts." + query.SortBy
		if query.SortDir == "asc" {
			order += " ASC"
		} else {
			order += " DESC"
		}
		db = db.Order(order).Order("contracts.id DESC")
	default:
		db = db.Order("contracts.created_at DESC").Order("contracts.id DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset(query.SkipCount()).Limit(query.PerPage)
	}

	err := db.
		Select("contracts.*").
		Preload("Client").
		Preload("MembershipPlan").
		Find(&contracts).Error
	if err != nil {
		return nil, 0, err
	}

	return contracts, total, nil
}

// ExpireDue applies the expire transition to every contract whose end date has
// passed with a single set-based statement and returns the number of rows changed.
func (r *contractRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("status IN ? AND end_date <= ?", statemachine.Sources(statemachine.EventExpire), now).
		Update("status", models.ContractStatusExpired)
	return res.RowsAffected, res.Error
}

func (r *contractRepository) CountExpiringSoon(ctx context.Context, now time.Time, window time.Duration) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Scopes(ExpiringSoonScope(now, window)).
		Count(&count).Error
	return count, err
}

func (r *contractRepository) FindExpiringSoon(ctx context.Context, now time.Time, window time.Duration, limit int) ([]models.Contract, error) {
	var contracts []models.Contract
	db := r.db.WithContext(ctx).
		Scopes(ExpiringSoonScope(now, window)).
		Preload("Client").
		Preload("MembershipPlan").
		Order("contracts.end_date ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&contracts).Error
	return contracts, err
}

// CountByStatus returns the number of contracts per persisted status
func (r *contractRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)

	// Execute a single query to get counts by status
	rows, err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Select("status, count(*) as count").
		Group("status").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
