package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"gorm.io/gorm"
)

// maxChainLength bounds renewal chain traversal
const maxChainLength = 500

// ContractQueryService serves read-only contract listings scoped to a gym
type ContractQueryService struct {
	repo   repository.ContractRepository
	access *GymAccessService
	window time.Duration
	now    func() time.Time
}

func NewContractQueryService(repo repository.ContractRepository, access *GymAccessService, window time.Duration) *ContractQueryService {
	return &ContractQueryService{
		repo:   repo,
		access: access,
		window: window,
		now:    time.Now,
	}
}

// Present converts a contract to its response form, resolving the display status against the current time
func (s *ContractQueryService) Present(contract *models.Contract) models.ContractResponse {
	return contract.ToResponse(s.now(), s.window)
}

// PresentAll converts a list of contracts to response form
func (s *ContractQueryService) PresentAll(contracts []models.Contract) []models.ContractResponse {
	now := s.now()
	responses := make([]models.ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = contracts[i].ToResponse(now, s.window)
	}
	return responses
}

// Get returns one contract of the gym
func (s *ContractQueryService) Get(ctx context.Context, gymID uint, actor Actor, contractID uint) (*models.Contract, error) {
	if _, err := s.access.ValidateOwnership(ctx, gymID, actor); err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByIDInGym(ctx, gymID, contractID)
	if err != nil {
		return nil, lookupError(err, ResourceContract)
	}
	return contract, nil
}

// ListByGym returns a page of the gym's contracts, newest first unless another sort is requested
func (s *ContractQueryService) ListByGym(ctx context.Context, gymID uint, actor Actor, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	if _, err := s.access.ValidateOwnership(ctx, gymID, actor); err != nil {
		return nil, 0, err
	}

	query.GymID = gymID
	query.Now = s.now()
	query.ExpiringSoonWindow = s.window

	contracts, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, total, nil
}

// ListByClient returns a client's contract history, latest period first.
// A nil query returns the whole history; otherwise the same status, date and
// pagination filters as ListByGym apply.
func (s *ContractQueryService) ListByClient(ctx context.Context, gymID uint, actor Actor, clientID uint, query *repository.ContractQuery) ([]models.Contract, int64, error) {
	if query == nil {
		query = &repository.ContractQuery{ListQuery: repository.NewListQuery()}
		query.PerPage = 0
	}
	query.ClientID = clientID
	if query.SortBy == "" {
		query.SortBy = "start_date"
	}
	if query.SortDir == "" {
		query.SortDir = "desc"
	}
	return s.ListByGym(ctx, gymID, actor, query)
}

// RenewalChain follows renewal back-references from the given contract to the
// first contract of the chain. The result is ordered oldest first and ends
// with the requested contract.
func (s *ContractQueryService) RenewalChain(ctx context.Context, gymID uint, actor Actor, contractID uint) ([]models.Contract, error) {
	current, err := s.Get(ctx, gymID, actor, contractID)
	if err != nil {
		return nil, err
	}

	chain := []models.Contract{*current}
	seen := map[uint]bool{current.ID: true}
	for current.RenewedFromContractID != nil && len(chain) < maxChainLength {
		prevID := *current.RenewedFromContractID
		if seen[prevID] {
			break
		}

		prev, err := s.repo.FindByIDInGym(ctx, gymID, prevID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// weak reference, the predecessor may be gone
				break
			}
			return nil, fmt.Errorf("failed to load renewal chain: %w", err)
		}

		seen[prev.ID] = true
		chain = append(chain, *prev)
		current = prev
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
