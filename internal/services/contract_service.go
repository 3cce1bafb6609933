package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/internal/statemachine"
	"gorm.io/gorm"
)

// ContractPolicy holds the tunable lifecycle rules
type ContractPolicy struct {
	MaxFreezeDays int
}

// CreateContractInput holds the caller-supplied fields of a new contract
type CreateContractInput struct {
	ClientID           uint
	PlanID             uint
	StartDate          time.Time
	CustomPrice        *float64
	DiscountPercentage *float64
	PaymentFrequency   string
	Notes              *string
}

// RenewContractInput holds the optional overrides for a renewal
type RenewContractInput struct {
	StartDate          *time.Time
	CustomPrice        *float64
	DiscountPercentage *float64
	Notes              *string
}

// FreezeContractInput describes the freeze window
type FreezeContractInput struct {
	FreezeStartDate time.Time
	FreezeEndDate   time.Time
	Reason          *string
}

// ContractService owns the contract state machine and every mutation of a contract
type ContractService struct {
	repo       repository.ContractRepository
	clientRepo repository.ClientRepository
	planRepo   repository.PlanRepository
	access     *GymAccessService
	auditSvc   *AuditService
	policy     ContractPolicy
	now        func() time.Time
}

func NewContractService(
	repo repository.ContractRepository,
	clientRepo repository.ClientRepository,
	planRepo repository.PlanRepository,
	access *GymAccessService,
	auditSvc *AuditService,
	policy ContractPolicy,
) *ContractService {
	return &ContractService{
		repo:       repo,
		clientRepo: clientRepo,
		planRepo:   planRepo,
		access:     access,
		auditSvc:   auditSvc,
		policy:     policy,
		now:        time.Now,
	}
}

// Create opens a new active contract for a client from an active plan
func (s *ContractService) Create(ctx context.Context, gymID uint, actor Actor, in CreateContractInput) (*models.Contract, error) {
	gym, err := s.access.ValidateOwnership(ctx, gymID, actor)
	if err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindActiveClient(ctx, in.ClientID, gym.ID); err != nil {
		return nil, lookupError(err, ResourceClient)
	}

	if err := s.ensureNoActiveContract(ctx, in.ClientID, 0); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindActivePlan(ctx, in.PlanID, gym.ID)
	if err != nil {
		return nil, lookupError(err, ResourcePlan)
	}

	startDate := in.StartDate
	if startDate.IsZero() {
		startDate = s.now()
	}

	frequency := in.PaymentFrequency
	if frequency == "" {
		frequency = plan.PaymentFrequency
	}

	contract := &models.Contract{
		GymID:              gym.ID,
		ClientID:           in.ClientID,
		MembershipPlanID:   plan.ID,
		CreatedByID:        actor.UserID,
		StartDate:          startDate,
		EndDate:            ComputeEndDate(startDate, plan),
		BasePrice:          plan.BasePrice,
		CustomPrice:        in.CustomPrice,
		DiscountPercentage: in.DiscountPercentage,
		FinalAmount:        ComputeFinalAmount(plan.BasePrice, in.CustomPrice, in.DiscountPercentage),
		Currency:           gym.Organization.Currency,
		PaymentFrequency:   frequency,
		Status:             models.ContractStatusActive,
		Notes:              in.Notes,
	}

	if err := s.repo.Create(ctx, contract); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateActiveContract
		}
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	s.auditSvc.Log(ctx, actor.UserID, &gym.ID, models.AuditActionCreate, "Contract", contract.ID,
		fmt.Sprintf("Contrato creado para el cliente #%d. Plan: %s, Monto: %.2f %s, Vigencia: %s a %s",
			contract.ClientID, plan.Name, contract.FinalAmount, contract.Currency,
			contract.StartDate.Format("2006-01-02"), contract.EndDate.Format("2006-01-02")))

	return contract, nil
}

// Renew expires a contract and opens its successor on the same plan.
// Both writes happen in one transaction.
func (s *ContractService) Renew(ctx context.Context, gymID uint, actor Actor, contractID uint, in RenewContractInput) (*models.Contract, error) {
	if _, err := s.access.ValidateOwnership(ctx, gymID, actor); err != nil {
		return nil, err
	}

	previous, err := s.repo.FindByIDInGym(ctx, gymID, contractID)
	if err != nil {
		return nil, lookupError(err, ResourceContract)
	}

	if previous.Status == models.ContractStatusCancelled {
		return nil, ErrCannotRenewCancelled
	}

	// An expired contract may be renewed only if the client has not started another one since
	if err := s.ensureNoActiveContract(ctx, previous.ClientID, previous.ID); err != nil {
		return nil, err
	}

	plan, err := s.planRepo.FindByID(ctx, previous.MembershipPlanID, gymID)
	if err != nil {
		return nil, lookupError(err, ResourcePlan)
	}

	now := s.now()
	startDate := now
	if in.StartDate != nil {
		startDate = *in.StartDate
	} else if !previous.EndDate.IsZero() {
		startDate = previous.EndDate
	}

	customPrice := in.CustomPrice
	if customPrice == nil {
		customPrice = previous.CustomPrice
	}
	discount := in.DiscountPercentage
	if discount == nil {
		discount = previous.DiscountPercentage
	}
	notes := in.Notes
	if notes == nil {
		notes = previous.Notes
	}

	next := &models.Contract{
		GymID:                 previous.GymID,
		ClientID:              previous.ClientID,
		MembershipPlanID:      previous.MembershipPlanID,
		CreatedByID:           actor.UserID,
		RenewedFromContractID: &previous.ID,
		StartDate:             startDate,
		EndDate:               ComputeEndDate(startDate, plan),
		BasePrice:             plan.BasePrice,
		CustomPrice:           customPrice,
		DiscountPercentage:    discount,
		FinalAmount:           ComputeFinalAmount(plan.BasePrice, customPrice, discount),
		Currency:              previous.Currency,
		PaymentFrequency:      previous.PaymentFrequency,
		Status:                models.ContractStatusActive,
		Notes:                 notes,
	}

	fsm := statemachine.NewContractFSM(previous)
	if err := fsm.Renew(ctx); err != nil {
		return nil, ErrCannotRenewCancelled
	}
	previous.UpdatedByID = &actor.UserID

	if err := s.repo.Renew(ctx, previous, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrContractChanged):
			return nil, ErrCannotRenewCancelled
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, ErrDuplicateActiveContract
		default:
			return nil, fmt.Errorf("failed to renew contract: %w", err)
		}
	}

	s.auditSvc.Log(ctx, actor.UserID, &previous.GymID, models.AuditActionRenew, "Contract", next.ID,
		fmt.Sprintf("Contrato #%d renovado como #%d. Vigencia: %s a %s, Monto: %.2f %s",
			previous.ID, next.ID, next.StartDate.Format("2006-01-02"), next.EndDate.Format("2006-01-02"),
			next.FinalAmount, next.Currency))

	return next, nil
}

// Freeze pauses an active contract by pushing its end date forward by the freeze span
func (s *ContractService) Freeze(ctx context.Context, gymID uint, actor Actor, contractID uint, in FreezeContractInput) (*models.Contract, error) {
	if _, err := s.access.ValidateOwnership(ctx, gymID, actor); err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByIDInGym(ctx, gymID, contractID)
	if err != nil {
		return nil, lookupError(err, ResourceContract)
	}

	fsm := statemachine.NewContractFSM(contract)
	if err := fsm.Freeze(ctx); err != nil {
		return nil, ErrContractNotActive
	}

	days, err := ComputeFreezeExtension(in.FreezeStartDate, in.FreezeEndDate)
	if err != nil {
		return nil, err
	}
	if days > s.policy.MaxFreezeDays {
		return nil, ErrFreezeTooLong.WithMessage("el congelamiento de %d días excede el máximo de %d días", days, s.policy.MaxFreezeDays)
	}

	now := s.now()
	contract.EndDate = contract.EndDate.AddDate(0, 0, days)
	contract.UpdatedByID = &actor.UserID
	contract.AppendEvent(models.NewFreezeEvent(actor.UserID, now, in.FreezeStartDate, in.FreezeEndDate, days, in.Reason))

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to freeze contract: %w", err)
	}

	s.auditSvc.Log(ctx, actor.UserID, &contract.GymID, models.AuditActionFreeze, "Contract", contract.ID,
		fmt.Sprintf("Contrato congelado del %s al %s (%d días). Nueva fecha de fin: %s",
			in.FreezeStartDate.Format("2006-01-02"), in.FreezeEndDate.Format("2006-01-02"), days,
			contract.EndDate.Format("2006-01-02")))

	return contract, nil
}

// Cancel terminates a contract immediately. Cancelled is terminal.
func (s *ContractService) Cancel(ctx context.Context, gymID uint, actor Actor, contractID uint, reason string) (*models.Contract, error) {
	if _, err := s.access.ValidateOwnership(ctx, gymID, actor); err != nil {
		return nil, err
	}

	contract, err := s.repo.FindByIDInGym(ctx, gymID, contractID)
	if err != nil {
		return nil, lookupError(err, ResourceContract)
	}

	fsm := statemachine.NewContractFSM(contract)
	if err := fsm.Cancel(ctx); err != nil {
		return nil, ErrAlreadyCancelled
	}

	now := s.now()
	contract.EndDate = now
	contract.CancelledAt = &now
	contract.CancelledByID = &actor.UserID
	contract.UpdatedByID = &actor.UserID
	contract.AppendEvent(models.NewCancellationEvent(actor.UserID, now, reason))

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to cancel contract: %w", err)
	}

	s.auditSvc.Log(ctx, actor.UserID, &contract.GymID, models.AuditActionCancel, "Contract", contract.ID,
		fmt.Sprintf("Contrato cancelado. Motivo: %s", reason))

	return contract, nil
}

// ensureNoActiveContract fails if the client holds an active contract other than exceptID
func (s *ContractService) ensureNoActiveContract(ctx context.Context, clientID, exceptID uint) error {
	existing, err := s.repo.FindActiveByClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check active contracts: %w", err)
	}
	if existing != nil && existing.ID != exceptID {
		return ErrDuplicateActiveContract
	}
	return nil
}

// lookupError maps a missing record to NotFound and wraps anything else
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError(resource)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}
