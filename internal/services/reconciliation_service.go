package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/pkg/logger"
	"github.com/sjperalta/gymflow-api/pkg/metrics"
)

// expiringContractsLimit bounds the contract list returned with status stats
const expiringContractsLimit = 100

// ReconciliationService brings contract status in line with the clock.
// Run is safe to call concurrently and repeatedly: each call re-evaluates the
// expiry predicate from scratch, so a second run right after the first expires nothing.
type ReconciliationService struct {
	repo     repository.ContractRepository
	observer *metrics.ReconciliationObserver
	window   time.Duration
	now      func() time.Time
}

func NewReconciliationService(repo repository.ContractRepository, observer *metrics.ReconciliationObserver, window time.Duration) *ReconciliationService {
	return &ReconciliationService{
		repo:     repo,
		observer: observer,
		window:   window,
		now:      time.Now,
	}
}

// Run expires every active contract whose end date has passed and counts the
// contracts entering the expiring-soon window.
func (s *ReconciliationService) Run(ctx context.Context, trigger string) (*models.ReconciliationResult, error) {
	start := time.Now()
	now := s.now()
	runID := uuid.NewString()
	log := logger.With("run_id", runID, "trigger", trigger)

	expired, err := s.repo.ExpireDue(ctx, now)
	if err != nil {
		s.observer.RecordRun(trigger, time.Since(start), 0, 0, err)
		log.Error("[Reconcile] Failed to expire contracts", "error", err)
		return nil, fmt.Errorf("failed to expire contracts: %w", err)
	}

	expiringSoon, err := s.repo.CountExpiringSoon(ctx, now, s.window)
	if err != nil {
		s.observer.RecordRun(trigger, time.Since(start), expired, 0, err)
		log.Error("[Reconcile] Failed to count expiring contracts", "expired", expired, "error", err)
		return nil, fmt.Errorf("failed to count expiring contracts: %w", err)
	}

	elapsed := time.Since(start)
	s.observer.RecordRun(trigger, elapsed, expired, expiringSoon, nil)

	result := &models.ReconciliationResult{
		RunID:             runID,
		Trigger:           trigger,
		ExpiredCount:      expired,
		ExpiringSoonCount: expiringSoon,
		ExecutionTimeMs:   elapsed.Milliseconds(),
		RanAt:             now,
	}

	log.Info("[Reconcile] Contract reconciliation completed",
		"expired", expired,
		"expiring_soon", expiringSoon,
		"execution_time_ms", result.ExecutionTimeMs)

	return result, nil
}

// Stats returns contract counts by bucket plus the contracts currently expiring soon
func (s *ReconciliationService) Stats(ctx context.Context) (*models.ContractStatusStats, error) {
	now := s.now()

	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count contracts by status: %w", err)
	}

	expiringSoon, err := s.repo.CountExpiringSoon(ctx, now, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to count expiring contracts: %w", err)
	}

	contracts, err := s.repo.FindExpiringSoon(ctx, now, s.window, expiringContractsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load expiring contracts: %w", err)
	}

	stats := &models.ContractStatusStats{
		Active:            counts[models.ContractStatusActive],
		ExpiringSoon:      expiringSoon,
		Expired:           counts[models.ContractStatusExpired],
		Cancelled:         counts[models.ContractStatusCancelled],
		ExpiringSoonDays:  int(s.window / (24 * time.Hour)),
		ExpiringContracts: make([]models.ContractResponse, 0, len(contracts)),
		GeneratedAt:       now,
	}
	for _, count := range counts {
		stats.Total += count
	}
	for i := range contracts {
		stats.ExpiringContracts = append(stats.ExpiringContracts, contracts[i].ToResponse(now, s.window))
	}

	return stats, nil
}
