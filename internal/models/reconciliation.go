package models

import (
	"time"
)

// ReconciliationResult is the outcome of one expiry reconciliation run
type ReconciliationResult struct {
	RunID             string    `json:"run_id"`
	Trigger           string    `json:"trigger"`
	ExpiredCount      int64     `json:"expired_count"`
	ExpiringSoonCount int64     `json:"expiring_soon_count"`
	ExecutionTimeMs   int64     `json:"execution_time_ms"`
	RanAt             time.Time `json:"ran_at"`
}

// Reconciliation trigger constants
const (
	ReconcileTriggerScheduled = "scheduled"
	ReconcileTriggerManual    = "manual"
	ReconcileTriggerStartup   = "startup"
)

// ContractStatusStats holds contract counts by lifecycle bucket.
// Active includes the contracts that are also counted in ExpiringSoon.
type ContractStatusStats struct {
	Total             int64              `json:"total"`
	Active            int64              `json:"active"`
	ExpiringSoon      int64              `json:"expiring_soon"`
	Expired           int64              `json:"expired"`
	Cancelled         int64              `json:"cancelled"`
	ExpiringSoonDays  int                `json:"expiring_soon_days"`
	ExpiringContracts []ContractResponse `json:"expiring_contracts"`
	GeneratedAt       time.Time          `json:"generated_at"`
}
