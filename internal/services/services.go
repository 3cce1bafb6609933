package services

import (
	"github.com/sjperalta/gymflow-api/internal/config"
	"github.com/sjperalta/gymflow-api/internal/jobs"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/pkg/metrics"
)

// Services holds all service instances
type Services struct {
	GymAccess      *GymAccessService
	Contract       *ContractService
	ContractQuery  *ContractQueryService
	Reconciliation *ReconciliationService
	Audit          *AuditService
	Export         *ExportService
	Job            *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, scheduler *jobs.Scheduler, observer *metrics.ReconciliationObserver, cfg *config.Config) *Services {
	window := cfg.ExpiringSoonWindow()
	accessSvc := NewGymAccessService(repos.Gym)
	auditSvc := NewAuditService(repos.Audit)
	querySvc := NewContractQueryService(repos.Contract, accessSvc, window)

	policy := ContractPolicy{MaxFreezeDays: cfg.MaxFreezeDays}

	return &Services{
		GymAccess:      accessSvc,
		Contract:       NewContractService(repos.Contract, repos.Client, repos.Plan, accessSvc, auditSvc, policy),
		ContractQuery:  querySvc,
		Reconciliation: NewReconciliationService(repos.Contract, observer, window),
		Audit:          auditSvc,
		Export:         NewExportService(querySvc),
		Job:            NewJobService(worker, scheduler),
	}
}
