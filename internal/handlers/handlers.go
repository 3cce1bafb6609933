package handlers

import (
	"github.com/sjperalta/gymflow-api/internal/services"
	"gorm.io/gorm"
)

// Handlers holds all handler instances
type Handlers struct {
	Health         *HealthHandler
	Contract       *ContractHandler
	Reconciliation *ReconciliationHandler
	Audit          *AuditHandler
	Job            *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, db *gorm.DB) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(db),
		Contract:       NewContractHandler(svcs.Contract, svcs.ContractQuery, svcs.Export),
		Reconciliation: NewReconciliationHandler(svcs.Reconciliation, svcs.Audit),
		Audit:          NewAuditHandler(svcs.Audit),
		Job:            NewJobHandler(svcs.Job),
	}
}
