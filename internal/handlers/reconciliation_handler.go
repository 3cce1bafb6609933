package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/gymflow-api/internal/middleware"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/services"
)

type ReconciliationHandler struct {
	reconciliationService *services.ReconciliationService
	auditService          *services.AuditService
}

func NewReconciliationHandler(reconciliationService *services.ReconciliationService, auditService *services.AuditService) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
		auditService:          auditService,
	}
}

// @Summary Reconcile Contracts
// @Description Expire every active contract past its end date and count the ones expiring soon
// @Tags Admin
// @Produce json
// @Success 200 {object} models.ReconciliationResult
// @Failure 500 {object} map[string]string
// @Security BearerAuth
// @Router /admin/contracts/reconcile [post]
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	result, err := h.reconciliationService.Run(c.Request.Context(), models.ReconcileTriggerManual)
	if err != nil {
		respondError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), middleware.GetUserID(c), nil, models.AuditActionReconcile, "Contract", 0,
		fmt.Sprintf("Reconciliación manual %s: %d contratos vencidos, %d por vencer",
			result.RunID, result.ExpiredCount, result.ExpiringSoonCount))

	c.JSON(http.StatusOK, result)
}

// @Summary Contract Status Stats
// @Description Contract counts by lifecycle bucket plus the contracts expiring soon
// @Tags Admin
// @Produce json
// @Success 200 {object} models.ContractStatusStats
// @Security BearerAuth
// @Router /admin/contracts/status_stats [get]
func (h *ReconciliationHandler) StatusStats(c *gin.Context) {
	stats, err := h.reconciliationService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
