package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/internal/services"
)

type AuditHandler struct {
	auditService *services.AuditService
}

func NewAuditHandler(auditService *services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// @Summary List Audit Logs
// @Description Get a paginated list of contract audit logs
// @Tags Admin
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(50)
// @Param action query string false "CREATE, RENEW, FREEZE, CANCEL or RECONCILE"
// @Param entity_id query int false "Contract ID"
// @Param gym_id query int false "Gym ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/audits [get]
func (h *AuditHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	if query.PerPage <= 0 || query.PerPage > 200 {
		query.PerPage = 50
	}
	for _, key := range []string{"action", "entity_id", "gym_id"} {
		if val := c.Query(key); val != "" {
			query.Filters[key] = val
		}
	}

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audits": logs,
		"pagination": gin.H{
			"total":       total,
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total_pages": totalPages(total, query.PerPage),
		},
	})
}
