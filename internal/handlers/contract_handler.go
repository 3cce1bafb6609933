package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sjperalta/gymflow-api/internal/models"
	"github.com/sjperalta/gymflow-api/internal/repository"
	"github.com/sjperalta/gymflow-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
	queryService    *services.ContractQueryService
	exportService   *services.ExportService
}

func NewContractHandler(contractService *services.ContractService, queryService *services.ContractQueryService, exportService *services.ExportService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		queryService:    queryService,
		exportService:   exportService,
	}
}

// CreateContractRequest is the body of POST /gyms/:gym_id/contracts
type CreateContractRequest struct {
	ClientID           uint     `json:"client_id" binding:"required"`
	MembershipPlanID   uint     `json:"membership_plan_id" binding:"required"`
	StartDate          string   `json:"start_date" binding:"required"`
	CustomPrice        *float64 `json:"custom_price" binding:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage" binding:"omitempty,gte=0,lte=100"`
	PaymentFrequency   string   `json:"payment_frequency" binding:"omitempty,oneof=monthly quarterly yearly one_time"`
	Notes              *string  `json:"notes"`
}

// RenewContractRequest is the body of POST /gyms/:gym_id/contracts/:contract_id/renew
type RenewContractRequest struct {
	StartDate          *string  `json:"start_date"`
	CustomPrice        *float64 `json:"custom_price" binding:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discount_percentage" binding:"omitempty,gte=0,lte=100"`
	Notes              *string  `json:"notes"`
}

// FreezeContractRequest is the body of POST /gyms/:gym_id/contracts/:contract_id/freeze
type FreezeContractRequest struct {
	FreezeStartDate string  `json:"freeze_start_date" binding:"required"`
	FreezeEndDate   string  `json:"freeze_end_date" binding:"required"`
	Reason          *string `json:"reason"`
}

// CancelContractRequest is the body of POST /gyms/:gym_id/contracts/:contract_id/cancel
type CancelContractRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// bindContract binds a flat or {"contract": {...}} body and runs the binding tag validation
func bindContract(c *gin.Context, obj interface{}) error {
	if err := BindNestedOrFlat(c, "contract", obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}

// @Summary List Contracts
// @Description Get a paginated list of the gym's contracts, newest first
// @Tags Contracts
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param limit query int false "Alias of per_page"
// @Param offset query int false "Rows to skip, overrides page"
// @Param status query string false "active, expired, cancelled or expiring_soon"
// @Param client_id query int false "Filter by client"
// @Param start_from query string false "Start date lower bound (YYYY-MM-DD)"
// @Param start_to query string false "Start date upper bound (YYYY-MM-DD)"
// @Param end_from query string false "End date lower bound (YYYY-MM-DD)"
// @Param end_to query string false "End date upper bound (YYYY-MM-DD)"
// @Param search_term query string false "Client name or email"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	gymID, err := uintParam(c, "gym_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	query, err := contractQueryFrom(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	contracts, total, err := h.queryService.ListByGym(c.Request.Context(), gymID, actorFrom(c), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contracts": h.queryService.PresentAll(contracts),
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"offset":      query.SkipCount(),
			"total":       total,
			"total_pages": totalPages(total, query.PerPage),
		},
	})
}

// @Summary Export Contracts
// @Description Download the gym's contract listing as CSV, XLSX or PDF
// @Tags Contracts
// @Produce octet-stream
// @Param gym_id path int true "Gym ID"
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param status query string false "active, expired, cancelled or expiring_soon"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts/export [get]
func (h *ContractHandler) Export(c *gin.Context) {
	gymID, err := uintParam(c, "gym_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", services.ExportFormatCSV))
	switch format {
	case services.ExportFormatCSV, services.ExportFormatXLSX, services.ExportFormatPDF:
	default:
		badRequest(c, "Formato inválido. Use csv, xlsx o pdf")
		return
	}

	query, err := contractQueryFrom(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	data, filename, contentType, err := h.exportService.ExportContracts(c.Request.Context(), gymID, actorFrom(c), query, format)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Get Contract
// @Description Get a contract of the gym by ID
// @Tags Contracts
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	gymID, contractID, ok := contractPath(c)
	if !ok {
		return
	}

	contract, err := h.queryService.Get(c.Request.Context(), gymID, actorFrom(c), contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": h.queryService.Present(contract)})
}

// @Summary Renewal Chain
// @Description Get the contract and every contract it renewed, oldest first
// @Tags Contracts
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts/{contract_id}/chain [get]
func (h *ContractHandler) Chain(c *gin.Context) {
	gymID, contractID, ok := contractPath(c)
	if !ok {
		return
	}

	chain, err := h.queryService.RenewalChain(c.Request.Context(), gymID, actorFrom(c), contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contracts": h.queryService.PresentAll(chain)})
}

// @Summary Client Contract History
// @Description Get the contracts of a client, latest period first. Without pagination parameters the whole history is returned.
// @Tags Contracts
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param client_id path int true "Client ID"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param status query string false "active, expired, cancelled or expiring_soon"
// @Param start_from query string false "Start date lower bound (YYYY-MM-DD)"
// @Param start_to query string false "Start date upper bound (YYYY-MM-DD)"
// @Param end_from query string false "End date lower bound (YYYY-MM-DD)"
// @Param end_to query string false "End date upper bound (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /gyms/{gym_id}/clients/{client_id}/contracts [get]
func (h *ContractHandler) ClientHistory(c *gin.Context) {
	gymID, err := uintParam(c, "gym_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	clientID, err := uintParam(c, "client_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	query, err := contractQueryFrom(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if c.Query("page") == "" && c.Query("per_page") == "" && c.Query("limit") == "" {
		query.PerPage = 0
	}

	contracts, total, err := h.queryService.ListByClient(c.Request.Context(), gymID, actorFrom(c), clientID, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contracts": h.queryService.PresentAll(contracts),
		"total":     total,
	})
}

// @Summary Create Contract
// @Description Create an active contract for a client from a membership plan
// @Tags Contracts
// @Accept json
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param contract body CreateContractRequest true "Contract data (flat or wrapped in \"contract\")"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	gymID, err := uintParam(c, "gym_id")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	var req CreateContractRequest
	if err := bindContract(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "start_date debe tener formato YYYY-MM-DD")
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), gymID, actorFrom(c), services.CreateContractInput{
		ClientID:           req.ClientID,
		PlanID:             req.MembershipPlanID,
		StartDate:          startDate,
		CustomPrice:        req.CustomPrice,
		DiscountPercentage: req.DiscountPercentage,
		PaymentFrequency:   req.PaymentFrequency,
		Notes:              req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Contrato creado exitosamente",
		"contract": h.queryService.Present(contract),
	})
}

// @Summary Renew Contract
// @Description Expire the contract and create its successor on the same plan
// @Tags Contracts
// @Accept json
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param contract_id path int true "Contract ID"
// @Param contract body RenewContractRequest false "Renewal overrides"
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts/{contract_id}/renew [post]
func (h *ContractHandler) Renew(c *gin.Context) {
	gymID, contractID, ok := contractPath(c)
	if !ok {
		return
	}

	var req RenewContractRequest
	if err := bindContract(c, &req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := services.RenewContractInput{
		CustomPrice:        req.CustomPrice,
		DiscountPercentage: req.DiscountPercentage,
		Notes:              req.Notes,
	}
	if req.StartDate != nil && *req.StartDate != "" {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			badRequest(c, "start_date debe tener formato YYYY-MM-DD")
			return
		}
		input.StartDate = &startDate
	}

	contract, err := h.contractService.Renew(c.Request.Context(), gymID, actorFrom(c), contractID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Contrato renovado exitosamente",
		"contract": h.queryService.Present(contract),
	})
}

// @Summary Freeze Contract
// @Description Pause an active contract, extending its end date by the freeze span
// @Tags Contracts
// @Accept json
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param contract_id path int true "Contract ID"
// @Param freeze body FreezeContractRequest true "Freeze window"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts/{contract_id}/freeze [post]
func (h *ContractHandler) Freeze(c *gin.Context) {
	gymID, contractID, ok := contractPath(c)
	if !ok {
		return
	}

	var req FreezeContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := parseDate(req.FreezeStartDate)
	if err != nil {
		badRequest(c, "freeze_start_date debe tener formato YYYY-MM-DD")
		return
	}
	end, err := parseDate(req.FreezeEndDate)
	if err != nil {
		badRequest(c, "freeze_end_date debe tener formato YYYY-MM-DD")
		return
	}

	contract, err := h.contractService.Freeze(c.Request.Context(), gymID, actorFrom(c), contractID, services.FreezeContractInput{
		FreezeStartDate: start,
		FreezeEndDate:   end,
		Reason:          req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Contrato congelado exitosamente",
		"contract": h.queryService.Present(contract),
	})
}

// @Summary Cancel Contract
// @Description Cancel a contract immediately. Cancelled contracts cannot be modified.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param gym_id path int true "Gym ID"
// @Param contract_id path int true "Contract ID"
// @Param cancel body CancelContractRequest true "Cancellation reason"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /gyms/{gym_id}/contracts/{contract_id}/cancel [post]
func (h *ContractHandler) Cancel(c *gin.Context) {
	gymID, contractID, ok := contractPath(c)
	if !ok {
		return
	}

	var req CancelContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "El motivo de cancelación es requerido")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		badRequest(c, "El motivo de cancelación es requerido")
		return
	}

	contract, err := h.contractService.Cancel(c.Request.Context(), gymID, actorFrom(c), contractID, reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Contrato cancelado exitosamente",
		"contract": h.queryService.Present(contract),
	})
}

func contractPath(c *gin.Context) (uint, uint, bool) {
	gymID, err := uintParam(c, "gym_id")
	if err != nil {
		badRequest(c, err.Error())
		return 0, 0, false
	}
	contractID, err := uintParam(c, "contract_id")
	if err != nil {
		badRequest(c, err.Error())
		return 0, 0, false
	}
	return gymID, contractID, true
}

// contractQueryFrom reads listing filters and pagination from the query string
func contractQueryFrom(c *gin.Context) (*repository.ContractQuery, error) {
	query := &repository.ContractQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		query.PerPage = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		query.Offset = offset
	}
	if query.PerPage <= 0 || query.PerPage > 100 {
		query.PerPage = 20
	}
	query.Search = c.Query("search_term")
	query.SortBy = c.Query("sort_by")
	query.SortDir = strings.ToLower(c.Query("sort_direction"))

	switch status := c.Query("status"); status {
	case "", models.ContractStatusActive, models.ContractStatusExpired, models.ContractStatusCancelled, models.ContractStatusExpiringSoon:
		query.Status = status
	default:
		return nil, fmt.Errorf("estado inválido: %s", status)
	}

	if raw := c.Query("client_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("client_id inválido")
		}
		query.ClientID = uint(id)
	}

	for _, key := range []string{"start_from", "start_to", "end_from", "end_to"} {
		if val := c.Query(key); val != "" {
			if _, err := parseDate(val); err != nil {
				return nil, fmt.Errorf("%s debe tener formato YYYY-MM-DD", key)
			}
			query.Filters[key] = val
		}
	}

	return query, nil
}
