package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carrental/src/app/http/dto"
	"carrental/src/app/http/response"
	"carrental/src/app/middleware"
	"carrental/src/core/domain"
	"carrental/src/core/usecase"
)

// ContractHandler handles rental contract endpoints.
type ContractHandler struct {
	contractService *usecase.ContractService
}

func NewContractHandler(contractService *usecase.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// Create books a car for the calling client.
// POST /v1/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	var req dto.ContractCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), clientID, domain.CarID(req.CarID), req.StartDate, req.EndDate)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.Created(c, gin.H{"contract": contractView(contract)})
}

// Get returns one of the calling client's contracts.
// GET /v1/contracts/:contract_id
func (h *ContractHandler) Get(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	contractID, ok := parseContractID(c)
	if !ok {
		return
	}

	contract, err := h.contractService.Get(c.Request.Context(), clientID, contractID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{"contract": contractView(contract)})
}

// List returns a page of the calling client's contracts.
// GET /v1/contracts?page=1&per_page=20
func (h *ContractHandler) List(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	result, err := h.contractService.ListByClient(c.Request.Context(), clientID, perPage, (page-1)*perPage)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	out := make([]gin.H, 0, len(result.Contracts))
	for i := range result.Contracts {
		out = append(out, contractView(&result.Contracts[i]))
	}

	totalPages := int((result.Total + int64(perPage) - 1) / int64(perPage))
	response.OK(c, response.Paginated{
		Data:       out,
		Total:      result.Total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	})
}

// Confirm moves a pending contract to confirmed.
// POST /v1/contracts/:contract_id/confirm
func (h *ContractHandler) Confirm(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	contractID, ok := parseContractID(c)
	if !ok {
		return
	}

	contract, err := h.contractService.Confirm(c.Request.Context(), clientID, contractID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{"contract": contractView(contract)})
}

// Cancel cancels a pending or confirmed contract, recording the reason.
// POST /v1/contracts/:contract_id/cancel
func (h *ContractHandler) Cancel(c *gin.Context) {
	clientID, ok := parseClientID(c)
	if !ok {
		return
	}
	contractID, ok := parseContractID(c)
	if !ok {
		return
	}

	var req dto.ContractCancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	result, err := h.contractService.Cancel(c.Request.Context(), clientID, contractID, req.Reason)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{
		"contract": contractView(result.Contract),
		"fee_free": result.FeeFree,
	})
}

// Availability reports whether a car is free of active contracts in a period.
// GET /v1/cars/:car_id/availability?from=...&to=...
func (h *ContractHandler) Availability(c *gin.Context) {
	carID, err := strconv.ParseInt(c.Param("car_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid car id", middleware.GetRequestID(c))
		return
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		response.BadRequest(c, "invalid or missing 'from' timestamp", middleware.GetRequestID(c))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		response.BadRequest(c, "invalid or missing 'to' timestamp", middleware.GetRequestID(c))
		return
	}

	available, err := h.contractService.CarAvailable(c.Request.Context(), domain.CarID(carID), from, to)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}

	response.OK(c, gin.H{
		"car_id":    carID,
		"available": available,
	})
}

func contractView(contract *domain.Contract) gin.H {
	return gin.H{
		"contract_id": contract.ID(),
		"client_id":   contract.ClientID(),
		"car_id":      contract.CarID(),
		"start_date":  contract.Period().Start(),
		"end_date":    contract.Period().End(),
		"total_cost":  contract.TotalCost().String(),
		"status":      contract.Status(),
		"comment":     contract.Comment(),
	}
}

func parseClientID(c *gin.Context) (domain.ClientID, bool) {
	raw := c.GetHeader("X-User-Id")
	if raw == "" {
		response.BadRequest(c, "missing X-User-Id header", middleware.GetRequestID(c))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid X-User-Id header", middleware.GetRequestID(c))
		return 0, false
	}
	return domain.ClientID(id), true
}

func parseContractID(c *gin.Context) (domain.ContractID, bool) {
	id, err := strconv.ParseInt(c.Param("contract_id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid contract id", middleware.GetRequestID(c))
		return 0, false
	}
	return domain.ContractID(id), true
}
