package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain"
	"comercio/internal/domain/documents/returns"
	"comercio/internal/domain/documents/transaction"
	"comercio/internal/infrastructure/http/v1/dto"
)

// ReturnHandler provides the return processor endpoints.
type ReturnHandler struct {
	*BaseHandler
	service *returns.Service
}

// NewReturnHandler creates a new return handler.
func NewReturnHandler(base *BaseHandler, service *returns.Service) *ReturnHandler {
	return &ReturnHandler{
		BaseHandler: base,
		service:     service,
	}
}

// File handles POST /returns
func (h *ReturnHandler) File(c *gin.Context) {
	var req dto.FileReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}

	lineID, err := id.Parse(req.LineID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid line id format"))
		return
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = h.GetEmployeeID(c)
	}

	ret, err := h.service.File(c.Request.Context(), returns.FileParams{
		LineID:     lineID,
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		EmployeeID: employeeID,
		Comment:    req.Comment,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromReturn(ret))
}

// Get handles GET /returns/:id
func (h *ReturnHandler) Get(c *gin.Context) {
	retID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	ret, err := h.service.GetByID(c.Request.Context(), retID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReturn(ret))
}

// List handles GET /returns
func (h *ReturnHandler) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ReturnResponse, len(result.Items))
	for i, ret := range result.Items {
		items[i] = dto.FromReturn(ret)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Process handles POST /returns/:id/process
func (h *ReturnHandler) Process(c *gin.Context) {
	h.transition(c, h.service.Process)
}

// Reject handles POST /returns/:id/reject
func (h *ReturnHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.Reject)
}

// Cancel handles POST /returns/:id/cancel
func (h *ReturnHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

// ReturnableQuantity handles GET /returns/returnable/:lineId
func (h *ReturnHandler) ReturnableQuantity(c *gin.Context) {
	lineID, err := id.Parse(c.Param("lineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid line id format"))
		return
	}

	remaining, err := h.service.ReturnableQuantity(c.Request.Context(), lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReturnableQuantityResponse{
		LineID:    lineID.String(),
		Remaining: remaining,
	})
}

func (h *ReturnHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, retID id.ID) (*returns.Return, error),
) {
	retID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	ret, err := op(c.Request.Context(), retID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromReturn(ret))
}

// parseListFilter parses return filter from query params.
func (h *ReturnHandler) parseListFilter(c *gin.Context) (returns.ListFilter, bool) {
	filter := returns.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if v := c.Query("branchId"); v != "" {
		filter.BranchID = &v
	}
	if v := c.Query("state"); v != "" {
		state := returns.State(v)
		filter.State = &state
	}
	if v := c.Query("reason"); v != "" {
		reason := returns.Reason(v)
		filter.Reason = &reason
	}
	if v := c.Query("kind"); v != "" {
		kind := transaction.Kind(v)
		filter.Kind = &kind
	}
	if v := c.Query("transactionId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid transaction id format"))
			return filter, false
		}
		filter.TransactionID = &parsed
	}
	if v := c.Query("lineId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid line id format"))
			return filter, false
		}
		filter.LineID = &parsed
	}
	if v := c.Query("employeeId"); v != "" {
		filter.EmployeeID = &v
	}

	var ok bool
	if filter.DateFrom, ok = h.parseTimeQuery(c, "dateFrom"); !ok {
		return filter, false
	}
	if filter.DateTo, ok = h.parseTimeQuery(c, "dateTo"); !ok {
		return filter, false
	}

	return filter, true
}

func (h *ReturnHandler) parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid time format (RFC 3339 expected)").
			WithDetail("field", key))
		return nil, false
	}
	return &t, true
}
