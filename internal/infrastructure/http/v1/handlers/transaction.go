package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain"
	"comercio/internal/domain/documents/transaction"
	"comercio/internal/infrastructure/http/v1/dto"
)

// TransactionHandler provides the transaction ledger endpoints.
type TransactionHandler struct {
	*BaseHandler
	service *transaction.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(base *BaseHandler, service *transaction.Service) *TransactionHandler {
	return &TransactionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Open handles POST /transactions
func (h *TransactionHandler) Open(c *gin.Context) {
	var req dto.OpenTransactionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	params := req.ToParams()
	if params.EmployeeID == "" {
		params.EmployeeID = h.GetEmployeeID(c)
	}

	doc, err := h.service.Open(c.Request.Context(), params)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromTransaction(doc))
}

// Get handles GET /transactions/:id
func (h *TransactionHandler) Get(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// List handles GET /transactions
func (h *TransactionHandler) List(c *gin.Context) {
	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.TransactionResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromTransaction(doc)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AddLine handles POST /transactions/:id/lines
func (h *TransactionHandler) AddLine(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id format"))
		return
	}

	doc, err := h.service.AddLine(c.Request.Context(), docID, req.ToParams(productID))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// RemoveLine handles DELETE /transactions/:id/lines/:lineId
func (h *TransactionHandler) RemoveLine(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	lineID, err := id.Parse(c.Param("lineId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid line id format"))
		return
	}

	doc, err := h.service.RemoveLine(c.Request.Context(), docID, lineID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// SetDiscount handles POST /transactions/:id/discount
func (h *TransactionHandler) SetDiscount(c *gin.Context) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.SetDiscountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.SetDiscount(c.Request.Context(), docID, req.Discount)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// Finalize handles POST /transactions/:id/finalize
func (h *TransactionHandler) Finalize(c *gin.Context) {
	h.transition(c, h.service.Finalize)
}

// Cancel handles POST /transactions/:id/cancel
func (h *TransactionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.Cancel)
}

// Void handles POST /transactions/:id/void
func (h *TransactionHandler) Void(c *gin.Context) {
	h.transition(c, h.service.Void)
}

func (h *TransactionHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, docID id.ID) (*transaction.Transaction, error),
) {
	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	doc, err := op(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(doc))
}

// parseListFilter parses transaction filter from query params.
func (h *TransactionHandler) parseListFilter(c *gin.Context) (transaction.ListFilter, bool) {
	filter := transaction.ListFilter{
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
	if v := c.Query("kind"); v != "" {
		kind := transaction.Kind(v)
		filter.Kind = &kind
	}
	if v := c.Query("state"); v != "" {
		state := transaction.State(v)
		filter.State = &state
	}
	if v := c.Query("customerId"); v != "" {
		filter.CustomerID = &v
	}
	if v := c.Query("supplierId"); v != "" {
		filter.SupplierID = &v
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

// parseTimeQuery parses an optional RFC 3339 time query parameter.
func (h *TransactionHandler) parseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
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
