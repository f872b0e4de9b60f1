package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/product"
	"comercio/internal/infrastructure/http/v1/dto"
)

// ProductHandler extends the generic catalog handler with stock
// adjustment and category association endpoints.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	config := CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) *product.Product {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(p *product.Product) any {
			return dto.FromProduct(p)
		},
	}

	return &ProductHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// AdjustStock handles POST /products/:id/adjust-stock
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdjustStockRequest
	if !h.BindJSON(c, &req) {
		return
	}

	newStock, err := h.service.AdjustStock(c.Request.Context(), productID, req.Delta, req.Override)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StockResponse{
		ProductID: productID.String(),
		Stock:     newStock,
	})
}

// Availability handles GET /products/:id/availability
func (h *ProductHandler) Availability(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	stock, minStock, err := h.service.Availability(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		ProductID: productID.String(),
		Stock:     stock,
		MinStock:  minStock,
	})
}

// LowStock handles GET /products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.FindLowStock(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListResult(c, result)
}

// AssignCategory handles POST /products/:id/categories
func (h *ProductHandler) AssignCategory(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AssignCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	categoryID, err := id.Parse(req.CategoryID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id format"))
		return
	}

	link, err := h.service.AssignCategory(c.Request.Context(), productID, categoryID, req.IsPrimary)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromCategoryLink(link))
}

// UnassignCategory handles DELETE /products/:id/categories/:categoryId
func (h *ProductHandler) UnassignCategory(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	categoryID, err := id.Parse(c.Param("categoryId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id format"))
		return
	}

	if err := h.service.UnassignCategory(c.Request.Context(), productID, categoryID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SetPrimaryCategory handles POST /products/:id/categories/:categoryId/primary
func (h *ProductHandler) SetPrimaryCategory(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	categoryID, err := id.Parse(c.Param("categoryId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id format"))
		return
	}

	if err := h.service.SetPrimaryCategory(c.Request.Context(), productID, categoryID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "primary category updated")
}

// ListCategories handles GET /products/:id/categories
func (h *ProductHandler) ListCategories(c *gin.Context) {
	productID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	links, err := h.service.ListCategories(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.CategoryLinkResponse, len(links))
	for i, link := range links {
		items[i] = dto.FromCategoryLink(link)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ListByCategory handles GET /products/by-category/:categoryId
func (h *ProductHandler) ListByCategory(c *gin.Context) {
	categoryID, err := id.Parse(c.Param("categoryId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid category id format"))
		return
	}

	filter, ok := h.ParseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListByCategory(c.Request.Context(), categoryID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.ListResult(c, result)
}
