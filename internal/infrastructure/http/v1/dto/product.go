package dto

import (
	"time"

	"comercio/internal/core/entity"
	"comercio/internal/core/types"
	"comercio/internal/domain/catalogs/product"
)

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name" binding:"required"`
	Description *string           `json:"description"`
	Stock       types.Quantity    `json:"stock"`
	MinStock    types.Quantity    `json:"minStock"`
	UnitCost    types.Money       `json:"unitCost"`
	State       product.State     `json:"state"`
	Attributes  entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name)
	p.Description = r.Description
	p.Stock = r.Stock
	p.MinStock = r.MinStock
	p.UnitCost = r.UnitCost
	if r.State != "" {
		p.State = r.State
	}
	p.Attributes = r.Attributes
	return p
}

// UpdateProductRequest is the request body for updating a product.
// Stock is deliberately absent: on-hand quantity only changes through
// the adjust-stock endpoint or document finalize.
type UpdateProductRequest struct {
	Code        string            `json:"code"`
	Name        string            `json:"name" binding:"required"`
	Description *string           `json:"description"`
	MinStock    types.Quantity    `json:"minStock"`
	UnitCost    types.Money       `json:"unitCost"`
	State       product.State     `json:"state" binding:"required"`
	Attributes  entity.Attributes `json:"attributes"`
	Version     int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.Description = r.Description
	p.MinStock = r.MinStock
	p.UnitCost = r.UnitCost
	p.State = r.State
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// ProductResponse is the response body for a product.
type ProductResponse struct {
	CatalogResponse
	Description *string        `json:"description,omitempty"`
	Stock       types.Quantity `json:"stock"`
	MinStock    types.Quantity `json:"minStock"`
	UnitCost    types.Money    `json:"unitCost"`
	State       product.State  `json:"state"`
	LowStock    bool           `json:"lowStock"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		Description:     p.Description,
		Stock:           p.Stock,
		MinStock:        p.MinStock,
		UnitCost:        p.UnitCost,
		State:           p.State,
		LowStock:        p.IsLowStock(),
	}
}

// --- Stock ---

// AdjustStockRequest is the request body for a manual stock adjustment.
type AdjustStockRequest struct {
	Delta    types.Quantity `json:"delta" binding:"required"`
	Override bool           `json:"override"`
}

// StockResponse reports the stock level after an adjustment.
type StockResponse struct {
	ProductID string         `json:"productId"`
	Stock     types.Quantity `json:"stock"`
}

// AvailabilityResponse reports current and minimum stock.
type AvailabilityResponse struct {
	ProductID string         `json:"productId"`
	Stock     types.Quantity `json:"stock"`
	MinStock  types.Quantity `json:"minStock"`
}

// --- Category associations ---

// AssignCategoryRequest is the request body for assigning a category.
type AssignCategoryRequest struct {
	CategoryID string `json:"categoryId" binding:"required"`
	IsPrimary  bool   `json:"isPrimary"`
}

// CategoryLinkResponse is the response body for a product-category link.
type CategoryLinkResponse struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	CategoryID string    `json:"categoryId"`
	IsPrimary  bool      `json:"isPrimary"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FromCategoryLink creates response DTO from domain entity.
func FromCategoryLink(l *product.CategoryLink) *CategoryLinkResponse {
	return &CategoryLinkResponse{
		ID:         l.ID.String(),
		ProductID:  l.ProductID.String(),
		CategoryID: l.CategoryID.String(),
		IsPrimary:  l.IsPrimary,
		CreatedAt:  l.CreatedAt,
	}
}
