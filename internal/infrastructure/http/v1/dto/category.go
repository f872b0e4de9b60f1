package dto

import (
	"comercio/internal/core/entity"
	"comercio/internal/domain/catalogs/category"
)

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Name        string            `json:"name" binding:"required"`
	ParentID    *string           `json:"parentId"`
	Description *string           `json:"description"`
	Active      *bool             `json:"active"`
	Attributes  entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Name, r.ParentID)
	c.Description = r.Description
	if r.Active != nil {
		c.Active = *r.Active
	}
	c.Attributes = r.Attributes
	return c
}

// UpdateCategoryRequest is the request body for updating a category.
type UpdateCategoryRequest struct {
	Name        string            `json:"name" binding:"required"`
	ParentID    *string           `json:"parentId"`
	Description *string           `json:"description"`
	Active      bool              `json:"active"`
	Attributes  entity.Attributes `json:"attributes"`
	Version     int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCategoryRequest) ApplyTo(c *category.Category) {
	c.Name = r.Name
	c.ParentID = r.ParentID
	c.Description = r.Description
	c.Active = r.Active
	c.Attributes = r.Attributes
	c.Version = r.Version
}

// CategoryResponse is the response body for a category.
type CategoryResponse struct {
	CatalogResponse
	Description *string `json:"description,omitempty"`
	Active      bool    `json:"active"`
}

// FromCategory creates response DTO from domain entity.
func FromCategory(c *category.Category) *CategoryResponse {
	return &CategoryResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		Description:     c.Description,
		Active:          c.Active,
	}
}
