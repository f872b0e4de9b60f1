package dto

import (
	"comercio/internal/core/entity"
	"comercio/internal/domain/catalogs/company"
)

// CreateCompanyRequest is the request body for creating a company.
type CreateCompanyRequest struct {
	Name       string            `json:"name" binding:"required"`
	TaxID      string            `json:"taxId" binding:"required"`
	Email      *string           `json:"email"`
	Phone      *string           `json:"phone"`
	Kind       company.Kind      `json:"kind" binding:"required"`
	State      company.State     `json:"state"`
	Attributes entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCompanyRequest) ToEntity() *company.Company {
	c := company.NewCompany(r.Name, r.TaxID, r.Kind)
	c.Email = r.Email
	c.Phone = r.Phone
	if r.State != "" {
		c.State = r.State
	}
	c.Attributes = r.Attributes
	return c
}

// UpdateCompanyRequest is the request body for updating a company.
type UpdateCompanyRequest struct {
	Name       string            `json:"name" binding:"required"`
	TaxID      string            `json:"taxId" binding:"required"`
	Email      *string           `json:"email"`
	Phone      *string           `json:"phone"`
	Kind       company.Kind      `json:"kind" binding:"required"`
	State      company.State     `json:"state" binding:"required"`
	Attributes entity.Attributes `json:"attributes"`
	Version    int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCompanyRequest) ApplyTo(c *company.Company) {
	c.Name = r.Name
	c.Code = r.TaxID
	c.TaxID = r.TaxID
	c.Email = r.Email
	c.Phone = r.Phone
	c.Kind = r.Kind
	c.State = r.State
	c.Attributes = r.Attributes
	c.Version = r.Version
}

// CompanyResponse is the response body for a company.
type CompanyResponse struct {
	CatalogResponse
	TaxID string        `json:"taxId"`
	Email *string       `json:"email,omitempty"`
	Phone *string       `json:"phone,omitempty"`
	Kind  company.Kind  `json:"kind"`
	State company.State `json:"state"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) *CompanyResponse {
	return &CompanyResponse{
		CatalogResponse: FromCatalog(c.Catalog),
		TaxID:           c.TaxID,
		Email:           c.Email,
		Phone:           c.Phone,
		Kind:            c.Kind,
		State:           c.State,
	}
}
