package dto

import (
	"comercio/internal/core/entity"
	"comercio/internal/domain/catalogs/branch"
)

// CreateBranchRequest is the request body for creating a branch.
type CreateBranchRequest struct {
	Name            string            `json:"name" binding:"required"`
	CompanyID       string            `json:"companyId" binding:"required"`
	AdministratorID *string           `json:"administratorId"`
	Address         string            `json:"address" binding:"required"`
	MunicipalityID  string            `json:"municipalityId" binding:"required"`
	Phone           *string           `json:"phone"`
	Email           *string           `json:"email"`
	Kind            branch.Kind       `json:"kind"`
	State           branch.State      `json:"state"`
	Attributes      entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateBranchRequest) ToEntity() *branch.Branch {
	b := branch.NewBranch(r.CompanyID, r.Name, r.Address, r.MunicipalityID)
	b.AdministratorID = r.AdministratorID
	b.Phone = r.Phone
	b.Email = r.Email
	if r.Kind != "" {
		b.Kind = r.Kind
	}
	if r.State != "" {
		b.State = r.State
	}
	b.Attributes = r.Attributes
	return b
}

// UpdateBranchRequest is the request body for updating a branch.
type UpdateBranchRequest struct {
	Name            string            `json:"name" binding:"required"`
	CompanyID       string            `json:"companyId" binding:"required"`
	AdministratorID *string           `json:"administratorId"`
	Address         string            `json:"address" binding:"required"`
	MunicipalityID  string            `json:"municipalityId" binding:"required"`
	Phone           *string           `json:"phone"`
	Email           *string           `json:"email"`
	Kind            branch.Kind       `json:"kind" binding:"required"`
	State           branch.State      `json:"state" binding:"required"`
	Attributes      entity.Attributes `json:"attributes"`
	Version         int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateBranchRequest) ApplyTo(b *branch.Branch) {
	b.Name = r.Name
	b.CompanyID = r.CompanyID
	b.AdministratorID = r.AdministratorID
	b.Address = r.Address
	b.MunicipalityID = r.MunicipalityID
	b.Phone = r.Phone
	b.Email = r.Email
	b.Kind = r.Kind
	b.State = r.State
	b.Attributes = r.Attributes
	b.Version = r.Version
}

// BranchResponse is the response body for a branch.
type BranchResponse struct {
	CatalogResponse
	CompanyID       string       `json:"companyId"`
	AdministratorID *string      `json:"administratorId,omitempty"`
	Address         string       `json:"address"`
	MunicipalityID  string       `json:"municipalityId"`
	Phone           *string      `json:"phone,omitempty"`
	Email           *string      `json:"email,omitempty"`
	Kind            branch.Kind  `json:"kind"`
	State           branch.State `json:"state"`
}

// FromBranch creates response DTO from domain entity.
func FromBranch(b *branch.Branch) *BranchResponse {
	return &BranchResponse{
		CatalogResponse: FromCatalog(b.Catalog),
		CompanyID:       b.CompanyID,
		AdministratorID: b.AdministratorID,
		Address:         b.Address,
		MunicipalityID:  b.MunicipalityID,
		Phone:           b.Phone,
		Email:           b.Email,
		Kind:            b.Kind,
		State:           b.State,
	}
}
