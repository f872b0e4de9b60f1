package dto

import (
	"comercio/internal/core/entity"
	"comercio/internal/domain/catalogs/location"
)

// --- Departments ---

// CreateDepartmentRequest is the request body for creating a department.
type CreateDepartmentRequest struct {
	Name       string            `json:"name" binding:"required"`
	DANECode   string            `json:"daneCode" binding:"required"`
	Region     location.Region   `json:"region" binding:"required"`
	Attributes entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateDepartmentRequest) ToEntity() *location.Department {
	dep := location.NewDepartment(r.Name, r.DANECode, r.Region)
	dep.Attributes = r.Attributes
	return dep
}

// UpdateDepartmentRequest is the request body for updating a department.
type UpdateDepartmentRequest struct {
	Name       string            `json:"name" binding:"required"`
	DANECode   string            `json:"daneCode" binding:"required"`
	Region     location.Region   `json:"region" binding:"required"`
	Attributes entity.Attributes `json:"attributes"`
	Version    int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateDepartmentRequest) ApplyTo(dep *location.Department) {
	dep.Name = r.Name
	dep.Code = r.DANECode
	dep.DANECode = r.DANECode
	dep.Region = r.Region
	dep.Attributes = r.Attributes
	dep.Version = r.Version
}

// DepartmentResponse is the response body for a department.
type DepartmentResponse struct {
	CatalogResponse
	DANECode string          `json:"daneCode"`
	Region   location.Region `json:"region"`
}

// FromDepartment creates response DTO from domain entity.
func FromDepartment(dep *location.Department) *DepartmentResponse {
	return &DepartmentResponse{
		CatalogResponse: FromCatalog(dep.Catalog),
		DANECode:        dep.DANECode,
		Region:          dep.Region,
	}
}

// --- Municipalities ---

// CreateMunicipalityRequest is the request body for creating a municipality.
type CreateMunicipalityRequest struct {
	Name         string            `json:"name" binding:"required"`
	DepartmentID string            `json:"departmentId" binding:"required"`
	DANECode     string            `json:"daneCode" binding:"required"`
	Attributes   entity.Attributes `json:"attributes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMunicipalityRequest) ToEntity() *location.Municipality {
	mun := location.NewMunicipality(r.DepartmentID, r.Name, r.DANECode)
	mun.Attributes = r.Attributes
	return mun
}

// UpdateMunicipalityRequest is the request body for updating a municipality.
type UpdateMunicipalityRequest struct {
	Name         string            `json:"name" binding:"required"`
	DepartmentID string            `json:"departmentId" binding:"required"`
	DANECode     string            `json:"daneCode" binding:"required"`
	Attributes   entity.Attributes `json:"attributes"`
	Version      int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMunicipalityRequest) ApplyTo(mun *location.Municipality) {
	mun.Name = r.Name
	mun.DepartmentID = r.DepartmentID
	mun.Code = r.DANECode
	mun.DANECode = r.DANECode
	mun.Attributes = r.Attributes
	mun.Version = r.Version
}

// MunicipalityResponse is the response body for a municipality.
type MunicipalityResponse struct {
	CatalogResponse
	DepartmentID string `json:"departmentId"`
	DANECode     string `json:"daneCode"`
}

// FromMunicipality creates response DTO from domain entity.
func FromMunicipality(mun *location.Municipality) *MunicipalityResponse {
	return &MunicipalityResponse{
		CatalogResponse: FromCatalog(mun.Catalog),
		DepartmentID:    mun.DepartmentID,
		DANECode:        mun.DANECode,
	}
}
