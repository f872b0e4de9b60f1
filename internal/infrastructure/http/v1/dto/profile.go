package dto

import (
	"comercio/internal/core/entity"
	"comercio/internal/domain/catalogs/profile"
)

// CreateProfileRequest is the request body for creating a profile.
// Password is optional; profiles without one cannot sign in.
type CreateProfileRequest struct {
	Name           string               `json:"name" binding:"required"`
	DocumentType   profile.DocumentType `json:"documentType" binding:"required"`
	DocumentNumber string               `json:"documentNumber" binding:"required"`
	Email          *string              `json:"email"`
	Phone          *string              `json:"phone"`
	BusinessRoles  []string             `json:"businessRoles"`
	State          profile.State        `json:"state"`
	Password       string               `json:"password" binding:"omitempty,min=8"`
	Attributes     entity.Attributes    `json:"attributes"`
}

// ToEntity converts DTO to domain entity. Password hashing is handled
// by the handler through the profile service.
func (r *CreateProfileRequest) ToEntity() *profile.Profile {
	p := profile.NewProfile(r.DocumentType, r.DocumentNumber, r.Name)
	p.Email = r.Email
	p.Phone = r.Phone
	p.BusinessRoles = r.BusinessRoles
	if r.State != "" {
		p.State = r.State
	}
	p.Attributes = r.Attributes
	return p
}

// UpdateProfileRequest is the request body for updating a profile.
type UpdateProfileRequest struct {
	Name           string               `json:"name" binding:"required"`
	DocumentType   profile.DocumentType `json:"documentType" binding:"required"`
	DocumentNumber string               `json:"documentNumber" binding:"required"`
	Email          *string              `json:"email"`
	Phone          *string              `json:"phone"`
	BusinessRoles  []string             `json:"businessRoles"`
	State          profile.State        `json:"state" binding:"required"`
	Attributes     entity.Attributes    `json:"attributes"`
	Version        int                  `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. The password hash is
// never touched here; SetPassword has its own endpoint.
func (r *UpdateProfileRequest) ApplyTo(p *profile.Profile) {
	p.Name = r.Name
	p.DocumentType = r.DocumentType
	p.Code = r.DocumentNumber
	p.DocumentNumber = r.DocumentNumber
	p.Email = r.Email
	p.Phone = r.Phone
	p.BusinessRoles = r.BusinessRoles
	p.State = r.State
	p.Attributes = r.Attributes
	p.Version = r.Version
}

// SetPasswordRequest is the request body for setting a profile password.
type SetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

// ProfileResponse is the response body for a profile.
// The password hash is never serialized.
type ProfileResponse struct {
	CatalogResponse
	DocumentType   profile.DocumentType `json:"documentType"`
	DocumentNumber string               `json:"documentNumber"`
	Email          *string              `json:"email,omitempty"`
	Phone          *string              `json:"phone,omitempty"`
	BusinessRoles  []string             `json:"businessRoles"`
	State          profile.State        `json:"state"`
}

// FromProfile creates response DTO from domain entity.
func FromProfile(p *profile.Profile) *ProfileResponse {
	return &ProfileResponse{
		CatalogResponse: FromCatalog(p.Catalog),
		DocumentType:    p.DocumentType,
		DocumentNumber:  p.DocumentNumber,
		Email:           p.Email,
		Phone:           p.Phone,
		BusinessRoles:   p.BusinessRoles,
		State:           p.State,
	}
}
