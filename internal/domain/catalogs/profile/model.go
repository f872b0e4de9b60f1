// Package profile provides the Profile catalog: people and parties the
// ledger references as employees, customers, and suppliers.
package profile

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
)

// DocumentType is the kind of identity document.
type DocumentType string

const (
	DocCitizenID   DocumentType = "cc"
	DocForeignerID DocumentType = "ce"
	DocTaxID       DocumentType = "nit"
	DocPassport    DocumentType = "passport"
	DocMinorID     DocumentType = "ti"
)

// BusinessRole is a role a profile can play in the business.
type BusinessRole string

const (
	RoleEmployee BusinessRole = "employee"
	RoleCustomer BusinessRole = "customer"
	RoleSupplier BusinessRole = "supplier"
	RoleAdmin    BusinessRole = "admin"
)

// State is the lifecycle state of a profile.
type State string

const (
	StateActive    State = "active"
	StateInactive  State = "inactive"
	StateSuspended State = "suspended"
)

// Profile is a person or party known to the system.
type Profile struct {
	entity.Catalog

	// DocumentType + DocumentNumber identify the person (unique pair)
	DocumentType   DocumentType `db:"document_type" json:"documentType"`
	DocumentNumber string       `db:"document_number" json:"documentNumber"`

	// Email is the contact email (unique when present)
	Email *string `db:"email" json:"email,omitempty"`

	// Phone is the contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// BusinessRoles the profile plays (employee, customer, supplier)
	BusinessRoles []string `db:"business_roles" json:"businessRoles"`

	// State is the lifecycle state
	State State `db:"state" json:"state"`

	// PasswordHash is the bcrypt hash for profiles that can sign in.
	// Never serialized.
	PasswordHash string `db:"password_hash" json:"-"`
}

// NewProfile creates a new Profile with required fields.
func NewProfile(docType DocumentType, docNumber, names string) *Profile {
	return &Profile{
		Catalog:        entity.NewCatalog(docNumber, names),
		DocumentType:   docType,
		DocumentNumber: docNumber,
		State:          StateActive,
	}
}

// Validate implements entity.Validatable interface.
func (p *Profile) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidDocumentType(p.DocumentType) {
		return apperror.NewValidation("invalid document type").
			WithDetail("field", "documentType").
			WithDetail("value", string(p.DocumentType))
	}

	if p.DocumentNumber == "" {
		return apperror.NewValidation("document number is required").
			WithDetail("field", "documentNumber")
	}

	for _, r := range p.BusinessRoles {
		if !isValidBusinessRole(BusinessRole(r)) {
			return apperror.NewValidation("invalid business role").
				WithDetail("field", "businessRoles").
				WithDetail("value", r)
		}
	}

	if !isValidState(p.State) {
		return apperror.NewValidation("invalid profile state").
			WithDetail("field", "state").
			WithDetail("value", string(p.State))
	}

	return nil
}

// HasRole checks whether the profile plays the given business role.
func (p *Profile) HasRole(role BusinessRole) bool {
	for _, r := range p.BusinessRoles {
		if BusinessRole(r) == role {
			return true
		}
	}
	return false
}

// AddRole adds a business role if not already present.
func (p *Profile) AddRole(role BusinessRole) {
	if !p.HasRole(role) {
		p.BusinessRoles = append(p.BusinessRoles, string(role))
	}
}

// IsActive returns true if the profile can act.
func (p *Profile) IsActive() bool {
	return p.State == StateActive
}

func isValidDocumentType(t DocumentType) bool {
	switch t {
	case DocCitizenID, DocForeignerID, DocTaxID, DocPassport, DocMinorID:
		return true
	}
	return false
}

func isValidBusinessRole(r BusinessRole) bool {
	switch r {
	case RoleEmployee, RoleCustomer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

func isValidState(s State) bool {
	switch s {
	case StateActive, StateInactive, StateSuspended:
		return true
	}
	return false
}
