// Package branch provides the Branch catalog. A branch is the physical
// point of sale; every transaction and return belongs to one.
package branch

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
)

// Kind classifies the branch.
type Kind string

const (
	KindMain      Kind = "main"
	KindSatellite Kind = "satellite"
	KindWarehouse Kind = "warehouse"
	KindVirtual   Kind = "virtual"
)

// State is the lifecycle state of a branch.
type State string

const (
	StateActive    State = "active"
	StateInactive  State = "inactive"
	StateSuspended State = "suspended"
)

// Branch is a point of sale belonging to a company.
type Branch struct {
	entity.Catalog

	// CompanyID is the owning company (required, deletion-protected)
	CompanyID string `db:"company_id" json:"companyId"`

	// AdministratorID is the managing profile (optional, detached when
	// the profile is deleted)
	AdministratorID *string `db:"administrator_id" json:"administratorId,omitempty"`

	// Address is the street address
	Address string `db:"address" json:"address"`

	// MunicipalityID locates the branch (required, deletion-protected)
	MunicipalityID string `db:"municipality_id" json:"municipalityId"`

	// Phone is the contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is the contact email
	Email *string `db:"email" json:"email,omitempty"`

	// Kind classifies the branch
	Kind Kind `db:"kind" json:"kind"`

	// State is the lifecycle state
	State State `db:"state" json:"state"`
}

// NewBranch creates a new Branch with required fields.
func NewBranch(companyID, name, address, municipalityID string) *Branch {
	return &Branch{
		Catalog:        entity.NewCatalog("", name),
		CompanyID:      companyID,
		Address:        address,
		MunicipalityID: municipalityID,
		Kind:           KindSatellite,
		State:          StateActive,
	}
}

// Validate implements entity.Validatable interface.
func (b *Branch) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}

	if b.CompanyID == "" {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if b.Address == "" {
		return apperror.NewValidation("address is required").
			WithDetail("field", "address")
	}

	if b.MunicipalityID == "" {
		return apperror.NewValidation("municipality is required").
			WithDetail("field", "municipalityId")
	}

	if !isValidKind(b.Kind) {
		return apperror.NewValidation("invalid branch kind").
			WithDetail("field", "kind").
			WithDetail("value", string(b.Kind))
	}

	if !isValidState(b.State) {
		return apperror.NewValidation("invalid branch state").
			WithDetail("field", "state").
			WithDetail("value", string(b.State))
	}

	return nil
}

// IsActive returns true if the branch can operate.
func (b *Branch) IsActive() bool {
	return b.State == StateActive
}

// DetachAdministrator clears the administrator reference.
func (b *Branch) DetachAdministrator() {
	b.AdministratorID = nil
}

func isValidKind(k Kind) bool {
	switch k {
	case KindMain, KindSatellite, KindWarehouse, KindVirtual:
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
