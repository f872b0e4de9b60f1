// Package company provides the Company catalog, the legal entity that
// owns branches.
package company

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
)

// Kind classifies the company business.
type Kind string

const (
	KindRetail      Kind = "retail"
	KindWholesale   Kind = "wholesale"
	KindDistributor Kind = "distributor"
	KindServices    Kind = "services"
)

// State is the lifecycle state of a company.
type State string

const (
	StateActive    State = "active"
	StateInactive  State = "inactive"
	StateSuspended State = "suspended"
)

// Company is a legal entity owning one or more branches.
type Company struct {
	entity.Catalog

	// TaxID is the tax identification number (unique)
	TaxID string `db:"tax_id" json:"taxId"`

	// Email is the contact email (unique when present)
	Email *string `db:"email" json:"email,omitempty"`

	// Phone is the contact phone
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Kind classifies the business
	Kind Kind `db:"kind" json:"kind"`

	// State is the lifecycle state
	State State `db:"state" json:"state"`
}

// NewCompany creates a new Company with required fields.
func NewCompany(name, taxID string, kind Kind) *Company {
	return &Company{
		Catalog: entity.NewCatalog(taxID, name),
		TaxID:   taxID,
		Kind:    kind,
		State:   StateActive,
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.TaxID == "" {
		return apperror.NewValidation("tax id is required").
			WithDetail("field", "taxId")
	}

	if !isValidKind(c.Kind) {
		return apperror.NewValidation("invalid company kind").
			WithDetail("field", "kind").
			WithDetail("value", string(c.Kind))
	}

	if !isValidState(c.State) {
		return apperror.NewValidation("invalid company state").
			WithDetail("field", "state").
			WithDetail("value", string(c.State))
	}

	return nil
}

// IsActive returns true if the company can operate.
func (c *Company) IsActive() bool {
	return c.State == StateActive
}

func isValidKind(k Kind) bool {
	switch k {
	case KindRetail, KindWholesale, KindDistributor, KindServices:
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
