package entity

import (
	"context"

	"comercio/internal/core/apperror"
)

// Catalog is the shared shape of reference data: products, categories,
// companies, branches, profiles.
type Catalog struct {
	BaseCatalog

	// Code is the human-readable identifier; uniqueness is per catalog.
	Code string `db:"code" json:"code"`

	Name string `db:"name" json:"name"`

	// ParentID links hierarchical catalogs such as categories.
	ParentID *string `db:"parent_id" json:"parentId,omitempty"`
}

// NewCatalog mints an id and fills the identifying fields.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		Code:        code,
		Name:        name,
	}
}

// Validate implements Validatable. Code may still be empty here; some
// catalogs assign it from a generator at save time.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}

// SetParent sets or clears the parent reference.
func (c *Catalog) SetParent(parentID string) {
	if parentID == "" {
		c.ParentID = nil
	} else {
		c.ParentID = &parentID
	}
}

// IsRoot reports whether the catalog has no parent.
func (c *Catalog) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}
