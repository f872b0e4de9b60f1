// Package category provides the hierarchical product Category catalog.
package category

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
)

// MaxDepth bounds the ancestor walk used by the cycle guard. A real
// category tree is a handful of levels deep; hitting the bound means
// the hierarchy is corrupt.
const MaxDepth = 32

// Category is a node in the product classification tree.
type Category struct {
	entity.Catalog

	// Description is an optional free-text description
	Description *string `db:"description" json:"description,omitempty"`

	// Active toggles visibility without deleting
	Active bool `db:"active" json:"active"`
}

// NewCategory creates a new Category with required fields.
func NewCategory(name string, parentID *string) *Category {
	c := &Category{
		Catalog: entity.NewCatalog("", name),
		Active:  true,
	}
	c.ParentID = parentID
	return c
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	// Self-parenting is the degenerate cycle; deeper cycles are caught
	// by the service's ancestor walk.
	if c.ParentID != nil && *c.ParentID == c.ID.String() {
		return apperror.NewValidation("category cannot be its own parent").
			WithDetail("field", "parentId")
	}

	return nil
}

// Detach removes the category from its parent, making it a root.
func (c *Category) Detach() {
	c.ParentID = nil
}
