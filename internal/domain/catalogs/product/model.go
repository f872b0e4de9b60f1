// Package product provides the Product catalog: sellable items with
// on-hand stock kept on the product row itself.
package product

import (
	"context"
	"time"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
)

// State is the lifecycle state of a product.
type State string

const (
	StateActive       State = "active"
	StateInactive     State = "inactive"
	StateDiscontinued State = "discontinued"
	StateOutOfStock   State = "out_of_stock"
)

// Product is a sellable item.
type Product struct {
	entity.Catalog

	// Description is an optional free-text description
	Description *string `db:"description" json:"description,omitempty"`

	// Stock is the on-hand quantity. Adjusted atomically by the ledger;
	// never negative unless an explicit override allows it.
	Stock types.Quantity `db:"stock" json:"stock"`

	// MinStock is the reorder threshold
	MinStock types.Quantity `db:"min_stock" json:"minStock"`

	// UnitCost is the reference acquisition cost (4 decimal places)
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// State is the lifecycle state
	State State `db:"state" json:"state"`
}

// NewProduct creates a new Product with required fields.
// Code may be empty; uniqueness is only enforced when present.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog: entity.NewCatalog(code, name),
		State:   StateActive,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Stock.IsNegative() {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}

	if p.MinStock.IsNegative() {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock")
	}

	if p.UnitCost.IsNegative() {
		return apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	if !isValidState(p.State) {
		return apperror.NewValidation("invalid product state").
			WithDetail("field", "state").
			WithDetail("value", string(p.State))
	}

	return nil
}

// IsLowStock returns true if stock is below the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock < p.MinStock
}

// IsSellable returns true if the product can appear on new lines.
func (p *Product) IsSellable() bool {
	return p.State == StateActive || p.State == StateOutOfStock
}

func isValidState(s State) bool {
	switch s {
	case StateActive, StateInactive, StateDiscontinued, StateOutOfStock:
		return true
	}
	return false
}

// CategoryLink associates a product with a category. At most one link
// per product carries IsPrimary.
type CategoryLink struct {
	ID         id.ID     `db:"id" json:"id"`
	ProductID  id.ID     `db:"product_id" json:"productId"`
	CategoryID id.ID     `db:"category_id" json:"categoryId"`
	IsPrimary  bool      `db:"is_primary" json:"isPrimary"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// NewCategoryLink creates a new association.
func NewCategoryLink(productID, categoryID id.ID, isPrimary bool) *CategoryLink {
	return &CategoryLink{
		ID:         id.New(),
		ProductID:  productID,
		CategoryID: categoryID,
		IsPrimary:  isPrimary,
		CreatedAt:  time.Now().UTC(),
	}
}
