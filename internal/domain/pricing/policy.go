// Package pricing computes sale prices for transaction lines.
// The policy is pluggable: a fixed markup for simple deployments and a
// CEL expression for rule-driven ones.
package pricing

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/types"
	"comercio/internal/domain/catalogs/product"
)

// Policy computes the sale price of a product given its unit cost.
type Policy interface {
	SalePrice(ctx context.Context, p *product.Product, unitCost types.Money) (types.Money, error)
}

// FixedMarkup applies a constant markup rate over unit cost.
type FixedMarkup struct {
	rate types.Money
}

// NewFixedMarkup creates a fixed markup policy.
// rate 0.30 means sale price = cost * 1.30.
func NewFixedMarkup(rate types.Money) *FixedMarkup {
	return &FixedMarkup{rate: rate}
}

// SalePrice implements Policy.
func (f *FixedMarkup) SalePrice(ctx context.Context, p *product.Product, unitCost types.Money) (types.Money, error) {
	if unitCost.IsNegative() {
		return types.Zero(), apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}
	one := types.NewMoney(1)
	return types.RoundMoney(unitCost.Mul(one.Add(f.rate))), nil
}

var _ Policy = (*FixedMarkup)(nil)
