package pricing

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"comercio/internal/core/apperror"
	"comercio/internal/core/types"
	"comercio/internal/domain/catalogs/product"
)

// CELPolicy computes sale prices from a CEL expression compiled once at
// construction. The expression sees:
//
//	cost      double  - unit cost of the line
//	stock     double  - current on-hand quantity
//	min_stock double  - reorder threshold
//	attrs     map     - product custom attributes
//
// and must evaluate to a numeric price. Example rule:
//
//	"stock < min_stock ? cost * 1.5 : cost * 1.3"
type CELPolicy struct {
	program cel.Program
	rule    string
}

// NewCELPolicy compiles the rule and returns a ready policy.
func NewCELPolicy(rule string) (*CELPolicy, error) {
	env, err := cel.NewEnv(
		cel.Variable("cost", cel.DoubleType),
		cel.Variable("stock", cel.DoubleType),
		cel.Variable("min_stock", cel.DoubleType),
		cel.Variable("attrs", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}

	ast, issues := env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile pricing rule: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build pricing program: %w", err)
	}

	return &CELPolicy{program: program, rule: rule}, nil
}

// SalePrice implements Policy.
func (c *CELPolicy) SalePrice(ctx context.Context, p *product.Product, unitCost types.Money) (types.Money, error) {
	if unitCost.IsNegative() {
		return types.Zero(), apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	attrs := map[string]any{}
	for k, v := range p.Attributes {
		attrs[k] = v
	}

	cost, _ := unitCost.Float64()
	out, _, err := c.program.Eval(map[string]any{
		"cost":      cost,
		"stock":     p.Stock.Float64(),
		"min_stock": p.MinStock.Float64(),
		"attrs":     attrs,
	})
	if err != nil {
		return types.Zero(), apperror.NewInternal(err).
			WithDetail("rule", c.rule)
	}

	var price float64
	switch v := out.Value().(type) {
	case float64:
		price = v
	case int64:
		price = float64(v)
	default:
		return types.Zero(), apperror.NewInternal(fmt.Errorf("pricing rule returned %T, want number", v)).
			WithDetail("rule", c.rule)
	}

	if price < 0 {
		return types.Zero(), apperror.NewBusinessRule(apperror.CodeBusinessRule, "pricing rule produced a negative price").
			WithDetail("rule", c.rule)
	}

	return types.RoundMoney(types.NewMoney(price)), nil
}

var _ Policy = (*CELPolicy)(nil)
