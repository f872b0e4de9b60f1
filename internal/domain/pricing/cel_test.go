package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercio/internal/core/apperror"
	"comercio/internal/core/types"
	"comercio/internal/domain/catalogs/product"
)

func testProduct(stock, minStock int64) *product.Product {
	p := product.NewProduct("PRD-001", "Widget")
	p.Stock = types.NewQuantityFromInt(stock)
	p.MinStock = types.NewQuantityFromInt(minStock)
	return p
}

func TestFixedMarkup(t *testing.T) {
	policy := NewFixedMarkup(types.NewMoney(0.30))
	ctx := context.Background()

	price, err := policy.SalePrice(ctx, testProduct(10, 5), types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, "130", price.String())

	// Rounded to 2 decimal places: 9.99 * 1.30 = 12.987 -> 12.99.
	price, err = policy.SalePrice(ctx, testProduct(10, 5), types.MustMoney("9.99"))
	require.NoError(t, err)
	assert.Equal(t, "12.99", price.String())

	_, err = policy.SalePrice(ctx, testProduct(10, 5), types.MustMoney("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
}

func TestCELPolicyLowStockRule(t *testing.T) {
	policy, err := NewCELPolicy("stock < min_stock ? cost * 1.5 : cost * 1.3")
	require.NoError(t, err)
	ctx := context.Background()

	// Plenty of stock: normal markup.
	price, err := policy.SalePrice(ctx, testProduct(10, 5), types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, "130", price.String())

	// Below the reorder threshold: scarcity markup.
	price, err = policy.SalePrice(ctx, testProduct(2, 5), types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, "150", price.String())
}

func TestCELPolicyIntegerResult(t *testing.T) {
	policy, err := NewCELPolicy("42")
	require.NoError(t, err)

	price, err := policy.SalePrice(context.Background(), testProduct(10, 5), types.MustMoney("100"))
	require.NoError(t, err)
	assert.Equal(t, "42", price.String())
}

func TestCELPolicyRejectsNegativePrice(t *testing.T) {
	policy, err := NewCELPolicy("cost - 100.0")
	require.NoError(t, err)

	_, err = policy.SalePrice(context.Background(), testProduct(10, 5), types.MustMoney("10"))
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)
}

func TestCELPolicyRejectsNonNumericResult(t *testing.T) {
	policy, err := NewCELPolicy(`"not a price"`)
	require.NoError(t, err)

	_, err = policy.SalePrice(context.Background(), testProduct(10, 5), types.MustMoney("10"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal), "got %v", err)
}

func TestCELPolicyCompileError(t *testing.T) {
	_, err := NewCELPolicy("cost *")
	require.Error(t, err)
}

func TestCELPolicyRejectsNegativeCost(t *testing.T) {
	policy, err := NewCELPolicy("cost * 1.3")
	require.NoError(t, err)

	_, err = policy.SalePrice(context.Background(), testProduct(10, 5), types.MustMoney("-5"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
}

func TestCELPolicyReadsAttributes(t *testing.T) {
	policy, err := NewCELPolicy(`attrs.premium == true ? cost * 2.0 : cost * 1.3`)
	require.NoError(t, err)
	ctx := context.Background()

	p := testProduct(10, 5)
	p.Attributes = map[string]any{"premium": true}

	price, err := policy.SalePrice(ctx, p, types.MustMoney("50"))
	require.NoError(t, err)
	assert.Equal(t, "100", price.String())
}
