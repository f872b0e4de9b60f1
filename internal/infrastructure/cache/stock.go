package cache

import (
	"context"
	"encoding/json"
	"time"

	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/pkg/logger"
)

const stockKeyPrefix = "stock:"

// StockCache caches product availability and drops entries after stock
// writes. Implements product.StockCache.
type StockCache struct {
	cache Cache
	ttl   time.Duration
}

// NewStockCache creates a stock cache with the given TTL.
func NewStockCache(cache Cache, ttl time.Duration) *StockCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &StockCache{cache: cache, ttl: ttl}
}

type stockEntry struct {
	Stock    types.Quantity `json:"stock"`
	MinStock types.Quantity `json:"minStock"`
}

// GetStock returns cached availability for a product, if present.
func (c *StockCache) GetStock(ctx context.Context, productID id.ID) (stock, minStock types.Quantity, ok bool) {
	raw, found, err := c.cache.Get(ctx, stockKeyPrefix+productID.String())
	if err != nil {
		logger.Warn(ctx, "stock cache read failed", "product_id", productID.String(), "error", err)
		return 0, 0, false
	}
	if !found {
		return 0, 0, false
	}

	var entry stockEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, 0, false
	}
	return entry.Stock, entry.MinStock, true
}

// SetStock stores availability for a product.
func (c *StockCache) SetStock(ctx context.Context, productID id.ID, stock, minStock types.Quantity) {
	raw, err := json.Marshal(stockEntry{Stock: stock, MinStock: minStock})
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, stockKeyPrefix+productID.String(), raw, c.ttl); err != nil {
		logger.Warn(ctx, "stock cache write failed", "product_id", productID.String(), "error", err)
	}
}

// InvalidateProduct drops the cached availability of a product.
// Failures are logged and swallowed: the cache is advisory.
func (c *StockCache) InvalidateProduct(ctx context.Context, productID id.ID) {
	if err := c.cache.Delete(ctx, stockKeyPrefix+productID.String()); err != nil {
		logger.Warn(ctx, "stock cache invalidation failed", "product_id", productID.String(), "error", err)
	}
}
