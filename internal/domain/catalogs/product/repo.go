package product

import (
	"context"

	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves a product with a row lock.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// AdjustStock applies delta to the product stock atomically.
	// Unless override is set, the update is guarded: it fails with
	// InsufficientStock when the result would be negative.
	// Returns the new stock value.
	AdjustStock(ctx context.Context, id id.ID, delta types.Quantity, override bool) (types.Quantity, error)

	// FindLowStock retrieves products with stock below minimum.
	FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error)
}

// LinkRepository defines the interface for product-category associations.
type LinkRepository interface {
	// CreateLink inserts a new association.
	CreateLink(ctx context.Context, link *CategoryLink) error

	// GetLink retrieves the association for a (product, category) pair.
	GetLink(ctx context.Context, productID, categoryID id.ID) (*CategoryLink, error)

	// GetPrimaryLink retrieves the primary association of a product.
	GetPrimaryLink(ctx context.Context, productID id.ID) (*CategoryLink, error)

	// SetPrimary sets or clears the primary flag on an association.
	SetPrimary(ctx context.Context, linkID id.ID, primary bool) error

	// DeleteLink removes an association.
	DeleteLink(ctx context.Context, productID, categoryID id.ID) error

	// ListByProduct retrieves associations of a product.
	ListByProduct(ctx context.Context, productID id.ID) ([]*CategoryLink, error)

	// ListProductsByCategory retrieves products associated with a category.
	ListProductsByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error)
}
