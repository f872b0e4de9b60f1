package category

import (
	"context"

	"comercio/internal/core/id"
	"comercio/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// FindByNameAndParent retrieves a category by its (name, parent)
	// pair, the uniqueness scope of category names.
	FindByNameAndParent(ctx context.Context, name string, parentID *string) (*Category, error)

	// ListChildren retrieves direct children of a category.
	ListChildren(ctx context.Context, parentID id.ID) ([]*Category, error)

	// DetachChildren clears the parent reference of all direct children.
	DetachChildren(ctx context.Context, parentID id.ID) error

	// CountAssociations counts live product associations of a category.
	CountAssociations(ctx context.Context, categoryID id.ID) (int64, error)
}
