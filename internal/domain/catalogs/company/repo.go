package company

import (
	"context"

	"comercio/internal/domain"
)

// Repository defines the interface for Company persistence.
type Repository interface {
	domain.CatalogRepository[*Company]

	// FindByTaxID retrieves a company by tax id.
	FindByTaxID(ctx context.Context, taxID string) (*Company, error)

	// FindByEmail retrieves a company by contact email.
	FindByEmail(ctx context.Context, email string) (*Company, error)
}
