package profile

import (
	"context"

	"comercio/internal/domain"
)

// Repository defines the interface for Profile persistence.
type Repository interface {
	domain.CatalogRepository[*Profile]

	// FindByDocument retrieves a profile by document type and number.
	FindByDocument(ctx context.Context, docType DocumentType, docNumber string) (*Profile, error)

	// FindByEmail retrieves a profile by email.
	FindByEmail(ctx context.Context, email string) (*Profile, error)

	// ListByRole retrieves profiles carrying the given business role.
	ListByRole(ctx context.Context, role BusinessRole, filter domain.ListFilter) (domain.ListResult[*Profile], error)
}
