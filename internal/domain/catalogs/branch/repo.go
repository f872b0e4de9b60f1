package branch

import (
	"context"

	"comercio/internal/domain"
)

// Repository defines the interface for Branch persistence.
type Repository interface {
	domain.CatalogRepository[*Branch]

	// FindByCompanyAndName retrieves a branch by its per-company unique name.
	FindByCompanyAndName(ctx context.Context, companyID, name string) (*Branch, error)

	// ListByCompany retrieves branches of a company.
	ListByCompany(ctx context.Context, companyID string, filter domain.ListFilter) (domain.ListResult[*Branch], error)

	// CountByCompany counts live branches of a company.
	CountByCompany(ctx context.Context, companyID string) (int64, error)

	// DetachAdministrator clears the administrator reference on all
	// branches managed by the given profile.
	DetachAdministrator(ctx context.Context, profileID string) error
}
