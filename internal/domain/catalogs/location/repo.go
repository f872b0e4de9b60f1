package location

import (
	"context"

	"comercio/internal/core/id"
	"comercio/internal/domain"
)

// DepartmentRepository defines the interface for Department persistence.
type DepartmentRepository interface {
	domain.CatalogRepository[*Department]

	// FindByDANECode retrieves a department by its official code.
	FindByDANECode(ctx context.Context, code string) (*Department, error)
}

// MunicipalityRepository defines the interface for Municipality persistence.
type MunicipalityRepository interface {
	domain.CatalogRepository[*Municipality]

	// FindByDANECode retrieves a municipality by its official code.
	FindByDANECode(ctx context.Context, code string) (*Municipality, error)

	// ListByDepartment retrieves municipalities of a department.
	ListByDepartment(ctx context.Context, departmentID id.ID, filter domain.ListFilter) (domain.ListResult[*Municipality], error)

	// CountByDepartment counts live municipalities referencing a department.
	CountByDepartment(ctx context.Context, departmentID id.ID) (int64, error)
}
