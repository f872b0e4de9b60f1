package location

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/domain"
)

// DepartmentService provides business logic for the Department catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type DepartmentService struct {
	*domain.CatalogService[*Department]
	repo    DepartmentRepository
	munRepo MunicipalityRepository
}

// NewDepartmentService creates a new Department service.
func NewDepartmentService(repo DepartmentRepository, munRepo MunicipalityRepository, txm tx.Manager) *DepartmentService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Department]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "department",
	})

	svc := &DepartmentService{
		CatalogService: base,
		repo:           repo,
		munRepo:        munRepo,
	}

	base.Hooks().OnBeforeCreate(svc.checkUnique)
	base.Hooks().OnBeforeUpdate(svc.checkUnique)
	base.Hooks().OnBeforeDelete(svc.checkNotReferenced)

	return svc
}

// checkUnique enforces name and DANE code uniqueness.
func (s *DepartmentService) checkUnique(ctx context.Context, dep *Department) error {
	existing, err := s.repo.FindByDANECode(ctx, dep.DANECode)
	if err == nil && existing.ID != dep.ID {
		return apperror.NewDuplicate("department", "daneCode", dep.DANECode)
	}
	return nil
}

// checkNotReferenced blocks deletion while municipalities point at the department.
func (s *DepartmentService) checkNotReferenced(ctx context.Context, dep *Department) error {
	count, err := s.munRepo.CountByDepartment(ctx, dep.ID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if count > 0 {
		return apperror.NewProtectedReference("department", dep.ID.String(), "municipalities")
	}
	return nil
}

// FindByDANECode retrieves a department by its official code.
func (s *DepartmentService) FindByDANECode(ctx context.Context, code string) (*Department, error) {
	dep, err := s.repo.FindByDANECode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("department", code)
		}
		return nil, err
	}
	return dep, nil
}

// MunicipalityService provides business logic for the Municipality catalog.
type MunicipalityService struct {
	*domain.CatalogService[*Municipality]
	repo    MunicipalityRepository
	depRepo DepartmentRepository
}

// NewMunicipalityService creates a new Municipality service.
func NewMunicipalityService(repo MunicipalityRepository, depRepo DepartmentRepository, txm tx.Manager) *MunicipalityService {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Municipality]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "municipality",
	})

	svc := &MunicipalityService{
		CatalogService: base,
		repo:           repo,
		depRepo:        depRepo,
	}

	base.Hooks().OnBeforeCreate(svc.prepare)
	base.Hooks().OnBeforeUpdate(svc.prepare)

	return svc
}

// prepare checks the owning department exists and the DANE code is unique.
func (s *MunicipalityService) prepare(ctx context.Context, mun *Municipality) error {
	depID, err := id.Parse(mun.DepartmentID)
	if err != nil {
		return apperror.NewValidation("invalid department id").
			WithDetail("field", "departmentId")
	}
	exists, err := s.depRepo.Exists(ctx, depID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !exists {
		return apperror.NewNotFound("department", mun.DepartmentID)
	}

	existing, err := s.repo.FindByDANECode(ctx, mun.DANECode)
	if err == nil && existing.ID != mun.ID {
		return apperror.NewDuplicate("municipality", "daneCode", mun.DANECode)
	}
	return nil
}

// ListByDepartment retrieves municipalities of a department.
func (s *MunicipalityService) ListByDepartment(ctx context.Context, departmentID id.ID, filter domain.ListFilter) (domain.ListResult[*Municipality], error) {
	return s.repo.ListByDepartment(ctx, departmentID, filter)
}
