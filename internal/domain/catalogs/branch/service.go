package branch

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/domain"
)

// CompanyChecker verifies a company exists. Narrow interface to avoid
// an import cycle with the company catalog.
type CompanyChecker interface {
	Exists(ctx context.Context, companyID id.ID) (bool, error)
}

// MunicipalityChecker verifies a municipality exists.
type MunicipalityChecker interface {
	Exists(ctx context.Context, municipalityID id.ID) (bool, error)
}

// Service provides business logic for the Branch catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Branch]
	repo           Repository
	companies      CompanyChecker
	municipalities MunicipalityChecker
}

// NewService creates a new Branch service.
func NewService(repo Repository, companies CompanyChecker, municipalities MunicipalityChecker, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Branch]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "branch",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		companies:      companies,
		municipalities: municipalities,
	}

	base.Hooks().OnBeforeCreate(svc.prepare)
	base.Hooks().OnBeforeUpdate(svc.prepare)

	return svc
}

// prepare validates references and enforces per-company name uniqueness.
func (s *Service) prepare(ctx context.Context, b *Branch) error {
	companyID, err := id.Parse(b.CompanyID)
	if err != nil {
		return apperror.NewValidation("invalid company id").
			WithDetail("field", "companyId")
	}
	exists, err := s.companies.Exists(ctx, companyID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !exists {
		return apperror.NewNotFound("company", b.CompanyID)
	}

	municipalityID, err := id.Parse(b.MunicipalityID)
	if err != nil {
		return apperror.NewValidation("invalid municipality id").
			WithDetail("field", "municipalityId")
	}
	exists, err = s.municipalities.Exists(ctx, municipalityID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !exists {
		return apperror.NewNotFound("municipality", b.MunicipalityID)
	}

	existing, err := s.repo.FindByCompanyAndName(ctx, b.CompanyID, b.Name)
	if err == nil && existing.ID != b.ID {
		return apperror.NewDuplicateName("branch", b.Name).
			WithDetail("companyId", b.CompanyID)
	}

	return nil
}

// ListByCompany retrieves branches of a company.
func (s *Service) ListByCompany(ctx context.Context, companyID string, filter domain.ListFilter) (domain.ListResult[*Branch], error) {
	return s.repo.ListByCompany(ctx, companyID, filter)
}

// DetachAdministrator clears the administrator reference on all
// branches managed by the given profile. Called by the profile service
// on soft delete.
func (s *Service) DetachAdministrator(ctx context.Context, profileID string) error {
	return s.repo.DetachAdministrator(ctx, profileID)
}
