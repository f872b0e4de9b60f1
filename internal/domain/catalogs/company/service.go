package company

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/tx"
	"comercio/internal/domain"
)

// BranchCounter reports how many live branches belong to a company.
// Implemented by the branch repository; kept as a narrow interface to
// avoid an import cycle between the two catalogs.
type BranchCounter interface {
	CountByCompany(ctx context.Context, companyID string) (int64, error)
}

// Service provides business logic for the Company catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Company]
	repo     Repository
	branches BranchCounter
}

// NewService creates a new Company service.
func NewService(repo Repository, branches BranchCounter, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Company]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "company",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		branches:       branches,
	}

	base.Hooks().OnBeforeCreate(svc.checkUnique)
	base.Hooks().OnBeforeUpdate(svc.checkUnique)
	base.Hooks().OnBeforeDelete(svc.checkNotReferenced)

	return svc
}

// checkUnique enforces tax id and email uniqueness.
func (s *Service) checkUnique(ctx context.Context, c *Company) error {
	existing, err := s.repo.FindByTaxID(ctx, c.TaxID)
	if err == nil && existing.ID != c.ID {
		return apperror.NewDuplicate("company", "taxId", c.TaxID)
	}

	if c.Email != nil && *c.Email != "" {
		existing, err := s.repo.FindByEmail(ctx, *c.Email)
		if err == nil && existing.ID != c.ID {
			return apperror.NewDuplicate("company", "email", *c.Email)
		}
	}
	return nil
}

// checkNotReferenced blocks deletion while branches point at the company.
func (s *Service) checkNotReferenced(ctx context.Context, c *Company) error {
	count, err := s.branches.CountByCompany(ctx, c.ID.String())
	if err != nil {
		return apperror.NewInternal(err)
	}
	if count > 0 {
		return apperror.NewProtectedReference("company", c.ID.String(), "branches")
	}
	return nil
}

// FindByTaxID retrieves a company by tax id.
func (s *Service) FindByTaxID(ctx context.Context, taxID string) (*Company, error) {
	c, err := s.repo.FindByTaxID(ctx, taxID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("company", taxID)
		}
		return nil, err
	}
	return c, nil
}
