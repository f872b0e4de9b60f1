package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"comercio/internal/core/apperror"
	"comercio/internal/domain/catalogs/company"
	"comercio/internal/infrastructure/storage/postgres"
)

const companyTable = "cat_companies"

// CompanyRepo implements company.Repository.
type CompanyRepo struct {
	*BaseCatalogRepo[*company.Company]
}

// NewCompanyRepo creates a new company repository.
func NewCompanyRepo(txManager *postgres.TxManager) *CompanyRepo {
	return &CompanyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			companyTable,
			postgres.ExtractDBColumns[company.Company](),
			func() *company.Company { return &company.Company{} },
		),
	}
}

// FindByTaxID retrieves a company by tax id.
func (r *CompanyRepo) FindByTaxID(ctx context.Context, taxID string) (*company.Company, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tax_id": taxID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("company", taxID)
		}
		return nil, err
	}
	return item, nil
}

// FindByEmail retrieves a company by contact email.
func (r *CompanyRepo) FindByEmail(ctx context.Context, email string) (*company.Company, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("company", email)
		}
		return nil, err
	}
	return item, nil
}
