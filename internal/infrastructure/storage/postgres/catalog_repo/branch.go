package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/apperror"
	"comercio/internal/domain"
	"comercio/internal/domain/catalogs/branch"
	"comercio/internal/infrastructure/storage/postgres"
)

const branchTable = "cat_branches"

// BranchRepo implements branch.Repository.
type BranchRepo struct {
	*BaseCatalogRepo[*branch.Branch]
}

// NewBranchRepo creates a new branch repository.
func NewBranchRepo(txManager *postgres.TxManager) *BranchRepo {
	return &BranchRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			branchTable,
			postgres.ExtractDBColumns[branch.Branch](),
			func() *branch.Branch { return &branch.Branch{} },
		),
	}
}

// FindByCompanyAndName retrieves a branch by its per-company unique name.
func (r *BranchRepo) FindByCompanyAndName(ctx context.Context, companyID, name string) (*branch.Branch, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("branch", name)
		}
		return nil, err
	}
	return item, nil
}

// ListByCompany retrieves branches of a company.
func (r *BranchRepo) ListByCompany(ctx context.Context, companyID string, filter domain.ListFilter) (domain.ListResult[*branch.Branch], error) {
	result := domain.ListResult[*branch.Branch]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var items []*branch.Branch
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("list by company: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}

// CountByCompany counts live branches of a company.
func (r *BranchRepo) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(branchTable).
		Where(squirrel.Eq{"company_id": companyID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by company: %w", err)
	}

	return count, nil
}

// DetachAdministrator clears the administrator reference on all branches
// managed by the given profile.
func (r *BranchRepo) DetachAdministrator(ctx context.Context, profileID string) error {
	q := r.Builder().
		Update(branchTable).
		Set("administrator_id", nil).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"administrator_id": profileID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build detach administrator: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("detach administrator: %w", err)
	}

	return nil
}
