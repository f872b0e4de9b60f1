package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain"
	"comercio/internal/domain/catalogs/location"
	"comercio/internal/infrastructure/storage/postgres"
)

const (
	departmentTable   = "cat_departments"
	municipalityTable = "cat_municipalities"
)

// DepartmentRepo implements location.DepartmentRepository.
type DepartmentRepo struct {
	*BaseCatalogRepo[*location.Department]
}

// NewDepartmentRepo creates a new department repository.
func NewDepartmentRepo(txManager *postgres.TxManager) *DepartmentRepo {
	return &DepartmentRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			departmentTable,
			postgres.ExtractDBColumns[location.Department](),
			func() *location.Department { return &location.Department{} },
		),
	}
}

// FindByDANECode retrieves a department by its official code.
func (r *DepartmentRepo) FindByDANECode(ctx context.Context, code string) (*location.Department, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"dane_code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("department", code)
		}
		return nil, err
	}
	return item, nil
}

// MunicipalityRepo implements location.MunicipalityRepository.
type MunicipalityRepo struct {
	*BaseCatalogRepo[*location.Municipality]
}

// NewMunicipalityRepo creates a new municipality repository.
func NewMunicipalityRepo(txManager *postgres.TxManager) *MunicipalityRepo {
	return &MunicipalityRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			municipalityTable,
			postgres.ExtractDBColumns[location.Municipality](),
			func() *location.Municipality { return &location.Municipality{} },
		),
	}
}

// FindByDANECode retrieves a municipality by its official code.
func (r *MunicipalityRepo) FindByDANECode(ctx context.Context, code string) (*location.Municipality, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"dane_code": code}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("municipality", code)
		}
		return nil, err
	}
	return item, nil
}

// ListByDepartment retrieves municipalities of a department.
func (r *MunicipalityRepo) ListByDepartment(ctx context.Context, departmentID id.ID, filter domain.ListFilter) (domain.ListResult[*location.Municipality], error) {
	result := domain.ListResult[*location.Municipality]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"department_id": departmentID}).
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

	var items []*location.Municipality
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("list by department: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}

// CountByDepartment counts live municipalities referencing a department.
func (r *MunicipalityRepo) CountByDepartment(ctx context.Context, departmentID id.ID) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(municipalityTable).
		Where(squirrel.Eq{"department_id": departmentID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by department: %w", err)
	}

	return count, nil
}
