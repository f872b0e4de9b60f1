package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain/catalogs/category"
	"comercio/internal/infrastructure/storage/postgres"
)

const categoryTable = "cat_categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			categoryTable,
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return &category.Category{} },
		),
	}
}

// FindByNameAndParent retrieves a category by its (name, parent) pair.
func (r *CategoryRepo) FindByNameAndParent(ctx context.Context, name string, parentID *string) (*category.Category, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	if parentID == nil {
		q = q.Where(squirrel.Eq{"parent_id": nil})
	} else {
		q = q.Where(squirrel.Eq{"parent_id": *parentID})
	}

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("category", name)
		}
		return nil, err
	}
	return item, nil
}

// ListChildren retrieves direct children of a category.
func (r *CategoryRepo) ListChildren(ctx context.Context, parentID id.ID) ([]*category.Category, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"parent_id": parentID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*category.Category
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}

	return items, nil
}

// DetachChildren clears the parent reference of all direct children.
// Detached children become roots.
func (r *CategoryRepo) DetachChildren(ctx context.Context, parentID id.ID) error {
	q := r.Builder().
		Update(categoryTable).
		Set("parent_id", nil).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"parent_id": parentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build detach children: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("detach children: %w", err)
	}

	return nil
}

// CountAssociations counts live product associations of a category.
func (r *CategoryRepo) CountAssociations(ctx context.Context, categoryID id.ID) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(productLinkTable + " l").
		Join(productTable + " p ON p.id = l.product_id").
		Where(squirrel.Eq{"l.category_id": categoryID}).
		Where(squirrel.Eq{"p.deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count associations: %w", err)
	}

	return count, nil
}
