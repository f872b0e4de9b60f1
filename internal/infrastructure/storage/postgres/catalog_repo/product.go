package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/catalogs/product"
	"comercio/internal/infrastructure/storage/postgres"
)

const (
	productTable     = "cat_products"
	productLinkTable = "cat_product_categories"
)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			productTable,
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// AdjustStock applies delta to the product stock atomically. The update
// is guarded against going negative unless override is set; the guard
// and the write happen in one statement, so concurrent adjustments
// serialize on the product row without a prior SELECT FOR UPDATE.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity, override bool) (types.Quantity, error) {
	const sql = `
		UPDATE cat_products
		SET stock = stock + $2,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND ($3 OR stock + $2 >= 0)
		RETURNING stock`

	var newStock types.Quantity
	err := r.Querier(ctx).QueryRow(ctx, sql, productID, int64(delta), override).Scan(&newStock)
	if err == nil {
		return newStock, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("adjust stock: %w", err)
	}

	// Guard rejected the update or the product does not exist.
	// Read the row to tell the two apart and report available stock.
	current, getErr := r.GetByID(ctx, productID, true)
	if getErr != nil {
		return 0, getErr
	}

	return 0, apperror.NewInsufficientStock(
		productID.String(),
		delta.Neg().String(),
		current.Stock.String(),
	)
}

// FindLowStock retrieves products with stock below minimum.
func (r *ProductRepo) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Expr("stock < min_stock")).
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

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("find low stock: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}

// ProductLinkRepo implements product.LinkRepository.
type ProductLinkRepo struct {
	txManager *postgres.TxManager
	products  *ProductRepo
}

// NewProductLinkRepo creates a new product-category link repository.
func NewProductLinkRepo(txManager *postgres.TxManager, products *ProductRepo) *ProductLinkRepo {
	return &ProductLinkRepo{
		txManager: txManager,
		products:  products,
	}
}

func (r *ProductLinkRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var linkCols = postgres.ExtractDBColumns[product.CategoryLink]()

// CreateLink inserts a new association.
func (r *ProductLinkRepo) CreateLink(ctx context.Context, link *product.CategoryLink) error {
	data := postgres.StructToMap(link)

	q := r.builder().
		Insert(productLinkTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", productLinkTable, err)
	}

	return nil
}

// GetLink retrieves the association for a (product, category) pair.
func (r *ProductLinkRepo) GetLink(ctx context.Context, productID, categoryID id.ID) (*product.CategoryLink, error) {
	q := r.builder().
		Select(linkCols...).
		From(productLinkTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"category_id": categoryID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	link := &product.CategoryLink{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), link, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product category link", productID.String())
		}
		return nil, fmt.Errorf("get link: %w", err)
	}

	return link, nil
}

// GetPrimaryLink retrieves the primary association of a product.
func (r *ProductLinkRepo) GetPrimaryLink(ctx context.Context, productID id.ID) (*product.CategoryLink, error) {
	q := r.builder().
		Select(linkCols...).
		From(productLinkTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"is_primary": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	link := &product.CategoryLink{}
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), link, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("primary category link", productID.String())
		}
		return nil, fmt.Errorf("get primary link: %w", err)
	}

	return link, nil
}

// SetPrimary sets or clears the primary flag on an association.
func (r *ProductLinkRepo) SetPrimary(ctx context.Context, linkID id.ID, primary bool) error {
	q := r.builder().
		Update(productLinkTable).
		Set("is_primary", primary).
		Where(squirrel.Eq{"id": linkID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build set primary: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set primary: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product category link", linkID.String())
	}

	return nil
}

// DeleteLink removes an association.
func (r *ProductLinkRepo) DeleteLink(ctx context.Context, productID, categoryID id.ID) error {
	q := r.builder().
		Delete(productLinkTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"category_id": categoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product category link", productID.String())
	}

	return nil
}

// ListByProduct retrieves associations of a product.
func (r *ProductLinkRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*product.CategoryLink, error) {
	q := r.builder().
		Select(linkCols...).
		From(productLinkTable).
		Where(squirrel.Eq{"product_id": productID}).
		OrderBy("is_primary DESC", "created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var links []*product.CategoryLink
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &links, sql, args...); err != nil {
		return nil, fmt.Errorf("list by product: %w", err)
	}

	return links, nil
}

// ListProductsByCategory retrieves products associated with a category.
func (r *ProductLinkRepo) ListProductsByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	cols := make([]string, 0, len(r.products.selectCols))
	for _, col := range r.products.selectCols {
		cols = append(cols, "p."+col)
	}

	q := r.builder().
		Select(cols...).
		From(productTable + " p").
		Join(productLinkTable + " l ON l.product_id = p.id").
		Where(squirrel.Eq{"l.category_id": categoryID}).
		Where(squirrel.Eq{"p.deletion_mark": false}).
		OrderBy("p.name ASC")

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

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("list products by category: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}
