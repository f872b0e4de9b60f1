package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/apperror"
	"comercio/internal/domain"
	"comercio/internal/domain/catalogs/profile"
	"comercio/internal/infrastructure/storage/postgres"
)

const profileTable = "cat_profiles"

// ProfileRepo implements profile.Repository.
type ProfileRepo struct {
	*BaseCatalogRepo[*profile.Profile]
}

// NewProfileRepo creates a new profile repository.
func NewProfileRepo(txManager *postgres.TxManager) *ProfileRepo {
	return &ProfileRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			profileTable,
			postgres.ExtractDBColumns[profile.Profile](),
			func() *profile.Profile { return &profile.Profile{} },
		),
	}
}

// FindByDocument retrieves a profile by document type and number.
func (r *ProfileRepo) FindByDocument(ctx context.Context, docType profile.DocumentType, docNumber string) (*profile.Profile, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"document_type": docType}).
		Where(squirrel.Eq{"document_number": docNumber}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("profile", docNumber)
		}
		return nil, err
	}
	return item, nil
}

// FindByEmail retrieves a profile by email.
func (r *ProfileRepo) FindByEmail(ctx context.Context, email string) (*profile.Profile, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"email": email}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	item, err := r.FindOne(ctx, q)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("profile", email)
		}
		return nil, err
	}
	return item, nil
}

// ListByRole retrieves profiles carrying the given business role.
// business_roles is a text[] column; the containment operator keeps the
// query index-friendly with a GIN index on the column.
func (r *ProfileRepo) ListByRole(ctx context.Context, role profile.BusinessRole, filter domain.ListFilter) (domain.ListResult[*profile.Profile], error) {
	result := domain.ListResult[*profile.Profile]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Expr("business_roles @> ARRAY[?]::text[]", string(role))).
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

	var items []*profile.Profile
	if err := pgxscan.Select(ctx, r.Querier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("list by role: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}
