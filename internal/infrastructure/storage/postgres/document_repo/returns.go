package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/documents/returns"
	"comercio/internal/infrastructure/storage/postgres"
)

const returnsTable = "doc_returns"

// ReturnRepo implements returns.Repository.
type ReturnRepo struct {
	*BaseDocumentRepo[*returns.Return]
}

// NewReturnRepo creates a new return repository.
func NewReturnRepo(txManager *postgres.TxManager) *ReturnRepo {
	return &ReturnRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			returnsTable,
			postgres.ExtractDBColumns[returns.Return](),
			func() *returns.Return { return &returns.Return{} },
		),
	}
}

// SumReturnedByLine sums quantities of returns that count against the
// line. Pending and processed returns reserve line quantity; cancelled
// and rejected ones release it.
func (r *ReturnRepo) SumReturnedByLine(ctx context.Context, lineID id.ID) (types.Quantity, error) {
	q := r.Builder().
		Select("COALESCE(SUM(quantity), 0)").
		From(returnsTable).
		Where(squirrel.Eq{"line_id": lineID}).
		Where(squirrel.Eq{"state": []returns.State{returns.StatePending, returns.StateProcessed}}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var sum int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum returned by line: %w", err)
	}

	return types.Quantity(sum), nil
}

// CountByLine counts live returns referencing a line, any state.
func (r *ReturnRepo) CountByLine(ctx context.Context, lineID id.ID) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(returnsTable).
		Where(squirrel.Eq{"line_id": lineID}).
		Where(squirrel.Eq{"deletion_mark": false})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by line: %w", err)
	}

	return count, nil
}

// List retrieves returns with document-specific filtering.
func (r *ReturnRepo) List(ctx context.Context, filter returns.ListFilter) (domain.ListResult[*returns.Return], error) {
	result := domain.ListResult[*returns.Return]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}

	if filter.State != nil {
		q = q.Where(squirrel.Eq{"state": *filter.State})
	}

	if filter.Reason != nil {
		q = q.Where(squirrel.Eq{"reason": *filter.Reason})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.TransactionID != nil {
		q = q.Where(squirrel.Eq{"transaction_id": *filter.TransactionID})
	}

	if filter.LineID != nil {
		q = q.Where(squirrel.Eq{"line_id": *filter.LineID})
	}

	if filter.EmployeeID != nil {
		q = q.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countQ := r.Builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy)

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

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("select: %w", err)
	}

	return result, nil
}
