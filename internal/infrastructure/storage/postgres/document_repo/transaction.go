package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain"
	"comercio/internal/domain/documents/transaction"
	"comercio/internal/infrastructure/storage/postgres"
)

const (
	transactionsTable     = "doc_transactions"
	transactionLinesTable = "doc_transaction_lines"
)

// TransactionRepo implements transaction.Repository.
type TransactionRepo struct {
	*BaseDocumentRepo[*transaction.Transaction]
}

// NewTransactionRepo creates a new transaction repository.
func NewTransactionRepo(txManager *postgres.TxManager) *TransactionRepo {
	return &TransactionRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			transactionsTable,
			postgres.ExtractDBColumns[transaction.Transaction](),
			func() *transaction.Transaction { return &transaction.Transaction{} },
		),
	}
}

// FindByInvoice retrieves a transaction by its (branch, invoice, kind)
// unique key.
func (r *TransactionRepo) FindByInvoice(ctx context.Context, branchID, invoiceNumber string, kind transaction.Kind) (*transaction.Transaction, error) {
	doc := &transaction.Transaction{}

	q := r.baseSelect().
		Where(squirrel.Eq{"branch_id": branchID}).
		Where(squirrel.Eq{"invoice_number": invoiceNumber}).
		Where(squirrel.Eq{"kind": kind}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction", invoiceNumber)
		}
		return nil, fmt.Errorf("find by invoice: %w", err)
	}

	return doc, nil
}

// GetLines retrieves all lines of a transaction ordered by line number.
func (r *TransactionRepo) GetLines(ctx context.Context, docID id.ID) ([]transaction.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "transaction_id", "line_no", "product_id",
			"batch", "expiry_date", "quantity", "unit_cost", "sale_price", "total",
		).
		From(transactionLinesTable).
		Where(squirrel.Eq{"transaction_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []transaction.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines replaces the table part of a transaction.
func (r *TransactionRepo) SaveLines(ctx context.Context, docID id.ID, lines []transaction.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + transactionLinesTable + " WHERE transaction_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(transactionLinesTable).
		Columns(
			"line_id", "transaction_id", "line_no", "product_id",
			"batch", "expiry_date", "quantity", "unit_cost", "sale_price", "total",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.ProductID,
			line.Batch, line.ExpiryDate, line.Quantity, line.UnitCost, line.SalePrice, line.Total,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetLine retrieves a single line by id.
func (r *TransactionRepo) GetLine(ctx context.Context, lineID id.ID) (*transaction.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "transaction_id", "line_no", "product_id",
			"batch", "expiry_date", "quantity", "unit_cost", "sale_price", "total",
		).
		From(transactionLinesTable).
		Where(squirrel.Eq{"line_id": lineID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	line := &transaction.Line{}
	if err := pgxscan.Get(ctx, r.Querier(ctx), line, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("transaction line", lineID.String())
		}
		return nil, fmt.Errorf("get line: %w", err)
	}

	return line, nil
}

// CountByProduct counts lines referencing a product across all transactions.
func (r *TransactionRepo) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	q := r.Builder().
		Select("COUNT(*)").
		From(transactionLinesTable).
		Where(squirrel.Eq{"product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int64
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by product: %w", err)
	}

	return count, nil
}

// List retrieves transactions with document-specific filtering.
func (r *TransactionRepo) List(ctx context.Context, filter transaction.ListFilter) (domain.ListResult[*transaction.Transaction], error) {
	result := domain.ListResult[*transaction.Transaction]{
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

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.State != nil {
		q = q.Where(squirrel.Eq{"state": *filter.State})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
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
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"invoice_number": searchPattern},
		})
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
