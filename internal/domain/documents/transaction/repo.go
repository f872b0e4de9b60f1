package transaction

import (
	"context"
	"time"

	"comercio/internal/core/id"
	"comercio/internal/domain"
)

// Repository defines operations for transaction documents.
type Repository interface {
	Create(ctx context.Context, doc *Transaction) error
	GetByID(ctx context.Context, docID id.ID) (*Transaction, error)

	// GetForUpdate retrieves the document row with FOR UPDATE, serializing
	// concurrent finalize/void on the same document.
	GetForUpdate(ctx context.Context, docID id.ID) (*Transaction, error)

	// FindByInvoice retrieves a transaction by its (branch, invoice, kind)
	// unique key.
	FindByInvoice(ctx context.Context, branchID, invoiceNumber string, kind Kind) (*Transaction, error)

	Update(ctx context.Context, doc *Transaction) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	// GetLine retrieves a single line with its owning transaction id.
	GetLine(ctx context.Context, lineID id.ID) (*Line, error)

	// CountByProduct counts lines referencing a product across all
	// transactions. Used by the product catalog's deletion guard.
	CountByProduct(ctx context.Context, productID id.ID) (int64, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error)
}

// ListFilter for filtering transactions.
type ListFilter struct {
	domain.ListFilter

	BranchID   *string
	Kind       *Kind
	State      *State
	CustomerID *string
	SupplierID *string
	EmployeeID *string
	DateFrom   *time.Time
	DateTo     *time.Time
}
