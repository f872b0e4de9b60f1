package returns

import (
	"context"
	"time"

	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/documents/transaction"
)

// Repository defines operations for return documents.
type Repository interface {
	Create(ctx context.Context, doc *Return) error
	GetByID(ctx context.Context, docID id.ID) (*Return, error)

	// GetForUpdate retrieves the document row with FOR UPDATE,
	// serializing concurrent process/cancel on the same return.
	GetForUpdate(ctx context.Context, docID id.ID) (*Return, error)

	Update(ctx context.Context, doc *Return) error

	// SumReturnedByLine sums quantities of returns that count against
	// the line (pending and processed states).
	SumReturnedByLine(ctx context.Context, lineID id.ID) (types.Quantity, error)

	// CountByLine counts live returns referencing a line, any state.
	// Backs the line-removal protection.
	CountByLine(ctx context.Context, lineID id.ID) (int64, error)

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Return], error)
}

// ListFilter for filtering returns.
type ListFilter struct {
	domain.ListFilter

	BranchID      *string
	State         *State
	Reason        *Reason
	Kind          *transaction.Kind
	TransactionID *id.ID
	LineID        *id.ID
	EmployeeID    *string
	DateFrom      *time.Time
	DateTo        *time.Time
}
