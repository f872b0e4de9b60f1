// Package returns provides the Return document: a quantity given back
// against a specific finalized transaction line, refunded at the line's
// historical price.
package returns

import (
	"context"
	"time"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain/documents/transaction"
)

// Reason enumerates why goods come back.
type Reason string

const (
	ReasonDefective       Reason = "defective"
	ReasonWrongItem       Reason = "wrong_item"
	ReasonExpired         Reason = "expired"
	ReasonCustomerRequest Reason = "customer_request"
	ReasonOther           Reason = "other"
)

// State is the lifecycle state of a return.
type State string

const (
	StatePending   State = "pending"
	StateProcessed State = "processed"
	StateCancelled State = "cancelled"
	StateRejected  State = "rejected"
)

// transitions maps each state to the states reachable from it.
// Everything except pending is terminal.
var transitions = map[State][]State{
	StatePending:   {StateProcessed, StateCancelled, StateRejected},
	StateProcessed: {},
	StateCancelled: {},
	StateRejected:  {},
}

// Return represents goods returned against a transaction line.
type Return struct {
	entity.Document

	// LineID is the transaction line being returned (deletion-protected)
	LineID id.ID `db:"line_id" json:"lineId"`

	// TransactionID and ProductID are denormalized from the line
	TransactionID id.ID `db:"transaction_id" json:"transactionId"`
	ProductID     id.ID `db:"product_id" json:"productId"`

	// Kind mirrors the original transaction kind
	Kind transaction.Kind `db:"kind" json:"kind"`

	// Reason the goods came back
	Reason Reason `db:"reason" json:"reason"`

	// State is the lifecycle state
	State State `db:"state" json:"state"`

	// Quantity being returned (positive, 3 decimal places)
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice is the historical price captured from the line: the
	// sale price for sale returns, the unit cost for purchase returns
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`

	// RefundAmount = UnitPrice x Quantity, fixed when processed
	RefundAmount types.Money `db:"refund_amount" json:"refundAmount"`

	// EmployeeID is the acting employee
	EmployeeID string `db:"employee_id" json:"employeeId"`

	// ProcessedAt is set when the return is processed
	ProcessedAt *time.Time `db:"processed_at" json:"processedAt,omitempty"`
}

// New creates a pending return against a line. A sale return refunds
// what the customer paid; a purchase return recovers what was paid to
// the supplier.
func New(branchID string, line *transaction.Line, kind transaction.Kind, qty types.Quantity, reason Reason, employeeID string) *Return {
	price := line.SalePrice
	if kind == transaction.KindPurchase {
		price = line.UnitCost
	}

	return &Return{
		Document:      entity.NewDocument(branchID),
		LineID:        line.LineID,
		TransactionID: line.TransactionID,
		ProductID:     line.ProductID,
		Kind:          kind,
		Reason:        reason,
		State:         StatePending,
		Quantity:      qty,
		UnitPrice:     price,
		RefundAmount:  types.Zero(),
		EmployeeID:    employeeID,
	}
}

// Validate implements entity.Validatable.
func (r *Return) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.LineID) {
		return apperror.NewValidation("line is required").
			WithDetail("field", "lineId")
	}

	if !isValidReason(r.Reason) {
		return apperror.NewValidation("invalid return reason").
			WithDetail("field", "reason").
			WithDetail("value", string(r.Reason))
	}

	if !isValidState(r.State) {
		return apperror.NewValidation("invalid return state").
			WithDetail("field", "state").
			WithDetail("value", string(r.State))
	}

	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if r.EmployeeID == "" {
		return apperror.NewValidation("employee is required").
			WithDetail("field", "employeeId")
	}

	return nil
}

// CanTransition reports whether the state machine allows moving to target.
func (r *Return) CanTransition(target State) bool {
	for _, s := range transitions[r.State] {
		if s == target {
			return true
		}
	}
	return false
}

// Transition moves the return to target or fails with InvalidState.
func (r *Return) Transition(target State) error {
	if !r.CanTransition(target) {
		return apperror.NewInvalidState("return", r.ID.String(), string(r.State), string(target))
	}
	r.State = target
	return nil
}

// CountsAgainstLine reports whether the return consumes returnable
// quantity of its line. Cancelled and rejected returns release it.
func (r *Return) CountsAgainstLine() bool {
	return r.State == StatePending || r.State == StateProcessed
}

// StockDirection returns the stock delta sign on process: returning a
// sale puts goods back, returning a purchase sends them out.
func (r *Return) StockDirection() int {
	if r.Kind == transaction.KindSale {
		return 1
	}
	return -1
}

func isValidReason(re Reason) bool {
	switch re {
	case ReasonDefective, ReasonWrongItem, ReasonExpired, ReasonCustomerRequest, ReasonOther:
		return true
	}
	return false
}

func isValidState(s State) bool {
	switch s {
	case StatePending, StateProcessed, StateCancelled, StateRejected:
		return true
	}
	return false
}
