// Package transaction provides the Transaction document: a purchase or
// sale with line items, a draft-to-finalized lifecycle, and atomic
// stock effects on finalize.
package transaction

import (
	"context"
	"time"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
)

// Kind distinguishes purchases from sales.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

// State is the lifecycle state of a transaction.
type State string

const (
	StateDraft      State = "draft"
	StateInProgress State = "in_progress"
	StateFinalized  State = "finalized"
	StateCancelled  State = "cancelled"
	StateVoided     State = "voided"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCredit   PaymentMethod = "credit"
)

// transitions maps each state to the states reachable from it.
// Finalized is left only through void; cancelled and voided are terminal.
var transitions = map[State][]State{
	StateDraft:      {StateInProgress, StateFinalized, StateCancelled},
	StateInProgress: {StateFinalized, StateCancelled},
	StateFinalized:  {StateVoided},
	StateCancelled:  {},
	StateVoided:     {},
}

// Transaction represents a purchase or sale document.
type Transaction struct {
	entity.Document

	// InvoiceNumber is unique within (branch, kind)
	InvoiceNumber string `db:"invoice_number" json:"invoiceNumber"`

	// Kind is sale or purchase
	Kind Kind `db:"kind" json:"kind"`

	// State is the lifecycle state
	State State `db:"state" json:"state"`

	// SupplierID is set for purchases, CustomerID for sales
	SupplierID *string `db:"supplier_id" json:"supplierId,omitempty"`
	CustomerID *string `db:"customer_id" json:"customerId,omitempty"`

	// EmployeeID is the acting employee
	EmployeeID string `db:"employee_id" json:"employeeId"`

	// PaymentMethod used for settlement
	PaymentMethod PaymentMethod `db:"payment_method" json:"paymentMethod"`

	// Monetary totals. BaseValue is the sum of line totals; Total is
	// base minus discount, computed on finalize.
	BaseValue types.Money `db:"base_value" json:"baseValue"`
	Discount  types.Money `db:"discount" json:"discount"`
	Total     types.Money `db:"total" json:"total"`

	// FinalizedAt is set when the document is finalized
	FinalizedAt *time.Time `db:"finalized_at" json:"finalizedAt,omitempty"`

	// Table part: lines
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a transaction line.
type Line struct {
	LineID        id.ID          `db:"line_id" json:"lineId"`
	TransactionID id.ID          `db:"transaction_id" json:"transactionId"`
	LineNo        int            `db:"line_no" json:"lineNo"`
	ProductID     id.ID          `db:"product_id" json:"productId"`
	Batch         *string        `db:"batch" json:"batch,omitempty"`
	ExpiryDate    *time.Time     `db:"expiry_date" json:"expiryDate,omitempty"`
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	UnitCost      types.Money    `db:"unit_cost" json:"unitCost"`
	SalePrice     types.Money    `db:"sale_price" json:"salePrice"`
	Total         types.Money    `db:"total" json:"total"`
}

// New creates a draft transaction.
func New(kind Kind, branchID, employeeID string, payment PaymentMethod) *Transaction {
	return &Transaction{
		Document:      entity.NewDocument(branchID),
		Kind:          kind,
		State:         StateDraft,
		EmployeeID:    employeeID,
		PaymentMethod: payment,
		BaseValue:     types.Zero(),
		Discount:      types.Zero(),
		Total:         types.Zero(),
		Lines:         make([]Line, 0),
	}
}

// Validate implements entity.Validatable.
func (t *Transaction) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(t.Kind) {
		return apperror.NewValidation("invalid transaction kind").
			WithDetail("field", "kind").
			WithDetail("value", string(t.Kind))
	}

	if !isValidState(t.State) {
		return apperror.NewValidation("invalid transaction state").
			WithDetail("field", "state").
			WithDetail("value", string(t.State))
	}

	if !isValidPaymentMethod(t.PaymentMethod) {
		return apperror.NewValidation("invalid payment method").
			WithDetail("field", "paymentMethod").
			WithDetail("value", string(t.PaymentMethod))
	}

	if t.EmployeeID == "" {
		return apperror.NewValidation("employee is required").
			WithDetail("field", "employeeId")
	}

	// Party is keyed by kind: sales bill a customer, purchases a supplier.
	switch t.Kind {
	case KindSale:
		if t.CustomerID == nil || *t.CustomerID == "" {
			return apperror.NewValidation("customer is required for sales").
				WithDetail("field", "customerId")
		}
		if t.SupplierID != nil && *t.SupplierID != "" {
			return apperror.NewValidation("sales cannot reference a supplier").
				WithDetail("field", "supplierId")
		}
	case KindPurchase:
		if t.SupplierID == nil || *t.SupplierID == "" {
			return apperror.NewValidation("supplier is required for purchases").
				WithDetail("field", "supplierId")
		}
		if t.CustomerID != nil && *t.CustomerID != "" {
			return apperror.NewValidation("purchases cannot reference a customer").
				WithDetail("field", "customerId")
		}
	}

	if t.Discount.IsNegative() {
		return apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discount")
	}

	return nil
}

// CanTransition reports whether the state machine allows moving to target.
func (t *Transaction) CanTransition(target State) bool {
	for _, s := range transitions[t.State] {
		if s == target {
			return true
		}
	}
	return false
}

// Transition moves the transaction to target or fails with InvalidState.
func (t *Transaction) Transition(target State) error {
	if !t.CanTransition(target) {
		return apperror.NewInvalidState("transaction", t.ID.String(), string(t.State), string(target))
	}
	t.State = target
	return nil
}

// IsMutable reports whether lines and discount may still change.
func (t *Transaction) IsMutable() bool {
	return t.State == StateDraft || t.State == StateInProgress
}

// IsTerminal reports whether no further transition is possible.
func (t *Transaction) IsTerminal() bool {
	return len(transitions[t.State]) == 0
}

// AddLine appends a line and recalculates the base value.
// Line total = quantity x sale price, rounded to 2 decimal places.
func (t *Transaction) AddLine(productID id.ID, qty types.Quantity, unitCost, salePrice types.Money, batch *string, expiry *time.Time) (*Line, error) {
	if !t.IsMutable() {
		return nil, apperror.NewInvalidState("transaction", t.ID.String(), string(t.State), "add_line")
	}
	if !qty.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if unitCost.IsNegative() {
		return nil, apperror.NewValidation("unit cost cannot be negative").
			WithDetail("field", "unitCost")
	}

	line := Line{
		LineID:        id.New(),
		TransactionID: t.ID,
		LineNo:        len(t.Lines) + 1,
		ProductID:     productID,
		Batch:         batch,
		ExpiryDate:    expiry,
		Quantity:      qty,
		UnitCost:      unitCost,
		SalePrice:     salePrice,
		Total:         types.RoundMoney(salePrice.Mul(qty.Decimal())),
	}

	t.Lines = append(t.Lines, line)
	t.recalculateTotals()

	return &t.Lines[len(t.Lines)-1], nil
}

// RemoveLine deletes a line by id and renumbers the rest.
func (t *Transaction) RemoveLine(lineID id.ID) error {
	if !t.IsMutable() {
		return apperror.NewInvalidState("transaction", t.ID.String(), string(t.State), "remove_line")
	}

	idx := -1
	for i, line := range t.Lines {
		if line.LineID == lineID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperror.NewNotFound("transaction line", lineID.String())
	}

	t.Lines = append(t.Lines[:idx], t.Lines[idx+1:]...)
	for i := range t.Lines {
		t.Lines[i].LineNo = i + 1
	}
	t.recalculateTotals()

	return nil
}

// FindLine returns the line with the given id.
func (t *Transaction) FindLine(lineID id.ID) (*Line, bool) {
	for i := range t.Lines {
		if t.Lines[i].LineID == lineID {
			return &t.Lines[i], true
		}
	}
	return nil, false
}

// recalculateTotals recomputes BaseValue from lines. Total stays at the
// running base minus discount; Finalize fixes the definitive value.
func (t *Transaction) recalculateTotals() {
	base := types.Zero()
	for _, line := range t.Lines {
		base = base.Add(line.Total)
	}
	t.BaseValue = base
	t.Total = t.computeTotal()
}

// computeTotal returns base minus discount, floored at zero.
func (t *Transaction) computeTotal() types.Money {
	total := t.BaseValue.Sub(t.Discount)
	if total.IsNegative() {
		return types.Zero()
	}
	return types.RoundMoney(total)
}

// StockDirection returns the per-line stock delta sign on finalize:
// sales consume stock, purchases replenish it.
func (t *Transaction) StockDirection() int {
	if t.Kind == KindSale {
		return -1
	}
	return 1
}

func isValidKind(k Kind) bool {
	switch k {
	case KindSale, KindPurchase:
		return true
	}
	return false
}

func isValidState(s State) bool {
	switch s {
	case StateDraft, StateInProgress, StateFinalized, StateCancelled, StateVoided:
		return true
	}
	return false
}

func isValidPaymentMethod(p PaymentMethod) bool {
	switch p {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}
