package transaction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/audit"
	"comercio/internal/domain/catalogs/product"
	"comercio/internal/domain/pricing"
	"comercio/pkg/logger"
)

// ProductGateway is the slice of the product repository the ledger
// needs: reads and atomic stock adjustment. Stock calls run inside the
// ledger's own transaction.
type ProductGateway interface {
	GetByID(ctx context.Context, productID id.ID, includeDeleted bool) (*product.Product, error)
	AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity, override bool) (types.Quantity, error)
}

// BranchChecker verifies a branch exists.
type BranchChecker interface {
	Exists(ctx context.Context, branchID id.ID) (bool, error)
}

// ProfileChecker verifies a profile exists and is active.
type ProfileChecker interface {
	CheckActive(ctx context.Context, profileID id.ID) error
}

// ReturnCounter counts returns filed against a line. Implemented by the
// returns repository; guards line removal.
type ReturnCounter interface {
	CountByLine(ctx context.Context, lineID id.ID) (int64, error)
}

// NumberGenerator assigns invoice numbers when the caller supplies none.
type NumberGenerator interface {
	NextInvoiceNumber(ctx context.Context, kind Kind, branchID string) (string, error)
}

// Service provides the transaction ledger operations.
type Service struct {
	repo      Repository
	products  ProductGateway
	branches  BranchChecker
	profiles  ProfileChecker
	returns   ReturnCounter
	pricing   pricing.Policy
	numbers   NumberGenerator
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new transaction ledger service.
// returns may be nil during partial wiring; auditor may be the nop recorder.
func NewService(
	repo Repository,
	products ProductGateway,
	branches BranchChecker,
	profiles ProfileChecker,
	returns ReturnCounter,
	pricingPolicy pricing.Policy,
	numbers NumberGenerator,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	if auditor == nil {
		auditor = audit.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		products:  products,
		branches:  branches,
		profiles:  profiles,
		returns:   returns,
		pricing:   pricingPolicy,
		numbers:   numbers,
		txManager: txManager,
		auditor:   auditor,
	}
}

// OpenParams describes a new draft transaction.
type OpenParams struct {
	Kind          Kind
	BranchID      string
	CustomerID    *string
	SupplierID    *string
	EmployeeID    string
	PaymentMethod PaymentMethod
	InvoiceNumber string // optional, auto-assigned when empty
	Comment       string
}

// Open creates a draft transaction.
func (s *Service) Open(ctx context.Context, params OpenParams) (*Transaction, error) {
	doc := New(params.Kind, params.BranchID, params.EmployeeID, params.PaymentMethod)
	doc.CustomerID = params.CustomerID
	doc.SupplierID = params.SupplierID
	doc.InvoiceNumber = params.InvoiceNumber
	doc.Comment = params.Comment
	doc.CreatedBy = params.EmployeeID

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, doc); err != nil {
		return nil, err
	}

	if doc.InvoiceNumber == "" {
		number, err := s.numbers.NextInvoiceNumber(ctx, doc.Kind, doc.BranchID)
		if err != nil {
			return nil, fmt.Errorf("generate invoice number: %w", err)
		}
		doc.InvoiceNumber = number
	}

	if existing, err := s.repo.FindByInvoice(ctx, doc.BranchID, doc.InvoiceNumber, doc.Kind); err == nil && existing != nil {
		return nil, apperror.NewDuplicate("transaction", "invoiceNumber", doc.InvoiceNumber).
			WithDetail("branchId", doc.BranchID).
			WithDetail("kind", string(doc.Kind))
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, doc.ID, audit.ActionCreate, map[string]any{
		"invoice_number": doc.InvoiceNumber,
		"kind":           string(doc.Kind),
		"branch_id":      doc.BranchID,
	})

	logger.Info(ctx, "transaction opened",
		"id", doc.ID, "invoice", doc.InvoiceNumber, "kind", string(doc.Kind))
	return doc, nil
}

// checkReferences validates branch, employee, and party references.
func (s *Service) checkReferences(ctx context.Context, doc *Transaction) error {
	branchID, err := id.Parse(doc.BranchID)
	if err != nil {
		return apperror.NewValidation("invalid branch id").WithDetail("field", "branchId")
	}
	exists, err := s.branches.Exists(ctx, branchID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !exists {
		return apperror.NewNotFound("branch", doc.BranchID)
	}

	employeeID, err := id.Parse(doc.EmployeeID)
	if err != nil {
		return apperror.NewValidation("invalid employee id").WithDetail("field", "employeeId")
	}
	if err := s.profiles.CheckActive(ctx, employeeID); err != nil {
		return err
	}

	var party *string
	if doc.Kind == KindSale {
		party = doc.CustomerID
	} else {
		party = doc.SupplierID
	}
	partyID, err := id.Parse(*party)
	if err != nil {
		return apperror.NewValidation("invalid party id").WithDetail("field", "party")
	}
	return s.profiles.CheckActive(ctx, partyID)
}

// GetByID retrieves a transaction with its lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Transaction, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("transaction", docID.String())
		}
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// AddLineParams describes a new line.
type AddLineParams struct {
	ProductID  id.ID
	Quantity   types.Quantity
	UnitCost   types.Money
	Batch      *string
	ExpiryDate *time.Time
}

// AddLine appends a line to a mutable transaction. The sale price comes
// from the pricing policy; the first line moves a draft to in_progress.
func (s *Service) AddLine(ctx context.Context, docID id.ID, params AddLineParams) (*Transaction, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if !doc.IsMutable() {
		return nil, apperror.NewInvalidState("transaction", doc.ID.String(), string(doc.State), "add_line")
	}

	prod, err := s.products.GetByID(ctx, params.ProductID, false)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", params.ProductID.String())
		}
		return nil, err
	}
	if !prod.IsSellable() {
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule, "product is not sellable").
			WithDetail("product_id", prod.ID.String()).
			WithDetail("state", string(prod.State))
	}

	salePrice, err := s.pricing.SalePrice(ctx, prod, params.UnitCost)
	if err != nil {
		return nil, err
	}

	if _, err := doc.AddLine(params.ProductID, params.Quantity, params.UnitCost, salePrice, params.Batch, params.ExpiryDate); err != nil {
		return nil, err
	}

	// First line starts the work
	if doc.State == StateDraft {
		if err := doc.Transition(StateInProgress); err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// RemoveLine removes a line from a mutable transaction. Blocked while a
// return references the line.
func (s *Service) RemoveLine(ctx context.Context, docID, lineID id.ID) (*Transaction, error) {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if s.returns != nil {
		count, err := s.returns.CountByLine(ctx, lineID)
		if err != nil {
			return nil, apperror.NewInternal(err)
		}
		if count > 0 {
			return nil, apperror.NewProtectedReference("transaction line", lineID.String(), "returns")
		}
	}

	if err := doc.RemoveLine(lineID); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// SetDiscount sets the discount on a mutable transaction.
func (s *Service) SetDiscount(ctx context.Context, docID id.ID, discount types.Money) (*Transaction, error) {
	if discount.IsNegative() {
		return nil, apperror.NewValidation("discount cannot be negative").
			WithDetail("field", "discount")
	}

	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if !doc.IsMutable() {
		return nil, apperror.NewInvalidState("transaction", doc.ID.String(), string(doc.State), "set_discount")
	}

	doc.Discount = discount
	doc.Total = doc.computeTotal()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// Finalize seals the transaction and applies its stock effects in one
// database transaction: sales decrement product stock, purchases
// increment it. The document row is locked FOR UPDATE so a concurrent
// finalize of the same document sees the already-changed state; product
// rows are adjusted in sorted id order to avoid deadlocks between
// documents sharing products. Any insufficient stock rolls everything
// back.
func (s *Service) Finalize(ctx context.Context, docID id.ID) (*Transaction, error) {
	var doc *Transaction

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("transaction", docID.String())
			}
			return err
		}

		if !doc.CanTransition(StateFinalized) {
			return apperror.NewInvalidState("transaction", doc.ID.String(), string(doc.State), string(StateFinalized))
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		if len(doc.Lines) == 0 {
			return apperror.NewEmptyTransaction(doc.ID.String())
		}

		if err := s.applyStockEffects(ctx, doc, doc.StockDirection()); err != nil {
			return err
		}

		doc.recalculateTotals()
		now := time.Now().UTC()
		doc.FinalizedAt = &now
		if err := doc.Transition(StateFinalized); err != nil {
			return err
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, doc.ID, audit.ActionFinalize, map[string]any{
		"invoice_number": doc.InvoiceNumber,
		"total":          doc.Total.String(),
		"lines":          len(doc.Lines),
	})

	logger.Info(ctx, "transaction finalized",
		"id", doc.ID, "invoice", doc.InvoiceNumber, "total", doc.Total.String())
	return doc, nil
}

// Cancel discards a pre-final transaction. No stock effects.
func (s *Service) Cancel(ctx context.Context, docID id.ID) (*Transaction, error) {
	var doc *Transaction

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("transaction", docID.String())
			}
			return err
		}

		if err := doc.Transition(StateCancelled); err != nil {
			return err
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, doc.ID, audit.ActionCancel, map[string]any{
		"invoice_number": doc.InvoiceNumber,
	})

	return doc, nil
}

// Void reverses a finalized transaction: the finalize-time stock
// adjustment is applied in the opposite direction, atomically with the
// state change. Voiding a sale restocks; voiding a purchase destocks
// and fails if the goods are already gone.
func (s *Service) Void(ctx context.Context, docID id.ID) (*Transaction, error) {
	var doc *Transaction

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		doc, err = s.repo.GetForUpdate(ctx, docID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("transaction", docID.String())
			}
			return err
		}

		if !doc.CanTransition(StateVoided) {
			return apperror.NewInvalidState("transaction", doc.ID.String(), string(doc.State), string(StateVoided))
		}

		lines, err := s.repo.GetLines(ctx, docID)
		if err != nil {
			return fmt.Errorf("get lines: %w", err)
		}
		doc.Lines = lines

		if err := s.applyStockEffects(ctx, doc, -doc.StockDirection()); err != nil {
			return err
		}

		if err := doc.Transition(StateVoided); err != nil {
			return err
		}

		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, doc.ID, audit.ActionVoid, map[string]any{
		"invoice_number": doc.InvoiceNumber,
	})

	logger.Info(ctx, "transaction voided", "id", doc.ID, "invoice", doc.InvoiceNumber)
	return doc, nil
}

// applyStockEffects adjusts product stock for every line, aggregated
// per product and ordered by product id so concurrent documents lock
// rows in the same order.
func (s *Service) applyStockEffects(ctx context.Context, doc *Transaction, direction int) error {
	deltas := make(map[id.ID]types.Quantity, len(doc.Lines))
	for _, line := range doc.Lines {
		delta := line.Quantity
		if direction < 0 {
			delta = delta.Neg()
		}
		deltas[line.ProductID] = deltas[line.ProductID].Add(delta)
	}

	ids := make([]id.ID, 0, len(deltas))
	for productID := range deltas {
		ids = append(ids, productID)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})

	for _, productID := range ids {
		if _, err := s.products.AdjustStock(ctx, productID, deltas[productID], false); err != nil {
			return err
		}
	}
	return nil
}

// List retrieves transactions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) record(ctx context.Context, docID id.ID, action audit.Action, changes map[string]any) {
	if err := s.auditor.LogChange(ctx, "transaction", docID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity_id", docID.String(), "action", string(action), "error", err)
	}
}
