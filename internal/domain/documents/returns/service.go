package returns

import (
	"context"
	"fmt"
	"time"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/audit"
	"comercio/internal/domain/documents/transaction"
	"comercio/pkg/logger"
	"comercio/pkg/numerator"
)

// Return numbers are per-branch accounting identifiers; like invoices
// they use the strict numerator strategy.
const NumeratorStrategy = numerator.StrategyStrict

// LedgerGateway is the slice of the transaction repository the
// processor needs: line and document reads.
type LedgerGateway interface {
	GetLine(ctx context.Context, lineID id.ID) (*transaction.Line, error)
	GetByID(ctx context.Context, docID id.ID) (*transaction.Transaction, error)
}

// StockAdjuster applies the inverse stock effect when a return is
// processed. Implemented by the product repository.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity, override bool) (types.Quantity, error)
}

// ProfileChecker verifies a profile exists and is active.
type ProfileChecker interface {
	CheckActive(ctx context.Context, profileID id.ID) error
}

// Service processes returns against finalized transaction lines.
type Service struct {
	repo      Repository
	ledger    LedgerGateway
	stock     StockAdjuster
	profiles  ProfileChecker
	numbers   numerator.Generator
	txManager tx.Manager
	auditor   audit.Recorder
}

// NewService creates a new return processor.
func NewService(
	repo Repository,
	ledger LedgerGateway,
	stock StockAdjuster,
	profiles ProfileChecker,
	numbers numerator.Generator,
	txManager tx.Manager,
	auditor audit.Recorder,
) *Service {
	if auditor == nil {
		auditor = audit.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		ledger:    ledger,
		stock:     stock,
		profiles:  profiles,
		numbers:   numbers,
		txManager: txManager,
		auditor:   auditor,
	}
}

// FileParams describes a new return.
type FileParams struct {
	LineID     id.ID
	Quantity   types.Quantity
	Reason     Reason
	EmployeeID string
	Comment    string
}

// File opens a pending return against a line. The owning transaction
// must be finalized, and the requested quantity must fit within the
// line quantity minus everything already pending or processed.
func (s *Service) File(ctx context.Context, params FileParams) (*Return, error) {
	line, err := s.ledger.GetLine(ctx, params.LineID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("transaction line", params.LineID.String())
		}
		return nil, err
	}

	doc, err := s.ledger.GetByID(ctx, line.TransactionID)
	if err != nil {
		return nil, err
	}
	if doc.State != transaction.StateFinalized {
		return nil, apperror.NewInvalidLineState(params.LineID.String(), string(doc.State))
	}

	employeeID, err := id.Parse(params.EmployeeID)
	if err != nil {
		return nil, apperror.NewValidation("invalid employee id").
			WithDetail("field", "employeeId")
	}
	if err := s.profiles.CheckActive(ctx, employeeID); err != nil {
		return nil, err
	}

	if !params.Quantity.IsPositive() {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	returned, err := s.repo.SumReturnedByLine(ctx, params.LineID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	remaining := line.Quantity.Sub(returned)
	if params.Quantity > remaining {
		return nil, apperror.NewOverReturn(params.LineID.String(), params.Quantity.String(), remaining.String())
	}

	ret := New(doc.BranchID, line, doc.Kind, params.Quantity, params.Reason, params.EmployeeID)
	ret.Comment = params.Comment
	ret.CreatedBy = params.EmployeeID

	if err := ret.Validate(ctx); err != nil {
		return nil, err
	}

	cfg := numerator.DefaultConfig("RET").WithScope(doc.BranchID)
	number, err := s.numbers.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return nil, fmt.Errorf("generate return number: %w", err)
	}
	ret.Number = number

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, ret.ID, audit.ActionCreate, map[string]any{
		"number":   ret.Number,
		"line_id":  ret.LineID.String(),
		"quantity": ret.Quantity.String(),
		"reason":   string(ret.Reason),
	})

	logger.Info(ctx, "return filed",
		"id", ret.ID, "number", ret.Number, "line_id", ret.LineID, "quantity", ret.Quantity.String())
	return ret, nil
}

// Process settles a pending return: the refund is fixed at the line's
// historical price times the returned quantity, and the inverse stock
// effect is applied, all in one database transaction. A sale return
// restocks the product; a purchase return destocks it and fails with
// InsufficientStock if the goods are no longer on hand.
func (s *Service) Process(ctx context.Context, retID id.ID) (*Return, error) {
	var ret *Return

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.repo.GetForUpdate(ctx, retID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("return", retID.String())
			}
			return err
		}

		if !ret.CanTransition(StateProcessed) {
			return apperror.NewInvalidState("return", ret.ID.String(), string(ret.State), string(StateProcessed))
		}

		delta := ret.Quantity
		if ret.StockDirection() < 0 {
			delta = delta.Neg()
		}
		if _, err := s.stock.AdjustStock(ctx, ret.ProductID, delta, false); err != nil {
			return err
		}

		ret.RefundAmount = types.RoundMoney(ret.UnitPrice.Mul(ret.Quantity.Decimal()))
		now := time.Now().UTC()
		ret.ProcessedAt = &now
		if err := ret.Transition(StateProcessed); err != nil {
			return err
		}

		return s.repo.Update(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, ret.ID, audit.ActionProcess, map[string]any{
		"number": ret.Number,
		"refund": ret.RefundAmount.String(),
	})

	logger.Info(ctx, "return processed",
		"id", ret.ID, "number", ret.Number, "refund", ret.RefundAmount.String())
	return ret, nil
}

// Reject declines a pending return. No stock effect; the quantity it
// held against the line is released.
func (s *Service) Reject(ctx context.Context, retID id.ID) (*Return, error) {
	return s.close(ctx, retID, StateRejected, audit.ActionReject)
}

// Cancel withdraws a pending return. No stock effect.
func (s *Service) Cancel(ctx context.Context, retID id.ID) (*Return, error) {
	return s.close(ctx, retID, StateCancelled, audit.ActionCancel)
}

func (s *Service) close(ctx context.Context, retID id.ID, target State, action audit.Action) (*Return, error) {
	var ret *Return

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.repo.GetForUpdate(ctx, retID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("return", retID.String())
			}
			return err
		}

		if err := ret.Transition(target); err != nil {
			return err
		}

		return s.repo.Update(ctx, ret)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, ret.ID, action, map[string]any{"number": ret.Number})
	return ret, nil
}

// GetByID retrieves a return.
func (s *Service) GetByID(ctx context.Context, retID id.ID) (*Return, error) {
	ret, err := s.repo.GetByID(ctx, retID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("return", retID.String())
		}
		return nil, err
	}
	return ret, nil
}

// List retrieves returns with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Return], error) {
	return s.repo.List(ctx, filter)
}

// ReturnableQuantity reports how much of a line can still be returned.
func (s *Service) ReturnableQuantity(ctx context.Context, lineID id.ID) (types.Quantity, error) {
	line, err := s.ledger.GetLine(ctx, lineID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return 0, apperror.NewNotFound("transaction line", lineID.String())
		}
		return 0, err
	}
	returned, err := s.repo.SumReturnedByLine(ctx, lineID)
	if err != nil {
		return 0, apperror.NewInternal(err)
	}
	return line.Quantity.Sub(returned), nil
}

func (s *Service) record(ctx context.Context, retID id.ID, action audit.Action, changes map[string]any) {
	if err := s.auditor.LogChange(ctx, "return", retID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity_id", retID.String(), "action", string(action), "error", err)
	}
}
