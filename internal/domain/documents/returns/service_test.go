package returns

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/documents/transaction"
	"comercio/pkg/numerator"
)

// --- Fakes ---

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	docs map[id.ID]*Return
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[id.ID]*Return)}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Return) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Return, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("return", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Return, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Return) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("return", doc.ID.String())
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) SumReturnedByLine(ctx context.Context, lineID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, doc := range r.docs {
		if doc.LineID == lineID && doc.CountsAgainstLine() {
			sum = sum.Add(doc.Quantity)
		}
	}
	return sum, nil
}

func (r *fakeRepo) CountByLine(ctx context.Context, lineID id.ID) (int64, error) {
	var n int64
	for _, doc := range r.docs {
		if doc.LineID == lineID {
			n++
		}
	}
	return n, nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Return], error) {
	out := make([]*Return, 0, len(r.docs))
	for _, doc := range r.docs {
		cp := *doc
		out = append(out, &cp)
	}
	return domain.ListResult[*Return]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeLedger struct {
	lines map[id.ID]*transaction.Line
	docs  map[id.ID]*transaction.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		lines: make(map[id.ID]*transaction.Line),
		docs:  make(map[id.ID]*transaction.Transaction),
	}
}

func (f *fakeLedger) GetLine(ctx context.Context, lineID id.ID) (*transaction.Line, error) {
	line, ok := f.lines[lineID]
	if !ok {
		return nil, apperror.NewNotFound("transaction line", lineID.String())
	}
	return line, nil
}

func (f *fakeLedger) GetByID(ctx context.Context, docID id.ID) (*transaction.Transaction, error) {
	doc, ok := f.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", docID.String())
	}
	return doc, nil
}

type fakeStock struct {
	levels      map[id.ID]types.Quantity
	adjustments []types.Quantity
}

func newFakeStock() *fakeStock {
	return &fakeStock{levels: make(map[id.ID]types.Quantity)}
}

func (f *fakeStock) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity, override bool) (types.Quantity, error) {
	next := f.levels[productID].Add(delta)
	if next.IsNegative() && !override {
		return 0, apperror.NewInsufficientStock(productID.String(), delta.Neg().String(), f.levels[productID].String())
	}
	f.levels[productID] = next
	f.adjustments = append(f.adjustments, delta)
	return next, nil
}

type fakeProfiles struct{ err error }

func (f fakeProfiles) CheckActive(ctx context.Context, profileID id.ID) error { return f.err }

func sequentialNumbers() *numerator.MockGenerator {
	var n int
	return &numerator.MockGenerator{
		GetNextNumberFunc: func(ctx context.Context, cfg numerator.Config, opts *numerator.Options, period time.Time) (string, error) {
			n++
			return fmt.Sprintf("%s-2024-%05d", cfg.Prefix, n), nil
		},
	}
}

type fixture struct {
	svc    *Service
	repo   *fakeRepo
	ledger *fakeLedger
	stock  *fakeStock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	ledger := newFakeLedger()
	stock := newFakeStock()
	svc := NewService(repo, ledger, stock, fakeProfiles{}, sequentialNumbers(), stubTxManager{}, nil)
	return &fixture{svc: svc, repo: repo, ledger: ledger, stock: stock}
}

// seedLine registers a finalized transaction with one line of the given
// kind, quantity 10 at sale price 13, and product stock as given.
func (f *fixture) seedLine(kind transaction.Kind, stock int64) *transaction.Line {
	productID := id.New()
	doc := transaction.New(kind, id.New().String(), id.New().String(), transaction.PaymentCash)
	doc.State = transaction.StateFinalized

	line := &transaction.Line{
		LineID:        id.New(),
		TransactionID: doc.ID,
		LineNo:        1,
		ProductID:     productID,
		Quantity:      types.NewQuantityFromInt(10),
		UnitCost:      types.MustMoney("10"),
		SalePrice:     types.MustMoney("13"),
		Total:         types.MustMoney("130"),
	}

	f.ledger.docs[doc.ID] = doc
	f.ledger.lines[line.LineID] = line
	f.stock.levels[productID] = types.NewQuantityFromInt(stock)
	return line
}

func fileParams(lineID id.ID, qty int64) FileParams {
	return FileParams{
		LineID:     lineID,
		Quantity:   types.NewQuantityFromInt(qty),
		Reason:     ReasonDefective,
		EmployeeID: id.New().String(),
	}
}

// --- Tests ---

func TestFileCreatesPendingReturn(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)

	ret, err := f.svc.File(context.Background(), fileParams(line.LineID, 3))
	require.NoError(t, err)

	assert.Equal(t, StatePending, ret.State)
	assert.Equal(t, "RET-2024-00001", ret.Number)
	assert.Equal(t, line.TransactionID, ret.TransactionID)
	assert.Equal(t, line.ProductID, ret.ProductID)
	assert.Equal(t, "13", ret.UnitPrice.String())
	assert.True(t, ret.RefundAmount.IsZero())

	// Filing alone does not touch stock.
	assert.Empty(t, f.stock.adjustments)
}

func TestFileOverReturn(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	_, err := f.svc.File(ctx, fileParams(line.LineID, 7))
	require.NoError(t, err)

	// 7 of 10 already pending; 4 more does not fit.
	_, err = f.svc.File(ctx, fileParams(line.LineID, 4))
	assert.True(t, apperror.HasCode(err, apperror.CodeOverReturn), "got %v", err)

	// Exactly the remainder still fits.
	_, err = f.svc.File(ctx, fileParams(line.LineID, 3))
	require.NoError(t, err)
}

func TestFileAgainstNonFinalizedTransaction(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	f.ledger.docs[line.TransactionID].State = transaction.StateInProgress

	_, err := f.svc.File(context.Background(), fileParams(line.LineID, 1))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidLineState), "got %v", err)
}

func TestFileValidation(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	t.Run("unknown line", func(t *testing.T) {
		_, err := f.svc.File(ctx, fileParams(id.New(), 1))
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		params := fileParams(line.LineID, 1)
		params.Quantity = 0
		_, err := f.svc.File(ctx, params)
		assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
	})

	t.Run("inactive employee", func(t *testing.T) {
		f.svc.profiles = fakeProfiles{err: apperror.NewBusinessRule(apperror.CodeBusinessRule, "profile is not active")}
		defer func() { f.svc.profiles = fakeProfiles{} }()
		_, err := f.svc.File(ctx, fileParams(line.LineID, 1))
		assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)
	})
}

func TestProcessSaleReturnRestocks(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 4))
	require.NoError(t, err)

	ret, err = f.svc.Process(ctx, ret.ID)
	require.NoError(t, err)

	assert.Equal(t, StateProcessed, ret.State)
	require.NotNil(t, ret.ProcessedAt)
	// Refund at the historical price: 13 * 4 = 52.
	assert.Equal(t, "52", ret.RefundAmount.String())
	// Goods come back on a sale return.
	assert.Equal(t, types.NewQuantityFromInt(54), f.stock.levels[line.ProductID])
}

func TestProcessPurchaseReturnDestocks(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindPurchase, 50)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 4))
	require.NoError(t, err)
	// A purchase return recovers the supplier cost, not the sale price.
	assert.Equal(t, "10", ret.UnitPrice.String())

	ret, err = f.svc.Process(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, "40", ret.RefundAmount.String())
	assert.Equal(t, types.NewQuantityFromInt(46), f.stock.levels[line.ProductID])
}

func TestProcessPurchaseReturnInsufficientStock(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindPurchase, 2)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 5))
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, ret.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock), "got %v", err)
}

func TestProcessTwiceFails(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 1))
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, ret.ID)
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, ret.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestRejectReleasesReturnableQuantity(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 6))
	require.NoError(t, err)

	remaining, err := f.svc.ReturnableQuantity(ctx, line.LineID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(4), remaining)

	ret, err = f.svc.Reject(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRejected, ret.State)
	assert.Empty(t, f.stock.adjustments)

	remaining, err = f.svc.ReturnableQuantity(ctx, line.LineID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), remaining)
}

func TestCancelPendingReturn(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 2))
	require.NoError(t, err)

	ret, err = f.svc.Cancel(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, ret.State)
	assert.Empty(t, f.stock.adjustments)

	// Terminal: cannot process a cancelled return.
	_, err = f.svc.Process(ctx, ret.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestReturnableQuantityCountsProcessed(t *testing.T) {
	f := newFixture(t)
	line := f.seedLine(transaction.KindSale, 50)
	ctx := context.Background()

	ret, err := f.svc.File(ctx, fileParams(line.LineID, 3))
	require.NoError(t, err)
	_, err = f.svc.Process(ctx, ret.ID)
	require.NoError(t, err)

	remaining, err := f.svc.ReturnableQuantity(ctx, line.LineID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(7), remaining)
}
