package transaction

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/catalogs/product"
	"comercio/internal/domain/pricing"
)

// --- Fakes ---

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// rollbackTxManager snapshots product stocks before the callback and
// restores them when it fails, mimicking a database rollback.
type rollbackTxManager struct{ products *fakeProducts }

func (m rollbackTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	saved := make(map[id.ID]types.Quantity, len(m.products.items))
	for pid, p := range m.products.items {
		saved[pid] = p.Stock
	}

	if err := fn(ctx); err != nil {
		for pid, stock := range saved {
			m.products.items[pid].Stock = stock
		}
		return err
	}
	return nil
}

type fakeRepo struct {
	docs  map[id.ID]*Transaction
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*Transaction),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *Transaction) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, docID id.ID) (*Transaction, error) {
	doc, ok := r.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("transaction", docID.String())
	}
	cp := *doc
	return &cp, nil
}

func (r *fakeRepo) GetForUpdate(ctx context.Context, docID id.ID) (*Transaction, error) {
	return r.GetByID(ctx, docID)
}

func (r *fakeRepo) FindByInvoice(ctx context.Context, branchID, invoiceNumber string, kind Kind) (*Transaction, error) {
	for _, doc := range r.docs {
		if doc.BranchID == branchID && doc.InvoiceNumber == invoiceNumber && doc.Kind == kind {
			cp := *doc
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("transaction", invoiceNumber)
}

func (r *fakeRepo) Update(ctx context.Context, doc *Transaction) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("transaction", doc.ID.String())
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return append([]Line(nil), r.lines[docID]...), nil
}

func (r *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = append([]Line(nil), lines...)
	return nil
}

func (r *fakeRepo) GetLine(ctx context.Context, lineID id.ID) (*Line, error) {
	for _, lines := range r.lines {
		for _, line := range lines {
			if line.LineID == lineID {
				cp := line
				return &cp, nil
			}
		}
	}
	return nil, apperror.NewNotFound("transaction line", lineID.String())
}

func (r *fakeRepo) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	var n int64
	for _, lines := range r.lines {
		for _, line := range lines {
			if line.ProductID == productID {
				n++
			}
		}
	}
	return n, nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Transaction], error) {
	out := make([]*Transaction, 0, len(r.docs))
	for _, doc := range r.docs {
		cp := *doc
		out = append(out, &cp)
	}
	return domain.ListResult[*Transaction]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeProducts struct {
	items       map[id.ID]*product.Product
	adjustOrder []id.ID
	adjustments map[id.ID]types.Quantity
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		items:       make(map[id.ID]*product.Product),
		adjustments: make(map[id.ID]types.Quantity),
	}
}

func (f *fakeProducts) add(p *product.Product) *fakeProducts {
	f.items[p.ID] = p
	return f
}

func (f *fakeProducts) GetByID(ctx context.Context, productID id.ID, includeDeleted bool) (*product.Product, error) {
	p, ok := f.items[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (f *fakeProducts) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity, override bool) (types.Quantity, error) {
	p, ok := f.items[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID.String())
	}
	next := p.Stock.Add(delta)
	if next.IsNegative() && !override {
		return 0, apperror.NewInsufficientStock(productID.String(), delta.Neg().String(), p.Stock.String())
	}
	p.Stock = next
	f.adjustOrder = append(f.adjustOrder, productID)
	f.adjustments[productID] = f.adjustments[productID].Add(delta)
	return next, nil
}

type fakeBranches struct{ exists bool }

func (f fakeBranches) Exists(ctx context.Context, branchID id.ID) (bool, error) {
	return f.exists, nil
}

type fakeProfiles struct{ err error }

func (f fakeProfiles) CheckActive(ctx context.Context, profileID id.ID) error { return f.err }

type fakeReturns struct{ counts map[id.ID]int64 }

func (f fakeReturns) CountByLine(ctx context.Context, lineID id.ID) (int64, error) {
	return f.counts[lineID], nil
}

type fakeNumbers struct{ n int }

func (f *fakeNumbers) NextInvoiceNumber(ctx context.Context, kind Kind, branchID string) (string, error) {
	f.n++
	prefix := "SAL"
	if kind == KindPurchase {
		prefix = "PUR"
	}
	return fmt.Sprintf("%s-2024-%05d", prefix, f.n), nil
}

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	products *fakeProducts
	returns  *fakeReturns
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	products := newFakeProducts()
	rets := &fakeReturns{counts: make(map[id.ID]int64)}
	svc := NewService(
		repo,
		products,
		fakeBranches{exists: true},
		fakeProfiles{},
		rets,
		pricing.NewFixedMarkup(types.NewMoney(0.30)),
		&fakeNumbers{},
		stubTxManager{},
		nil,
	)
	return &fixture{svc: svc, repo: repo, products: products, returns: rets}
}

func sellableProduct(stock int64) *product.Product {
	p := product.NewProduct("", "Widget")
	p.Stock = types.NewQuantityFromInt(stock)
	p.UnitCost = types.MustMoney("10")
	return p
}

func saleParams() OpenParams {
	return OpenParams{
		Kind:          KindSale,
		BranchID:      id.New().String(),
		CustomerID:    strPtr(id.New().String()),
		EmployeeID:    id.New().String(),
		PaymentMethod: PaymentCash,
	}
}

// --- Tests ---

func TestOpenAssignsInvoiceNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)
	assert.Equal(t, "SAL-2024-00001", doc.InvoiceNumber)
	assert.Equal(t, StateDraft, doc.State)

	stored, err := f.repo.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.InvoiceNumber, stored.InvoiceNumber)
}

func TestOpenKeepsExplicitInvoiceNumber(t *testing.T) {
	f := newFixture(t)
	params := saleParams()
	params.InvoiceNumber = "FV-0042"

	doc, err := f.svc.Open(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, "FV-0042", doc.InvoiceNumber)
}

func TestOpenRejectsDuplicateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	params := saleParams()
	params.InvoiceNumber = "FV-0042"

	_, err := f.svc.Open(ctx, params)
	require.NoError(t, err)

	params.CustomerID = strPtr(id.New().String())
	_, err = f.svc.Open(ctx, params)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "got %v", err)
}

func TestOpenRejectsUnknownBranch(t *testing.T) {
	f := newFixture(t)
	f.svc.branches = fakeBranches{exists: false}

	_, err := f.svc.Open(context.Background(), saleParams())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestOpenRejectsInactiveParty(t *testing.T) {
	f := newFixture(t)
	f.svc.profiles = fakeProfiles{err: apperror.NewBusinessRule(apperror.CodeBusinessRule, "profile is not active")}

	_, err := f.svc.Open(context.Background(), saleParams())
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)
}

func TestAddLinePricesViaPolicy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(100)
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)

	doc, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(2),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	// 10 * 1.30 = 13 per unit, two units.
	assert.Equal(t, "13", doc.Lines[0].SalePrice.String())
	assert.Equal(t, "26", doc.Lines[0].Total.String())
	assert.Equal(t, "26", doc.BaseValue.String())

	// First line moves the draft forward.
	assert.Equal(t, StateInProgress, doc.State)
}

func TestAddLineRejectsUnsellableProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(100)
	prod.State = product.StateDiscontinued
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)

	_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(1),
		UnitCost:  types.MustMoney("10"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)
}

func TestRemoveLineBlockedByReturns(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(100)
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)
	doc, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(1),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)

	lineID := doc.Lines[0].LineID
	f.returns.counts[lineID] = 1

	_, err = f.svc.RemoveLine(ctx, doc.ID, lineID)
	assert.True(t, apperror.HasCode(err, apperror.CodeProtectedReference), "got %v", err)

	// Clearing the guard lets removal through.
	f.returns.counts[lineID] = 0
	doc, err = f.svc.RemoveLine(ctx, doc.ID, lineID)
	require.NoError(t, err)
	assert.Empty(t, doc.Lines)
	assert.True(t, doc.BaseValue.IsZero())
}

func TestSetDiscount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(100)
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)
	doc, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(2),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)

	doc, err = f.svc.SetDiscount(ctx, doc.ID, types.MustMoney("6"))
	require.NoError(t, err)
	assert.Equal(t, "20", doc.Total.String())

	_, err = f.svc.SetDiscount(ctx, doc.ID, types.MustMoney("-1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
}

func TestFinalizeAppliesStockEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p1 := sellableProduct(10)
	p2 := sellableProduct(10)
	f.products.add(p1).add(p2)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)

	// Two lines for p1 aggregate into a single adjustment.
	for _, q := range []int64{2, 3} {
		_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
			ProductID: p1.ID,
			Quantity:  types.NewQuantityFromInt(q),
			UnitCost:  types.MustMoney("10"),
		})
		require.NoError(t, err)
	}
	_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: p2.ID,
		Quantity:  types.NewQuantityFromInt(4),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)

	doc, err = f.svc.Finalize(ctx, doc.ID)
	require.NoError(t, err)

	assert.Equal(t, StateFinalized, doc.State)
	require.NotNil(t, doc.FinalizedAt)

	// Sale consumes stock: p1 loses 5, p2 loses 4.
	assert.Equal(t, types.NewQuantityFromInt(-5), f.products.adjustments[p1.ID])
	assert.Equal(t, types.NewQuantityFromInt(-4), f.products.adjustments[p2.ID])
	assert.Equal(t, types.NewQuantityFromInt(5), p1.Stock)
	assert.Equal(t, types.NewQuantityFromInt(6), p2.Stock)

	// One adjustment per product, in ascending id order.
	require.Len(t, f.products.adjustOrder, 2)
	assert.Less(t, f.products.adjustOrder[0].String(), f.products.adjustOrder[1].String())
}

func TestFinalizeEmptyTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeEmptyTransaction), "got %v", err)
}

func TestFinalizeInsufficientStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(1)
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(5),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock), "got %v", err)
}

func TestFinalizeInsufficientStockRollsBackAllLines(t *testing.T) {
	repo := newFakeRepo()
	products := newFakeProducts()
	svc := NewService(
		repo,
		products,
		fakeBranches{exists: true},
		fakeProfiles{},
		&fakeReturns{counts: make(map[id.ID]int64)},
		pricing.NewFixedMarkup(types.NewMoney(0.30)),
		&fakeNumbers{},
		rollbackTxManager{products: products},
		nil,
	)
	ctx := context.Background()

	covered := sellableProduct(10)
	short := sellableProduct(1)
	products.add(covered).add(short)

	doc, err := svc.Open(ctx, saleParams())
	require.NoError(t, err)
	for _, p := range []*product.Product{covered, short} {
		_, err = svc.AddLine(ctx, doc.ID, AddLineParams{
			ProductID: p.ID,
			Quantity:  types.NewQuantityFromInt(5),
			UnitCost:  types.MustMoney("10"),
		})
		require.NoError(t, err)
	}
	doc, err = svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	stateBefore := doc.State

	_, err = svc.Finalize(ctx, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock), "got %v", err)

	// One failing line aborts the whole document: the line that could
	// have been covered keeps its stock too.
	assert.Equal(t, types.NewQuantityFromInt(10), products.items[covered.ID].Stock)
	assert.Equal(t, types.NewQuantityFromInt(1), products.items[short.ID].Stock)

	// The document stays open for correction.
	doc, err = svc.GetByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, stateBefore, doc.State)
	assert.Nil(t, doc.FinalizedAt)
}

func TestFinalizePurchaseReplenishesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(2)
	f.products.add(prod)

	params := OpenParams{
		Kind:          KindPurchase,
		BranchID:      id.New().String(),
		SupplierID:    strPtr(id.New().String()),
		EmployeeID:    id.New().String(),
		PaymentMethod: PaymentTransfer,
	}
	doc, err := f.svc.Open(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, "PUR-2024-00001", doc.InvoiceNumber)

	_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(10),
		UnitCost:  types.MustMoney("7"),
	})
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(12), prod.Stock)
}

func TestVoidReversesStockEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(10)
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(4),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)

	_, err = f.svc.Finalize(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), prod.Stock)

	doc, err = f.svc.Void(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StateVoided, doc.State)
	assert.Equal(t, types.NewQuantityFromInt(10), prod.Stock)
}

func TestVoidRequiresFinalized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)

	_, err = f.svc.Void(ctx, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestCancelFinalizedFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	prod := sellableProduct(10)
	f.products.add(prod)

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)
	_, err = f.svc.AddLine(ctx, doc.ID, AddLineParams{
		ProductID: prod.ID,
		Quantity:  types.NewQuantityFromInt(1),
		UnitCost:  types.MustMoney("10"),
	})
	require.NoError(t, err)
	_, err = f.svc.Finalize(ctx, doc.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, doc.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState), "got %v", err)
}

func TestCancelDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Open(ctx, saleParams())
	require.NoError(t, err)

	doc, err = f.svc.Cancel(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, doc.State)
}
