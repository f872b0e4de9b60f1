package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/internal/domain/attachments"
)

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	items map[id.ID]*Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Product)}
}

func (r *fakeRepo) Create(ctx context.Context, p *Product) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, prodID id.ID, includeDeleted bool) (*Product, error) {
	p, ok := r.items[prodID]
	if !ok || (p.DeletionMark && !includeDeleted) {
		return nil, apperror.NewNotFound("product", prodID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetByCode(ctx context.Context, code string) (*Product, error) {
	for _, p := range r.items {
		if p.Code == code && !p.DeletionMark {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (r *fakeRepo) Update(ctx context.Context, p *Product) error {
	if _, ok := r.items[p.ID]; !ok {
		return apperror.NewNotFound("product", p.ID.String())
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, prodID id.ID, marked bool) error {
	p, ok := r.items[prodID]
	if !ok {
		return apperror.NewNotFound("product", prodID.String())
	}
	p.DeletionMark = marked
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	out := make([]*Product, 0, len(r.items))
	for _, p := range r.items {
		if p.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return domain.ListResult[*Product]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeRepo) Exists(ctx context.Context, prodID id.ID) (bool, error) {
	p, ok := r.items[prodID]
	return ok && !p.DeletionMark, nil
}

func (r *fakeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

func (r *fakeRepo) GetTree(ctx context.Context, rootID *id.ID) ([]*Product, error) { return nil, nil }

func (r *fakeRepo) GetPath(ctx context.Context, prodID id.ID) ([]*Product, error) { return nil, nil }

func (r *fakeRepo) GetForUpdate(ctx context.Context, prodID id.ID) (*Product, error) {
	return r.GetByID(ctx, prodID, false)
}

func (r *fakeRepo) AdjustStock(ctx context.Context, prodID id.ID, delta types.Quantity, override bool) (types.Quantity, error) {
	p, ok := r.items[prodID]
	if !ok {
		return 0, apperror.NewNotFound("product", prodID.String())
	}
	next := p.Stock.Add(delta)
	if next.IsNegative() && !override {
		return 0, apperror.NewInsufficientStock(prodID.String(), delta.Neg().String(), p.Stock.String())
	}
	p.Stock = next
	return next, nil
}

func (r *fakeRepo) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	out := make([]*Product, 0)
	for _, p := range r.items {
		if !p.DeletionMark && p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return domain.ListResult[*Product]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeLinks struct {
	links map[id.ID]*CategoryLink
}

func newFakeLinks() *fakeLinks {
	return &fakeLinks{links: make(map[id.ID]*CategoryLink)}
}

func (f *fakeLinks) CreateLink(ctx context.Context, link *CategoryLink) error {
	cp := *link
	f.links[link.ID] = &cp
	return nil
}

func (f *fakeLinks) GetLink(ctx context.Context, productID, categoryID id.ID) (*CategoryLink, error) {
	for _, l := range f.links {
		if l.ProductID == productID && l.CategoryID == categoryID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("category association", categoryID.String())
}

func (f *fakeLinks) GetPrimaryLink(ctx context.Context, productID id.ID) (*CategoryLink, error) {
	for _, l := range f.links {
		if l.ProductID == productID && l.IsPrimary {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("primary association", productID.String())
}

func (f *fakeLinks) SetPrimary(ctx context.Context, linkID id.ID, primary bool) error {
	l, ok := f.links[linkID]
	if !ok {
		return apperror.NewNotFound("category association", linkID.String())
	}
	l.IsPrimary = primary
	return nil
}

func (f *fakeLinks) DeleteLink(ctx context.Context, productID, categoryID id.ID) error {
	for lid, l := range f.links {
		if l.ProductID == productID && l.CategoryID == categoryID {
			delete(f.links, lid)
			return nil
		}
	}
	return apperror.NewNotFound("category association", categoryID.String())
}

func (f *fakeLinks) ListByProduct(ctx context.Context, productID id.ID) ([]*CategoryLink, error) {
	out := make([]*CategoryLink, 0)
	for _, l := range f.links {
		if l.ProductID == productID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeLinks) ListProductsByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return domain.ListResult[*Product]{}, nil
}

type fakeCategories struct {
	ids map[id.ID]bool
}

func (f fakeCategories) Exists(ctx context.Context, categoryID id.ID) (bool, error) {
	return f.ids[categoryID], nil
}

type fakeLines struct{ counts map[id.ID]int64 }

func (f fakeLines) CountByProduct(ctx context.Context, productID id.ID) (int64, error) {
	return f.counts[productID], nil
}

type fakeAttachmentStore struct {
	items map[id.ID]*attachments.Attachment
}

func newFakeAttachmentStore() *fakeAttachmentStore {
	return &fakeAttachmentStore{items: make(map[id.ID]*attachments.Attachment)}
}

func (s *fakeAttachmentStore) Create(ctx context.Context, a *attachments.Attachment) error {
	cp := *a
	s.items[a.ID] = &cp
	return nil
}

func (s *fakeAttachmentStore) GetByID(ctx context.Context, attachmentID id.ID) (*attachments.Attachment, error) {
	a, ok := s.items[attachmentID]
	if !ok || a.DeletionMark {
		return nil, apperror.NewNotFound("attachment", attachmentID.String())
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttachmentStore) GetByToken(ctx context.Context, token string) (*attachments.Attachment, error) {
	for _, a := range s.items {
		if a.Token == token && !a.DeletionMark {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("attachment", token)
}

func (s *fakeAttachmentStore) Update(ctx context.Context, a *attachments.Attachment) error {
	cp := *a
	s.items[a.ID] = &cp
	return nil
}

func (s *fakeAttachmentStore) SetDeletionMark(ctx context.Context, attachmentID id.ID, marked bool) error {
	a, ok := s.items[attachmentID]
	if !ok {
		return apperror.NewNotFound("attachment", attachmentID.String())
	}
	a.DeletionMark = marked
	return nil
}

func (s *fakeAttachmentStore) ListByOwner(ctx context.Context, owner entity.OwnerRef, filter domain.ListFilter) (domain.ListResult[*attachments.Attachment], error) {
	out := make([]*attachments.Attachment, 0)
	for _, a := range s.items {
		if !a.DeletionMark && a.Owner == owner {
			cp := *a
			out = append(out, &cp)
		}
	}
	return domain.ListResult[*attachments.Attachment]{Items: out, TotalCount: int64(len(out))}, nil
}

func (s *fakeAttachmentStore) MarkDeletedByOwner(ctx context.Context, owner entity.OwnerRef) error {
	for _, a := range s.items {
		if a.Owner == owner {
			a.DeletionMark = true
		}
	}
	return nil
}

type cachedStock struct {
	stock    types.Quantity
	minStock types.Quantity
}

type fakeCache struct {
	entries     map[id.ID]cachedStock
	invalidated []id.ID
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[id.ID]cachedStock)}
}

func (f *fakeCache) GetStock(ctx context.Context, productID id.ID) (types.Quantity, types.Quantity, bool) {
	e, ok := f.entries[productID]
	return e.stock, e.minStock, ok
}

func (f *fakeCache) SetStock(ctx context.Context, productID id.ID, stock, minStock types.Quantity) {
	f.entries[productID] = cachedStock{stock: stock, minStock: minStock}
}

func (f *fakeCache) InvalidateProduct(ctx context.Context, productID id.ID) {
	delete(f.entries, productID)
	f.invalidated = append(f.invalidated, productID)
}

type fixture struct {
	svc        *Service
	repo       *fakeRepo
	links      *fakeLinks
	categories fakeCategories
	lines      fakeLines
	cache      *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeRepo()
	links := newFakeLinks()
	categories := fakeCategories{ids: make(map[id.ID]bool)}
	lines := fakeLines{counts: make(map[id.ID]int64)}
	cache := newFakeCache()
	svc := NewService(repo, links, categories, lines, cache, stubTxManager{})
	return &fixture{svc: svc, repo: repo, links: links, categories: categories, lines: lines, cache: cache}
}

func (f *fixture) seedProduct(t *testing.T, code string, stock int64) *Product {
	t.Helper()
	p := NewProduct(code, "Product "+code)
	p.Stock = types.NewQuantityFromInt(stock)
	p.UnitCost = types.MustMoney("10")
	require.NoError(t, f.svc.Create(context.Background(), p))
	return p
}

func (f *fixture) seedCategory() id.ID {
	catID := id.New()
	f.categories.ids[catID] = true
	return catID
}

// --- Tests ---

func TestCreateRejectsDuplicateCode(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "PRD-001", 10)

	dup := NewProduct("PRD-001", "Another")
	err := f.svc.Create(context.Background(), dup)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "got %v", err)

	// Empty codes are exempt from the uniqueness check.
	require.NoError(t, f.svc.Create(context.Background(), NewProduct("", "No code 1")))
	require.NoError(t, f.svc.Create(context.Background(), NewProduct("", "No code 2")))
}

func TestDeleteBlockedByTransactionLines(t *testing.T) {
	f := newFixture(t)
	p := f.seedProduct(t, "PRD-001", 10)
	f.lines.counts[p.ID] = 3

	err := f.svc.Delete(context.Background(), p.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeProtectedReference), "got %v", err)

	f.lines.counts[p.ID] = 0
	require.NoError(t, f.svc.Delete(context.Background(), p.ID))
}

func TestDeleteCascadesToAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)

	// Attachment service wired the way the server does it: existence
	// check through the registry, cascade through the after-delete hook.
	store := newFakeAttachmentStore()
	registry := attachments.NewOwnerRegistry()
	registry.Register(entity.OwnerProduct, f.repo.Exists)
	attSvc := attachments.NewService(store, registry, stubTxManager{})

	detach := attSvc.CascadeDelete(entity.OwnerProduct)
	f.svc.Hooks().OnAfterDelete(func(ctx context.Context, p *Product) error {
		return detach(ctx, p.ID)
	})

	owner := entity.NewOwnerRef(entity.OwnerProduct, p.ID)
	a, err := attSvc.Attach(ctx, owner, "label.pdf", "2024/03/label.pdf")
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))

	result, err := attSvc.ListByOwner(ctx, owner, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Empty(t, result.Items, "deleting the product should hide its attachments")

	_, err = attSvc.GetByToken(ctx, a.Token)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestAssignCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)
	catID := f.seedCategory()

	link, err := f.svc.AssignCategory(ctx, p.ID, catID, false)
	require.NoError(t, err)
	assert.False(t, link.IsPrimary)

	// Same pair again is rejected.
	_, err = f.svc.AssignCategory(ctx, p.ID, catID, false)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateAssociation), "got %v", err)
}

func TestAssignCategoryUnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)
	catID := f.seedCategory()

	_, err := f.svc.AssignCategory(ctx, id.New(), catID, false)
	assert.True(t, apperror.IsNotFound(err), "unknown product: got %v", err)

	_, err = f.svc.AssignCategory(ctx, p.ID, id.New(), false)
	assert.True(t, apperror.IsNotFound(err), "unknown category: got %v", err)
}

func TestAssignCategoryDemotesPreviousPrimary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)
	cat1 := f.seedCategory()
	cat2 := f.seedCategory()

	first, err := f.svc.AssignCategory(ctx, p.ID, cat1, true)
	require.NoError(t, err)
	assert.True(t, first.IsPrimary)

	second, err := f.svc.AssignCategory(ctx, p.ID, cat2, true)
	require.NoError(t, err)
	assert.True(t, second.IsPrimary)

	// Only one primary link remains.
	primary, err := f.links.GetPrimaryLink(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, cat2, primary.CategoryID)

	all, err := f.svc.ListCategories(ctx, p.ID)
	require.NoError(t, err)
	var primaries int
	for _, l := range all {
		if l.IsPrimary {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestSetPrimaryCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)
	cat1 := f.seedCategory()
	cat2 := f.seedCategory()

	_, err := f.svc.AssignCategory(ctx, p.ID, cat1, true)
	require.NoError(t, err)
	_, err = f.svc.AssignCategory(ctx, p.ID, cat2, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.SetPrimaryCategory(ctx, p.ID, cat2))

	primary, err := f.links.GetPrimaryLink(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, cat2, primary.CategoryID)

	// Promoting the current primary is a no-op.
	require.NoError(t, f.svc.SetPrimaryCategory(ctx, p.ID, cat2))

	// Unknown association.
	err = f.svc.SetPrimaryCategory(ctx, p.ID, id.New())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestUnassignCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)
	catID := f.seedCategory()

	_, err := f.svc.AssignCategory(ctx, p.ID, catID, false)
	require.NoError(t, err)

	require.NoError(t, f.svc.UnassignCategory(ctx, p.ID, catID))

	err = f.svc.UnassignCategory(ctx, p.ID, catID)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestAdjustStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)

	newStock, err := f.svc.AdjustStock(ctx, p.ID, types.NewQuantityFromInt(-4), false)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), newStock)
	assert.Len(t, f.cache.invalidated, 1)

	// Driving stock negative fails unless overridden.
	_, err = f.svc.AdjustStock(ctx, p.ID, types.NewQuantityFromInt(-100), false)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock), "got %v", err)

	newStock, err = f.svc.AdjustStock(ctx, p.ID, types.NewQuantityFromInt(-100), true)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(-94), newStock)
}

func TestAdjustStockZeroDeltaReadsCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 7)

	stock, err := f.svc.AdjustStock(ctx, p.ID, 0, false)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(7), stock)

	// A read does not invalidate the cache.
	assert.Empty(t, f.cache.invalidated)
}

func TestAvailabilityReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)

	stock, _, err := f.svc.Availability(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), stock)

	// The miss populated the cache; subsequent reads are served from it
	// without touching storage.
	f.repo.items[p.ID].Stock = types.NewQuantityFromInt(99)
	stock, _, err = f.svc.Availability(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), stock)
}

func TestAvailabilityAfterStockAdjustment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.seedProduct(t, "PRD-001", 10)

	_, _, err := f.svc.Availability(ctx, p.ID)
	require.NoError(t, err)

	// The adjustment drops the cached entry, so the next read sees the
	// new level.
	_, err = f.svc.AdjustStock(ctx, p.ID, types.NewQuantityFromInt(-4), false)
	require.NoError(t, err)

	stock, _, err := f.svc.Availability(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), stock)
}

func TestAvailabilityUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.Availability(context.Background(), id.New())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestFindLowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	low := f.seedProduct(t, "LOW-001", 2)
	low.MinStock = types.NewQuantityFromInt(5)
	require.NoError(t, f.svc.Update(ctx, low))

	ok := f.seedProduct(t, "OK-001", 20)
	ok.MinStock = types.NewQuantityFromInt(5)
	require.NoError(t, f.svc.Update(ctx, ok))

	result, err := f.svc.FindLowStock(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "LOW-001", result.Items[0].Code)
}
