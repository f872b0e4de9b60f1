package category

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/domain"
)

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	items map[id.ID]*Category
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Category)}
}

func (r *fakeRepo) Create(ctx context.Context, c *Category) error {
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, catID id.ID, includeDeleted bool) (*Category, error) {
	c, ok := r.items[catID]
	if !ok || (c.DeletionMark && !includeDeleted) {
		return nil, apperror.NewNotFound("category", catID.String())
	}
	cp := *c
	return &cp, nil
}

func (r *fakeRepo) GetByCode(ctx context.Context, code string) (*Category, error) {
	for _, c := range r.items {
		if c.Code == code && !c.DeletionMark {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("category", code)
}

func (r *fakeRepo) Update(ctx context.Context, c *Category) error {
	if _, ok := r.items[c.ID]; !ok {
		return apperror.NewNotFound("category", c.ID.String())
	}
	cp := *c
	r.items[c.ID] = &cp
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, catID id.ID, marked bool) error {
	c, ok := r.items[catID]
	if !ok {
		return apperror.NewNotFound("category", catID.String())
	}
	c.DeletionMark = marked
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Category], error) {
	out := make([]*Category, 0, len(r.items))
	for _, c := range r.items {
		if c.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return domain.ListResult[*Category]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeRepo) Exists(ctx context.Context, catID id.ID) (bool, error) {
	c, ok := r.items[catID]
	return ok && !c.DeletionMark, nil
}

func (r *fakeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeRepo) GetTree(ctx context.Context, rootID *id.ID) ([]*Category, error) {
	return nil, nil
}

func (r *fakeRepo) GetPath(ctx context.Context, catID id.ID) ([]*Category, error) {
	return nil, nil
}

func (r *fakeRepo) FindByNameAndParent(ctx context.Context, name string, parentID *string) (*Category, error) {
	for _, c := range r.items {
		if c.DeletionMark || c.Name != name {
			continue
		}
		switch {
		case c.ParentID == nil && parentID == nil:
			cp := *c
			return &cp, nil
		case c.ParentID != nil && parentID != nil && *c.ParentID == *parentID:
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("category", name)
}

func (r *fakeRepo) ListChildren(ctx context.Context, parentID id.ID) ([]*Category, error) {
	out := make([]*Category, 0)
	for _, c := range r.items {
		if c.DeletionMark || c.ParentID == nil {
			continue
		}
		if *c.ParentID == parentID.String() {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) DetachChildren(ctx context.Context, parentID id.ID) error {
	for _, c := range r.items {
		if c.ParentID != nil && *c.ParentID == parentID.String() {
			c.ParentID = nil
		}
	}
	return nil
}

func (r *fakeRepo) CountAssociations(ctx context.Context, categoryID id.ID) (int64, error) {
	return 0, nil
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, stubTxManager{}), repo
}

func mustCreate(t *testing.T, svc *Service, name string, parentID *string) *Category {
	t.Helper()
	c := NewCategory(name, parentID)
	c.Code = c.ID.String()
	require.NoError(t, svc.Create(context.Background(), c))
	return c
}

func TestCreateRejectsDuplicateNameUnderSameParent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	root := mustCreate(t, svc, "Drinks", nil)

	dup := NewCategory("Drinks", nil)
	dup.Code = dup.ID.String()
	err := svc.Create(ctx, dup)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicateName), "got %v", err)

	// Same name under a different parent is fine.
	parentRef := root.ID.String()
	child := NewCategory("Drinks", &parentRef)
	child.Code = child.ID.String()
	require.NoError(t, svc.Create(ctx, child))
}

func TestCreateRejectsSelfParent(t *testing.T) {
	svc, _ := newTestService()

	c := NewCategory("Snacks", nil)
	c.Code = c.ID.String()
	self := c.ID.String()
	c.ParentID = &self

	err := svc.Create(context.Background(), c)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
}

func TestCreateRejectsUnknownParent(t *testing.T) {
	svc, _ := newTestService()

	missing := id.New().String()
	c := NewCategory("Orphan", &missing)
	c.Code = c.ID.String()

	err := svc.Create(context.Background(), c)
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestUpdateRejectsCycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// a -> b -> c chain, then try to reparent a under c.
	a := mustCreate(t, svc, "A", nil)
	aRef := a.ID.String()
	b := mustCreate(t, svc, "B", &aRef)
	bRef := b.ID.String()
	c := mustCreate(t, svc, "C", &bRef)

	cRef := c.ID.String()
	a.ParentID = &cRef
	err := svc.Update(ctx, a)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)

	// Moving c directly under a stays acyclic.
	c.ParentID = &aRef
	require.NoError(t, svc.Update(ctx, c))
}

func TestDeleteDetachesChildren(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	parent := mustCreate(t, svc, "Parent", nil)
	parentRef := parent.ID.String()
	child1 := mustCreate(t, svc, "Child 1", &parentRef)
	child2 := mustCreate(t, svc, "Child 2", &parentRef)

	require.NoError(t, svc.Delete(ctx, parent.ID))

	for _, childID := range []id.ID{child1.ID, child2.ID} {
		got, err := repo.GetByID(ctx, childID, false)
		require.NoError(t, err)
		assert.Nil(t, got.ParentID, "child should become a root")
	}

	_, err := svc.GetByID(ctx, parent.ID)
	assert.True(t, apperror.IsNotFound(err), "deleted parent should be hidden")
}

func TestListChildren(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	parent := mustCreate(t, svc, "Parent", nil)
	parentRef := parent.ID.String()
	mustCreate(t, svc, "Child 1", &parentRef)
	mustCreate(t, svc, "Child 2", &parentRef)
	mustCreate(t, svc, "Stranger", nil)

	children, err := svc.ListChildren(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestRestore(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	c := mustCreate(t, svc, "Seasonal", nil)
	require.NoError(t, svc.Delete(ctx, c.ID))
	require.NoError(t, svc.Restore(ctx, c.ID))

	got, err := svc.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.DeletionMark)
}
