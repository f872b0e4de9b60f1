package attachments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/domain"
)

type stubTxManager struct{}

func (stubTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRepo struct {
	items map[id.ID]*Attachment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Attachment)}
}

func (r *fakeRepo) Create(ctx context.Context, a *Attachment) error {
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, attachmentID id.ID) (*Attachment, error) {
	a, ok := r.items[attachmentID]
	if !ok || a.DeletionMark {
		return nil, apperror.NewNotFound("attachment", attachmentID.String())
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) GetByToken(ctx context.Context, token string) (*Attachment, error) {
	for _, a := range r.items {
		if a.Token == token && !a.DeletionMark {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("attachment", token)
}

func (r *fakeRepo) Update(ctx context.Context, a *Attachment) error {
	if _, ok := r.items[a.ID]; !ok {
		return apperror.NewNotFound("attachment", a.ID.String())
	}
	cp := *a
	r.items[a.ID] = &cp
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, attachmentID id.ID, marked bool) error {
	a, ok := r.items[attachmentID]
	if !ok {
		return apperror.NewNotFound("attachment", attachmentID.String())
	}
	a.DeletionMark = marked
	return nil
}

func (r *fakeRepo) ListByOwner(ctx context.Context, owner entity.OwnerRef, filter domain.ListFilter) (domain.ListResult[*Attachment], error) {
	out := make([]*Attachment, 0)
	for _, a := range r.items {
		if !a.DeletionMark && a.Owner == owner {
			cp := *a
			out = append(out, &cp)
		}
	}
	return domain.ListResult[*Attachment]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeRepo) MarkDeletedByOwner(ctx context.Context, owner entity.OwnerRef) error {
	for _, a := range r.items {
		if a.Owner == owner {
			a.DeletionMark = true
		}
	}
	return nil
}

func newTestService(known map[id.ID]bool) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	registry := NewOwnerRegistry()
	registry.Register(entity.OwnerProduct, func(ctx context.Context, ownerID id.ID) (bool, error) {
		return known[ownerID], nil
	})
	return NewService(repo, registry, stubTxManager{}), repo
}

func TestAttach(t *testing.T) {
	ownerID := id.New()
	svc, _ := newTestService(map[id.ID]bool{ownerID: true})
	owner := entity.NewOwnerRef(entity.OwnerProduct, ownerID)

	a, err := svc.Attach(context.Background(), owner, "invoice.PDF", "2024/03/invoice.pdf")
	require.NoError(t, err)

	assert.NotEmpty(t, a.Token)
	assert.Equal(t, "pdf", a.Extension)
	assert.Equal(t, KindDocument, a.Kind)
	assert.Equal(t, owner, a.Owner)
}

func TestAttachUnknownOwnerType(t *testing.T) {
	svc, _ := newTestService(nil)
	owner := entity.NewOwnerRef(entity.OwnerCompany, id.New())

	_, err := svc.Attach(context.Background(), owner, "a.png", "p")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
}

func TestAttachMissingOwner(t *testing.T) {
	svc, _ := newTestService(map[id.ID]bool{})
	owner := entity.NewOwnerRef(entity.OwnerProduct, id.New())

	_, err := svc.Attach(context.Background(), owner, "a.png", "p")
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestGetByToken(t *testing.T) {
	ownerID := id.New()
	svc, _ := newTestService(map[id.ID]bool{ownerID: true})
	owner := entity.NewOwnerRef(entity.OwnerProduct, ownerID)
	ctx := context.Background()

	a, err := svc.Attach(ctx, owner, "photo.jpg", "2024/03/photo.jpg")
	require.NoError(t, err)

	got, err := svc.GetByToken(ctx, a.Token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, KindImage, got.Kind)

	_, err = svc.GetByToken(ctx, "no-such-token")
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestDetach(t *testing.T) {
	ownerID := id.New()
	svc, _ := newTestService(map[id.ID]bool{ownerID: true})
	owner := entity.NewOwnerRef(entity.OwnerProduct, ownerID)
	ctx := context.Background()

	a, err := svc.Attach(ctx, owner, "a.txt", "p")
	require.NoError(t, err)

	require.NoError(t, svc.Detach(ctx, a.ID))

	_, err = svc.GetByToken(ctx, a.Token)
	assert.True(t, apperror.IsNotFound(err), "detached attachment should be hidden")

	err = svc.Detach(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestDetachForOwner(t *testing.T) {
	ownerID := id.New()
	svc, _ := newTestService(map[id.ID]bool{ownerID: true})
	owner := entity.NewOwnerRef(entity.OwnerProduct, ownerID)
	ctx := context.Background()

	_, err := svc.Attach(ctx, owner, "a.txt", "p1")
	require.NoError(t, err)
	_, err = svc.Attach(ctx, owner, "b.txt", "p2")
	require.NoError(t, err)

	require.NoError(t, svc.DetachForOwner(ctx, owner))

	result, err := svc.ListByOwner(ctx, owner, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestKindForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Kind
	}{
		{"jpg", KindImage},
		{"pdf", KindDocument},
		{"mp4", KindVideo},
		{"mp3", KindAudio},
		{"zip", KindOther},
		{"", KindOther},
	}

	for _, tt := range tests {
		if got := KindForExtension(tt.ext); got != tt.want {
			t.Errorf("KindForExtension(%q) = %s, want %s", tt.ext, got, tt.want)
		}
	}
}
