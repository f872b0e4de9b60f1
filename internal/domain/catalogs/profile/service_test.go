package profile

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
	items map[id.ID]*Profile
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[id.ID]*Profile)}
}

func (r *fakeRepo) Create(ctx context.Context, p *Profile) error {
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, profileID id.ID, includeDeleted bool) (*Profile, error) {
	p, ok := r.items[profileID]
	if !ok || (p.DeletionMark && !includeDeleted) {
		return nil, apperror.NewNotFound("profile", profileID.String())
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) GetByCode(ctx context.Context, code string) (*Profile, error) {
	for _, p := range r.items {
		if p.Code == code && !p.DeletionMark {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("profile", code)
}

func (r *fakeRepo) Update(ctx context.Context, p *Profile) error {
	if _, ok := r.items[p.ID]; !ok {
		return apperror.NewNotFound("profile", p.ID.String())
	}
	cp := *p
	r.items[p.ID] = &cp
	return nil
}

func (r *fakeRepo) SetDeletionMark(ctx context.Context, profileID id.ID, marked bool) error {
	p, ok := r.items[profileID]
	if !ok {
		return apperror.NewNotFound("profile", profileID.String())
	}
	p.DeletionMark = marked
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Profile], error) {
	out := make([]*Profile, 0, len(r.items))
	for _, p := range r.items {
		if p.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return domain.ListResult[*Profile]{Items: out, TotalCount: int64(len(out))}, nil
}

func (r *fakeRepo) Exists(ctx context.Context, profileID id.ID) (bool, error) {
	p, ok := r.items[profileID]
	return ok && !p.DeletionMark, nil
}

func (r *fakeRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeRepo) GetTree(ctx context.Context, rootID *id.ID) ([]*Profile, error) {
	return nil, nil
}

func (r *fakeRepo) GetPath(ctx context.Context, profileID id.ID) ([]*Profile, error) {
	return nil, nil
}

func (r *fakeRepo) FindByDocument(ctx context.Context, docType DocumentType, docNumber string) (*Profile, error) {
	for _, p := range r.items {
		if p.DocumentType == docType && p.DocumentNumber == docNumber && !p.DeletionMark {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("profile", docNumber)
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	for _, p := range r.items {
		if p.Email != nil && *p.Email == email && !p.DeletionMark {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("profile", email)
}

func (r *fakeRepo) ListByRole(ctx context.Context, role BusinessRole, filter domain.ListFilter) (domain.ListResult[*Profile], error) {
	out := make([]*Profile, 0)
	for _, p := range r.items {
		if p.DeletionMark {
			continue
		}
		if p.HasRole(role) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return domain.ListResult[*Profile]{Items: out, TotalCount: int64(len(out))}, nil
}

type fakeDetacher struct {
	detached []string
}

func (d *fakeDetacher) DetachAdministrator(ctx context.Context, profileID string) error {
	d.detached = append(d.detached, profileID)
	return nil
}

func newTestService() (*Service, *fakeRepo, *fakeDetacher) {
	repo := newFakeRepo()
	detacher := &fakeDetacher{}
	return NewService(repo, detacher, stubTxManager{}), repo, detacher
}

func newTestProfile(docNumber, names string) *Profile {
	p := NewProfile(DocCitizenID, docNumber, names)
	p.AddRole(RoleCustomer)
	return p
}

func TestCreateRejectsDuplicateDocument(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, newTestProfile("1012345678", "Ana Torres")))

	err := svc.Create(ctx, newTestProfile("1012345678", "Ana T."))
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "got %v", err)

	// Same number under a different document type is a different person.
	other := NewProfile(DocPassport, "1012345678", "Anna Thorsen")
	require.NoError(t, svc.Create(ctx, other))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	email := "ana@example.com"
	first := newTestProfile("1012345678", "Ana Torres")
	first.Email = &email
	require.NoError(t, svc.Create(ctx, first))

	second := newTestProfile("52987654", "Luisa Gomez")
	sameEmail := "ana@example.com"
	second.Email = &sameEmail
	err := svc.Create(ctx, second)
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate), "got %v", err)

	// Updating the original profile itself is not a self conflict.
	first.Phone = strPtr("+57 300 123 4567")
	require.NoError(t, svc.Update(ctx, first))
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	svc, _, _ := newTestService()

	p := NewProfile(DocCitizenID, "1012345678", "Ana Torres")
	p.BusinessRoles = []string{"customer", "astronaut"}

	err := svc.Create(context.Background(), p)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)
}

func TestSetAndCheckPassword(t *testing.T) {
	svc, _, _ := newTestService()
	p := newTestProfile("1012345678", "Ana Torres")

	err := svc.SetPassword(p, "short")
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "got %v", err)

	require.NoError(t, svc.SetPassword(p, "correct horse battery"))
	assert.NotEmpty(t, p.PasswordHash)
	assert.NotContains(t, p.PasswordHash, "correct horse battery")

	assert.True(t, svc.CheckPassword(p, "correct horse battery"))
	assert.False(t, svc.CheckPassword(p, "wrong password"))
	assert.False(t, svc.CheckPassword(&Profile{}, "anything"))
}

func TestFindByDocument(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created := newTestProfile("1012345678", "Ana Torres")
	require.NoError(t, svc.Create(ctx, created))

	got, err := svc.FindByDocument(ctx, DocCitizenID, "1012345678")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.FindByDocument(ctx, DocCitizenID, "0000000")
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestCheckActive(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	p := newTestProfile("1012345678", "Ana Torres")
	require.NoError(t, svc.Create(ctx, p))
	require.NoError(t, svc.CheckActive(ctx, p.ID))

	p.State = StateSuspended
	require.NoError(t, repo.Update(ctx, p))

	err := svc.CheckActive(ctx, p.ID)
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule), "got %v", err)

	err = svc.CheckActive(ctx, id.New())
	assert.True(t, apperror.IsNotFound(err), "got %v", err)
}

func TestDeleteDetachesFromBranches(t *testing.T) {
	svc, _, detacher := newTestService()
	ctx := context.Background()

	p := newTestProfile("1012345678", "Ana Torres")
	require.NoError(t, svc.Create(ctx, p))
	require.NoError(t, svc.Delete(ctx, p.ID))

	require.Len(t, detacher.detached, 1)
	assert.Equal(t, p.ID.String(), detacher.detached[0])
}

func TestListByRole(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	customer := newTestProfile("1012345678", "Ana Torres")
	require.NoError(t, svc.Create(ctx, customer))

	employee := NewProfile(DocCitizenID, "52987654", "Luisa Gomez")
	employee.AddRole(RoleEmployee)
	require.NoError(t, svc.Create(ctx, employee))

	result, err := svc.ListByRole(ctx, RoleEmployee, domain.DefaultListFilter())
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, employee.ID, result.Items[0].ID)
}

func strPtr(s string) *string { return &s }
