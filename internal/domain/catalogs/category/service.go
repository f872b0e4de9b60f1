package category

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/domain"
)

// Service provides business logic for the Category catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Category]
	repo Repository
}

// NewService creates a new Category service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "category",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
	}

	base.Hooks().OnBeforeCreate(svc.prepare)
	base.Hooks().OnBeforeUpdate(svc.prepare)
	base.Hooks().OnAfterDelete(svc.detachChildren)

	return svc
}

// prepare enforces (name, parent) uniqueness and rejects cycles.
func (s *Service) prepare(ctx context.Context, c *Category) error {
	existing, err := s.repo.FindByNameAndParent(ctx, c.Name, c.ParentID)
	if err == nil && existing.ID != c.ID {
		return apperror.NewDuplicateName("category", c.Name).
			WithDetail("parentId", c.ParentID)
	}

	return s.checkNoCycle(ctx, c)
}

// checkNoCycle walks the ancestor chain from the proposed parent. If it
// reaches the category itself the reparent would create a cycle; the
// walk is bounded by MaxDepth so a corrupt chain cannot loop forever.
func (s *Service) checkNoCycle(ctx context.Context, c *Category) error {
	if c.ParentID == nil || *c.ParentID == "" {
		return nil
	}

	current := *c.ParentID
	for depth := 0; depth < MaxDepth; depth++ {
		if current == c.ID.String() {
			return apperror.NewValidation("reparenting would create a cycle").
				WithDetail("field", "parentId").
				WithDetail("categoryId", c.ID.String())
		}

		parentID, err := id.Parse(current)
		if err != nil {
			return apperror.NewValidation("invalid parent id").
				WithDetail("field", "parentId")
		}

		ancestor, err := s.repo.GetByID(ctx, parentID, true)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("category", current)
			}
			return err
		}

		if ancestor.ParentID == nil || *ancestor.ParentID == "" {
			return nil
		}
		current = *ancestor.ParentID
	}

	return apperror.NewValidation("category hierarchy exceeds maximum depth").
		WithDetail("maxDepth", MaxDepth)
}

// detachChildren makes children of a deleted category roots instead of
// cascading the delete.
func (s *Service) detachChildren(ctx context.Context, c *Category) error {
	return s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.DetachChildren(ctx, c.ID)
	})
}

// ListChildren retrieves direct children of a category.
func (s *Service) ListChildren(ctx context.Context, categoryID id.ID) ([]*Category, error) {
	return s.repo.ListChildren(ctx, categoryID)
}
