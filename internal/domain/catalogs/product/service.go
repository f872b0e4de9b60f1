package product

import (
	"context"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/core/types"
	"comercio/internal/domain"
	"comercio/pkg/logger"
)

// CategoryChecker verifies a category exists. Narrow interface to avoid
// an import cycle with the category catalog.
type CategoryChecker interface {
	Exists(ctx context.Context, categoryID id.ID) (bool, error)
}

// LineCounter counts transaction lines referencing a product.
// Implemented by the transaction repository; kept narrow to avoid a
// dependency from catalogs onto documents.
type LineCounter interface {
	CountByProduct(ctx context.Context, productID id.ID) (int64, error)
}

// StockCache caches product availability. Reads go through it and
// stock writes invalidate it.
type StockCache interface {
	GetStock(ctx context.Context, productID id.ID) (stock, minStock types.Quantity, ok bool)
	SetStock(ctx context.Context, productID id.ID, stock, minStock types.Quantity)
	InvalidateProduct(ctx context.Context, productID id.ID)
}

// Service provides business logic for the Product catalog, including
// category associations and atomic stock adjustment.
type Service struct {
	*domain.CatalogService[*Product]
	repo       Repository
	links      LinkRepository
	categories CategoryChecker
	lines      LineCounter
	cache      StockCache
}

// NewService creates a new Product service.
// lines and cache may be nil during partial wiring (tests, seed tool).
func NewService(
	repo Repository,
	links LinkRepository,
	categories CategoryChecker,
	lines LineCounter,
	cache StockCache,
	txm tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		links:          links,
		categories:     categories,
		lines:          lines,
		cache:          cache,
	}

	base.Hooks().OnBeforeCreate(svc.checkCodeUnique)
	base.Hooks().OnBeforeUpdate(svc.checkCodeUnique)
	base.Hooks().OnBeforeDelete(svc.checkNotReferenced)

	return svc
}

// checkCodeUnique enforces code uniqueness when a code is present.
func (s *Service) checkCodeUnique(ctx context.Context, p *Product) error {
	if p.Code == "" {
		return nil
	}
	existing, err := s.repo.GetByCode(ctx, p.Code)
	if err == nil && existing.ID != p.ID {
		return apperror.NewDuplicate("product", "code", p.Code)
	}
	return nil
}

// checkNotReferenced blocks soft delete while transaction lines
// reference the product.
func (s *Service) checkNotReferenced(ctx context.Context, p *Product) error {
	if s.lines == nil {
		return nil
	}
	count, err := s.lines.CountByProduct(ctx, p.ID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if count > 0 {
		return apperror.NewProtectedReference("product", p.ID.String(), "transaction lines")
	}
	return nil
}

// --- Category associations ---

// AssignCategory associates the product with a category. Re-assigning
// the same pair fails with DuplicateAssociation. When isPrimary is set,
// the previous primary association (if any) is demoted so at most one
// primary link exists per product.
func (s *Service) AssignCategory(ctx context.Context, productID, categoryID id.ID, isPrimary bool) (*CategoryLink, error) {
	exists, err := s.Exists(ctx, productID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if !exists {
		return nil, apperror.NewNotFound("product", productID.String())
	}

	exists, err = s.categories.Exists(ctx, categoryID)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	if !exists {
		return nil, apperror.NewNotFound("category", categoryID.String())
	}

	if _, err := s.links.GetLink(ctx, productID, categoryID); err == nil {
		return nil, apperror.NewDuplicateAssociation(productID.String(), categoryID.String())
	}

	link := NewCategoryLink(productID, categoryID, isPrimary)

	err = s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		if isPrimary {
			if prev, err := s.links.GetPrimaryLink(ctx, productID); err == nil {
				if err := s.links.SetPrimary(ctx, prev.ID, false); err != nil {
					return err
				}
			}
		}
		return s.links.CreateLink(ctx, link)
	})
	if err != nil {
		return nil, err
	}

	return link, nil
}

// SetPrimaryCategory promotes an existing association to primary,
// demoting the previous one.
func (s *Service) SetPrimaryCategory(ctx context.Context, productID, categoryID id.ID) error {
	link, err := s.links.GetLink(ctx, productID, categoryID)
	if err != nil {
		return apperror.NewNotFound("category association", categoryID.String()).
			WithDetail("product_id", productID.String())
	}
	if link.IsPrimary {
		return nil
	}

	return s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		if prev, err := s.links.GetPrimaryLink(ctx, productID); err == nil {
			if err := s.links.SetPrimary(ctx, prev.ID, false); err != nil {
				return err
			}
		}
		return s.links.SetPrimary(ctx, link.ID, true)
	})
}

// UnassignCategory removes an association.
func (s *Service) UnassignCategory(ctx context.Context, productID, categoryID id.ID) error {
	if _, err := s.links.GetLink(ctx, productID, categoryID); err != nil {
		return apperror.NewNotFound("category association", categoryID.String()).
			WithDetail("product_id", productID.String())
	}
	return s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		return s.links.DeleteLink(ctx, productID, categoryID)
	})
}

// ListCategories retrieves associations of a product.
func (s *Service) ListCategories(ctx context.Context, productID id.ID) ([]*CategoryLink, error) {
	return s.links.ListByProduct(ctx, productID)
}

// ListByCategory retrieves products associated with a category.
func (s *Service) ListByCategory(ctx context.Context, categoryID id.ID, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.links.ListProductsByCategory(ctx, categoryID, filter)
}

// --- Stock ---

// AdjustStock applies delta to the product stock. The product row is
// the serialization point: the repository issues a single guarded
// UPDATE, so concurrent adjustments never interleave. Unless override
// is set, driving stock negative fails with InsufficientStock.
func (s *Service) AdjustStock(ctx context.Context, productID id.ID, delta types.Quantity, override bool) (types.Quantity, error) {
	if delta.IsZero() {
		p, err := s.GetByID(ctx, productID)
		if err != nil {
			return 0, err
		}
		return p.Stock, nil
	}

	var newStock types.Quantity
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		newStock, err = s.repo.AdjustStock(ctx, productID, delta, override)
		return err
	})
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		s.cache.InvalidateProduct(ctx, productID)
	}

	logger.Debug(ctx, "stock adjusted",
		"product_id", productID.String(),
		"delta", delta.String(),
		"new_stock", newStock.String(),
	)

	return newStock, nil
}

// Availability reports the current and minimum stock of a product,
// reading through the cache and populating it on a miss.
func (s *Service) Availability(ctx context.Context, productID id.ID) (stock, minStock types.Quantity, err error) {
	if s.cache != nil {
		if st, min, ok := s.cache.GetStock(ctx, productID); ok {
			return st, min, nil
		}
	}

	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return 0, 0, err
	}

	if s.cache != nil {
		s.cache.SetStock(ctx, p.ID, p.Stock, p.MinStock)
	}
	return p.Stock, p.MinStock, nil
}

// FindLowStock retrieves products with stock below minimum.
func (s *Service) FindLowStock(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	return s.repo.FindLowStock(ctx, filter)
}
