package attachments

import (
	"context"
	"sync"

	"comercio/internal/core/apperror"
	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/domain"
)

// OwnerChecker verifies an owner entity exists.
type OwnerChecker func(ctx context.Context, ownerID id.ID) (bool, error)

// OwnerRegistry maps owner types to existence checkers. Attach refuses
// owners of unregistered types, which is the only integrity guarantee a
// polymorphic reference gets.
type OwnerRegistry struct {
	mu       sync.RWMutex
	checkers map[entity.OwnerType]OwnerChecker
}

// NewOwnerRegistry creates an empty registry.
func NewOwnerRegistry() *OwnerRegistry {
	return &OwnerRegistry{
		checkers: make(map[entity.OwnerType]OwnerChecker),
	}
}

// Register adds an owner type. Called at wiring time.
func (r *OwnerRegistry) Register(t entity.OwnerType, checker OwnerChecker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[t] = checker
}

// Check verifies the owner type is registered and the owner exists.
func (r *OwnerRegistry) Check(ctx context.Context, owner entity.OwnerRef) error {
	r.mu.RLock()
	checker, ok := r.checkers[owner.OwnerType]
	r.mu.RUnlock()

	if !ok {
		return apperror.NewValidation("unknown owner type").
			WithDetail("field", "ownerType").
			WithDetail("value", string(owner.OwnerType))
	}

	exists, err := checker(ctx, owner.OwnerID)
	if err != nil {
		return apperror.NewInternal(err)
	}
	if !exists {
		return apperror.NewNotFound(string(owner.OwnerType), owner.OwnerID.String())
	}
	return nil
}

// Service provides attachment operations.
type Service struct {
	repo      Repository
	registry  *OwnerRegistry
	txManager tx.Manager
}

// NewService creates a new attachment service.
func NewService(repo Repository, registry *OwnerRegistry, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		registry:  registry,
		txManager: txManager,
	}
}

// Registry exposes the owner registry for wiring.
func (s *Service) Registry() *OwnerRegistry {
	return s.registry
}

// Attach records file metadata for an owner. The owner must exist.
func (s *Service) Attach(ctx context.Context, owner entity.OwnerRef, originalName, storagePath string) (*Attachment, error) {
	if err := s.registry.Check(ctx, owner); err != nil {
		return nil, err
	}

	a := New(owner, originalName, storagePath)
	if err := a.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// GetByToken retrieves an attachment by its public token.
func (s *Service) GetByToken(ctx context.Context, token string) (*Attachment, error) {
	a, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("attachment", token)
		}
		return nil, err
	}
	return a, nil
}

// ListByOwner retrieves live attachments of an owner.
func (s *Service) ListByOwner(ctx context.Context, owner entity.OwnerRef, filter domain.ListFilter) (domain.ListResult[*Attachment], error) {
	return s.repo.ListByOwner(ctx, owner, filter)
}

// Detach soft-deletes a single attachment.
func (s *Service) Detach(ctx context.Context, attachmentID id.ID) error {
	if _, err := s.repo.GetByID(ctx, attachmentID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewNotFound("attachment", attachmentID.String())
		}
		return err
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, attachmentID, true)
	})
}

// DetachForOwner soft-deletes all attachments of an owner. Owner
// services call this from their delete hooks.
func (s *Service) DetachForOwner(ctx context.Context, owner entity.OwnerRef) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.MarkDeletedByOwner(ctx, owner)
	})
}

// CascadeDelete returns the after-delete hook body for an owner
// catalog: deleting the owner detaches everything attached to it.
func (s *Service) CascadeDelete(t entity.OwnerType) func(ctx context.Context, ownerID id.ID) error {
	return func(ctx context.Context, ownerID id.ID) error {
		return s.DetachForOwner(ctx, entity.NewOwnerRef(t, ownerID))
	}
}
