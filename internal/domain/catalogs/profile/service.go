package profile

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
	"comercio/internal/core/tx"
	"comercio/internal/domain"
	"comercio/pkg/logger"
)

// BranchDetacher clears administrator references when a profile is
// deleted. Implemented by the branch service.
type BranchDetacher interface {
	DetachAdministrator(ctx context.Context, profileID string) error
}

// Service provides business logic for the Profile catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Profile]
	repo     Repository
	branches BranchDetacher
}

// NewService creates a new Profile service.
func NewService(repo Repository, branches BranchDetacher, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Profile]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "profile",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		branches:       branches,
	}

	base.Hooks().OnBeforeCreate(svc.checkUnique)
	base.Hooks().OnBeforeUpdate(svc.checkUnique)
	base.Hooks().OnAfterDelete(svc.detachFromBranches)

	return svc
}

// checkUnique enforces document and email uniqueness.
func (s *Service) checkUnique(ctx context.Context, p *Profile) error {
	existing, err := s.repo.FindByDocument(ctx, p.DocumentType, p.DocumentNumber)
	if err == nil && existing.ID != p.ID {
		return apperror.NewDuplicate("profile", "document", p.DocumentNumber).
			WithDetail("documentType", string(p.DocumentType))
	}

	if p.Email != nil && *p.Email != "" {
		existing, err := s.repo.FindByEmail(ctx, *p.Email)
		if err == nil && existing.ID != p.ID {
			return apperror.NewDuplicate("profile", "email", *p.Email)
		}
	}
	return nil
}

// detachFromBranches clears administrator references after soft delete.
func (s *Service) detachFromBranches(ctx context.Context, p *Profile) error {
	if s.branches == nil {
		return nil
	}
	if err := s.branches.DetachAdministrator(ctx, p.ID.String()); err != nil {
		logger.Warn(ctx, "detach administrator failed", "profile_id", p.ID.String(), "error", err)
	}
	return nil
}

// SetPassword hashes and stores the password on the profile entity.
// Caller persists via Update.
func (s *Service) SetPassword(p *Profile, plain string) error {
	if len(plain) < 8 {
		return apperror.NewValidation("password must be at least 8 characters").
			WithDetail("field", "password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	p.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plain password against the stored hash.
func (s *Service) CheckPassword(p *Profile, plain string) bool {
	if p.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plain)) == nil
}

// FindByDocument retrieves a profile by document type and number.
func (s *Service) FindByDocument(ctx context.Context, docType DocumentType, docNumber string) (*Profile, error) {
	p, err := s.repo.FindByDocument(ctx, docType, docNumber)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("profile", docNumber)
		}
		return nil, err
	}
	return p, nil
}

// FindByEmail retrieves a profile by contact email. Used by sign-in.
func (s *Service) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	p, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("profile", email)
		}
		return nil, err
	}
	return p, nil
}

// ListByRole retrieves profiles carrying the given business role.
func (s *Service) ListByRole(ctx context.Context, role BusinessRole, filter domain.ListFilter) (domain.ListResult[*Profile], error) {
	return s.repo.ListByRole(ctx, role, filter)
}

// CheckActive verifies the profile exists and is active. Used by the
// ledger to validate employee and party references.
func (s *Service) CheckActive(ctx context.Context, profileID id.ID) error {
	p, err := s.GetByID(ctx, profileID)
	if err != nil {
		return err
	}
	if !p.IsActive() {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule, "profile is not active").
			WithDetail("profile_id", profileID.String()).
			WithDetail("state", string(p.State))
	}
	return nil
}
