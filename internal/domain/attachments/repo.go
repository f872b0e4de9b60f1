package attachments

import (
	"context"

	"comercio/internal/core/entity"
	"comercio/internal/core/id"
	"comercio/internal/domain"
)

// Repository defines the interface for Attachment persistence.
type Repository interface {
	Create(ctx context.Context, a *Attachment) error
	GetByID(ctx context.Context, attachmentID id.ID) (*Attachment, error)
	GetByToken(ctx context.Context, token string) (*Attachment, error)
	Update(ctx context.Context, a *Attachment) error
	SetDeletionMark(ctx context.Context, attachmentID id.ID, marked bool) error

	// ListByOwner retrieves live attachments of an owner.
	ListByOwner(ctx context.Context, owner entity.OwnerRef, filter domain.ListFilter) (domain.ListResult[*Attachment], error)

	// MarkDeletedByOwner soft-deletes all attachments of an owner.
	// Owner-delete cascade; there is no FK behind the polymorphic ref.
	MarkDeletedByOwner(ctx context.Context, owner entity.OwnerRef) error
}
