package entity

import (
	"context"
	"fmt"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
)

// OwnerType identifies the kind of entity that owns a polymorphic child
// (an attachment, a note). The set of valid types is defined by the
// owner registry at wiring time, not here.
type OwnerType string

const (
	OwnerProduct     OwnerType = "product"
	OwnerCategory    OwnerType = "category"
	OwnerCompany     OwnerType = "company"
	OwnerBranch      OwnerType = "branch"
	OwnerProfile     OwnerType = "profile"
	OwnerTransaction OwnerType = "transaction"
	OwnerReturn      OwnerType = "return"
)

// OwnerRef is a polymorphic reference: (type, id) instead of a typed FK.
// There is no storage-level constraint behind it; services validate the
// owner through the registry and handle cascade explicitly.
type OwnerRef struct {
	OwnerType OwnerType `db:"owner_type" json:"ownerType"`
	OwnerID   id.ID     `db:"owner_id" json:"ownerId"`
}

// NewOwnerRef builds a reference to the given owner.
func NewOwnerRef(t OwnerType, ownerID id.ID) OwnerRef {
	return OwnerRef{OwnerType: t, OwnerID: ownerID}
}

// Validate implements Validatable interface.
func (r OwnerRef) Validate(ctx context.Context) error {
	if r.OwnerType == "" {
		return apperror.NewValidation("owner type is required").
			WithDetail("field", "ownerType")
	}
	if id.IsNil(r.OwnerID) {
		return apperror.NewValidation("owner id is required").
			WithDetail("field", "ownerId")
	}
	return nil
}

// String returns "type:id", useful for logs and cache keys.
func (r OwnerRef) String() string {
	return fmt.Sprintf("%s:%s", r.OwnerType, r.OwnerID)
}
