package entity

import (
	"context"
	"time"

	"comercio/internal/core/id"
)

// Validatable is implemented by entities that check their own
// invariants. Validation never touches the database; cross-row rules
// live in service hooks.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity carries the columns shared by every stored row: the id,
// the soft-delete mark, the optimistic-lock version, the JSONB custom
// fields, and the timestamps.
type BaseEntity struct {
	ID id.ID `db:"id" json:"id"`

	// DeletionMark hides the row; deletion is a state, not a removal.
	DeletionMark bool `db:"deletion_mark" json:"deletionMark"`

	// Version increments on every update and backs optimistic locking.
	Version int `db:"version" json:"version"`

	Attributes Attributes `db:"attributes" json:"attributes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewBaseEntity mints an id and stamps the timestamps.
func NewBaseEntity() BaseEntity {
	now := time.Now().UTC()
	return BaseEntity{
		ID:        id.New(),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps the version and refreshes UpdatedAt.
func (b *BaseEntity) Touch() {
	b.Version++
	b.UpdatedAt = time.Now().UTC()
}

// MarkDeleted sets the deletion mark.
func (b *BaseEntity) MarkDeleted() {
	b.DeletionMark = true
}

// Undelete clears the deletion mark.
func (b *BaseEntity) Undelete() {
	b.DeletionMark = false
}

// SetVersion overwrites the version; repositories call it after a sync.
func (b *BaseEntity) SetVersion(v int) {
	b.Version = v
}

// SetAttribute stores a custom field.
func (b *BaseEntity) SetAttribute(key string, value any) {
	if b.Attributes == nil {
		b.Attributes = make(Attributes)
	}
	b.Attributes[key] = value
}

// GetAttribute reads a custom field, nil when absent.
func (b *BaseEntity) GetAttribute(key string) any {
	if b.Attributes == nil {
		return nil
	}
	return b.Attributes[key]
}

// BaseCatalog is the persistence base for reference data rows.
type BaseCatalog struct {
	BaseEntity
}

func NewBaseCatalog() BaseCatalog {
	return BaseCatalog{BaseEntity: NewBaseEntity()}
}

// BaseDocument adds actor audit fields for ledger documents.
type BaseDocument struct {
	BaseEntity

	CreatedBy string `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string `db:"updated_by" json:"updatedBy,omitempty"`
}

func NewBaseDocument() BaseDocument {
	return BaseDocument{BaseEntity: NewBaseEntity()}
}
