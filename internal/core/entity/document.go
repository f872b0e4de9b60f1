package entity

import (
	"context"
	"time"

	"comercio/internal/core/apperror"
	"comercio/internal/core/id"
)

// Document is the base type for business operations that move value or stock.
// Examples: Transaction (sale/purchase), Return.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within branch+type)
	Number string `db:"number" json:"number"`

	// Date is the creation date of the document. Immutable after creation.
	Date time.Time `db:"date" json:"date"`

	// BranchID is the owning branch (required)
	BranchID string `db:"branch_id" json:"branchId"`

	// Comment is an optional user comment
	Comment string `db:"comment" json:"comment,omitempty"`
}

// NewDocument creates a new Document with generated ID.
func NewDocument(branchID string) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		Date:         time.Now().UTC(),
		BranchID:     branchID,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.BranchID == "" {
		return apperror.NewValidation("branch is required").
			WithDetail("field", "branchId")
	}

	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}

	return nil
}

// GetID returns the document ID.
func (d *Document) GetID() id.ID {
	return d.ID
}
