package dto

import (
	"time"

	"comercio/internal/core/types"
	"comercio/internal/domain/documents/returns"
	"comercio/internal/domain/documents/transaction"
)

// FileReturnRequest is the request body for filing a return.
// EmployeeID is optional; it defaults to the authenticated caller.
type FileReturnRequest struct {
	LineID     string         `json:"lineId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	Reason     returns.Reason `json:"reason" binding:"required"`
	EmployeeID string         `json:"employeeId"`
	Comment    string         `json:"comment"`
}

// ReturnResponse is the response body for a return.
type ReturnResponse struct {
	DocumentResponse
	LineID        string           `json:"lineId"`
	TransactionID string           `json:"transactionId"`
	ProductID     string           `json:"productId"`
	Kind          transaction.Kind `json:"kind"`
	Reason        returns.Reason   `json:"reason"`
	State         returns.State    `json:"state"`
	Quantity      types.Quantity   `json:"quantity"`
	UnitPrice     types.Money      `json:"unitPrice"`
	RefundAmount  types.Money      `json:"refundAmount"`
	EmployeeID    string           `json:"employeeId"`
	ProcessedAt   *time.Time       `json:"processedAt,omitempty"`
}

// FromReturn creates response DTO from domain entity.
func FromReturn(r *returns.Return) *ReturnResponse {
	return &ReturnResponse{
		DocumentResponse: FromDocument(r.Document),
		LineID:           r.LineID.String(),
		TransactionID:    r.TransactionID.String(),
		ProductID:        r.ProductID.String(),
		Kind:             r.Kind,
		Reason:           r.Reason,
		State:            r.State,
		Quantity:         r.Quantity,
		UnitPrice:        r.UnitPrice,
		RefundAmount:     r.RefundAmount,
		EmployeeID:       r.EmployeeID,
		ProcessedAt:      r.ProcessedAt,
	}
}

// ReturnableQuantityResponse reports the remaining returnable quantity
// of a transaction line.
type ReturnableQuantityResponse struct {
	LineID    string         `json:"lineId"`
	Remaining types.Quantity `json:"remaining"`
}
