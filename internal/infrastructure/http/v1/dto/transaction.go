package dto

import (
	"time"

	"comercio/internal/core/id"
	"comercio/internal/core/types"
	"comercio/internal/domain/documents/transaction"
)

// OpenTransactionRequest is the request body for opening a draft.
// EmployeeID is optional; it defaults to the authenticated caller.
type OpenTransactionRequest struct {
	Kind          transaction.Kind          `json:"kind" binding:"required"`
	BranchID      string                    `json:"branchId" binding:"required"`
	CustomerID    *string                   `json:"customerId"`
	SupplierID    *string                   `json:"supplierId"`
	EmployeeID    string                    `json:"employeeId"`
	PaymentMethod transaction.PaymentMethod `json:"paymentMethod" binding:"required"`
	InvoiceNumber string                    `json:"invoiceNumber"`
	Comment       string                    `json:"comment"`
}

// ToParams converts the request to service parameters.
func (r *OpenTransactionRequest) ToParams() transaction.OpenParams {
	return transaction.OpenParams{
		Kind:          r.Kind,
		BranchID:      r.BranchID,
		CustomerID:    r.CustomerID,
		SupplierID:    r.SupplierID,
		EmployeeID:    r.EmployeeID,
		PaymentMethod: r.PaymentMethod,
		InvoiceNumber: r.InvoiceNumber,
		Comment:       r.Comment,
	}
}

// AddLineRequest is the request body for appending a line.
type AddLineRequest struct {
	ProductID  string         `json:"productId" binding:"required"`
	Quantity   types.Quantity `json:"quantity" binding:"required"`
	UnitCost   types.Money    `json:"unitCost"`
	Batch      *string        `json:"batch"`
	ExpiryDate *time.Time     `json:"expiryDate"`
}

// ToParams converts the request to service parameters.
func (r *AddLineRequest) ToParams(productID id.ID) transaction.AddLineParams {
	return transaction.AddLineParams{
		ProductID:  productID,
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost,
		Batch:      r.Batch,
		ExpiryDate: r.ExpiryDate,
	}
}

// SetDiscountRequest is the request body for setting the discount.
type SetDiscountRequest struct {
	Discount types.Money `json:"discount"`
}

// LineResponse is the response body for a transaction line.
type LineResponse struct {
	LineID     string         `json:"lineId"`
	LineNo     int            `json:"lineNo"`
	ProductID  string         `json:"productId"`
	Batch      *string        `json:"batch,omitempty"`
	ExpiryDate *time.Time     `json:"expiryDate,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	UnitCost   types.Money    `json:"unitCost"`
	SalePrice  types.Money    `json:"salePrice"`
	Total      types.Money    `json:"total"`
}

// FromLine creates response DTO from a domain line.
func FromLine(l transaction.Line) LineResponse {
	return LineResponse{
		LineID:     l.LineID.String(),
		LineNo:     l.LineNo,
		ProductID:  l.ProductID.String(),
		Batch:      l.Batch,
		ExpiryDate: l.ExpiryDate,
		Quantity:   l.Quantity,
		UnitCost:   l.UnitCost,
		SalePrice:  l.SalePrice,
		Total:      l.Total,
	}
}

// TransactionResponse is the response body for a transaction.
type TransactionResponse struct {
	DocumentResponse
	InvoiceNumber string                    `json:"invoiceNumber"`
	Kind          transaction.Kind          `json:"kind"`
	State         transaction.State         `json:"state"`
	SupplierID    *string                   `json:"supplierId,omitempty"`
	CustomerID    *string                   `json:"customerId,omitempty"`
	EmployeeID    string                    `json:"employeeId"`
	PaymentMethod transaction.PaymentMethod `json:"paymentMethod"`
	BaseValue     types.Money               `json:"baseValue"`
	Discount      types.Money               `json:"discount"`
	Total         types.Money               `json:"total"`
	FinalizedAt   *time.Time                `json:"finalizedAt,omitempty"`
	Lines         []LineResponse            `json:"lines"`
}

// FromTransaction creates response DTO from domain entity.
func FromTransaction(t *transaction.Transaction) *TransactionResponse {
	lines := make([]LineResponse, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = FromLine(l)
	}
	return &TransactionResponse{
		DocumentResponse: FromDocument(t.Document),
		InvoiceNumber:    t.InvoiceNumber,
		Kind:             t.Kind,
		State:            t.State,
		SupplierID:       t.SupplierID,
		CustomerID:       t.CustomerID,
		EmployeeID:       t.EmployeeID,
		PaymentMethod:    t.PaymentMethod,
		BaseValue:        t.BaseValue,
		Discount:         t.Discount,
		Total:            t.Total,
		FinalizedAt:      t.FinalizedAt,
		Lines:            lines,
	}
}
