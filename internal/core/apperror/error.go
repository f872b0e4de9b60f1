// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation = "VALIDATION_ERROR"

	// Business rule violations (422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeInvalidState           = "INVALID_STATE"
	CodeEmptyTransaction       = "EMPTY_TRANSACTION"
	CodeOverReturn             = "OVER_RETURN"
	CodeInvalidLineState       = "INVALID_LINE_STATE"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict             = "CONFLICT"
	CodeDuplicate            = "DUPLICATE_ENTRY"
	CodeDuplicateName        = "DUPLICATE_NAME"
	CodeDuplicateAssociation = "DUPLICATE_ASSOCIATION"
	CodeProtectedReference   = "PROTECTED_REFERENCE"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, quantities, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInvalidState creates an illegal-transition error with transition context.
func NewInvalidState(entity string, id any, current, attempted string) *AppError {
	return &AppError{
		Code:       CodeInvalidState,
		Message:    fmt.Sprintf("%s cannot transition from %s to %s", entity, current, attempted),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"entity":     entity,
			"id":         id,
			"state":      current,
			"transition": attempted,
		},
	}
}

// NewEmptyTransaction is returned when finalizing a transaction with no lines.
func NewEmptyTransaction(id any) *AppError {
	return &AppError{
		Code:       CodeEmptyTransaction,
		Message:    "transaction has no lines",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"transaction_id": id},
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewOverReturn is returned when a return exceeds the remaining returnable quantity.
func NewOverReturn(lineID string, requested, remaining string) *AppError {
	return &AppError{
		Code:       CodeOverReturn,
		Message:    "return quantity exceeds remaining returnable quantity",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"line_id":   lineID,
			"requested": requested,
			"remaining": remaining,
		},
	}
}

// NewInvalidLineState is returned when filing a return against a line whose
// owning transaction is not finalized.
func NewInvalidLineState(lineID string, transactionState string) *AppError {
	return &AppError{
		Code:       CodeInvalidLineState,
		Message:    "transaction line is not returnable",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"line_id":           lineID,
			"transaction_state": transactionState,
		},
	}
}

// NewProtectedReference is returned when deleting an entity that a
// PROTECT-style relationship still points at.
func NewProtectedReference(entity string, id any, referencedBy string) *AppError {
	return &AppError{
		Code:       CodeProtectedReference,
		Message:    fmt.Sprintf("%s is referenced by %s and cannot be deleted", entity, referencedBy),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id, "referenced_by": referencedBy},
	}
}

// NewDuplicateName is returned when a (name, parent) pair already exists.
func NewDuplicateName(entity, name string) *AppError {
	return &AppError{
		Code:       CodeDuplicateName,
		Message:    fmt.Sprintf("%s with this name already exists", entity),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "name": name},
	}
}

// NewDuplicateAssociation is returned when a (product, category) pair repeats.
func NewDuplicateAssociation(productID, categoryID string) *AppError {
	return &AppError{
		Code:       CodeDuplicateAssociation,
		Message:    "product is already associated with this category",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"product_id": productID, "category_id": categoryID},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return HasCode(err, CodeConcurrentModification)
}

// HasCode checks whether err carries the given machine code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
