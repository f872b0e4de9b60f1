// Package id generates the UUIDv7 identifiers every entity uses. The
// embedded timestamp keeps ids roughly insertion-ordered, which the
// transaction finalizer relies on for a stable product lock order.
package id

import "github.com/google/uuid"

// ID aliases uuid.UUID so call sites stay short.
type ID = uuid.UUID

// New returns a fresh UUIDv7.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v7
}

// Parse validates and converts a string id.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics on a malformed id. For constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil is the zero id.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether the id is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
