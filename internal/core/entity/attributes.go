// Package entity provides base types for all domain entities.
package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Attributes holds the JSONB custom-field column every entity carries.
// Numbers are decoded as json.Number so monetary values keep their
// precision instead of collapsing to float64.
type Attributes map[string]any

// Scan implements sql.Scanner for the JSONB column.
func (a *Attributes) Scan(src any) error {
	if src == nil {
		*a = nil
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Attributes", src)
	}
	if len(raw) == 0 {
		*a = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return fmt.Errorf("decode attributes: %w", err)
	}
	*a = m
	return nil
}

// Value implements driver.Valuer for the JSONB column.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// GetString returns the string at key, or "" when absent or not a string.
func (a Attributes) GetString(key string) string {
	s, _ := a[key].(string)
	return s
}

// GetBool returns the bool at key, or false when absent or not a bool.
func (a Attributes) GetBool(key string) bool {
	b, _ := a[key].(bool)
	return b
}

// GetDecimal returns the value at key as a decimal. Accepts json.Number,
// numeric strings, and floats; anything else yields zero.
func (a Attributes) GetDecimal(key string) decimal.Decimal {
	switch v := a[key].(type) {
	case json.Number:
		if d, err := decimal.NewFromString(v.String()); err == nil {
			return d
		}
	case string:
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	}
	return decimal.Zero
}

// Has reports whether key is present, even with a nil value.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Set stores a value, allocating the map on first use.
func (a *Attributes) Set(key string, value any) Attributes {
	if *a == nil {
		*a = make(Attributes)
	}
	(*a)[key] = value
	return *a
}

// Clone returns a shallow copy.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
