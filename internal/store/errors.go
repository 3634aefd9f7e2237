package store

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports field-level problems with a request. It unwraps to
// its kind, ErrValidation unless built with NewFieldError on another sentinel.
type ValidationError struct {
	Fields map[string][]string
	kind   error
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string), kind: ErrValidation}
}

// NewFieldError returns a single-field ValidationError of the given kind.
func NewFieldError(kind error, field string, message string) *ValidationError {
	v := &ValidationError{Fields: map[string][]string{field: {message}}, kind: kind}
	if kind == nil {
		v.kind = ErrValidation
	}
	return v
}

func (v *ValidationError) Add(field string, message string) {
	v.Fields[field] = append(v.Fields[field], message)
}

func (v *ValidationError) HasErrors() bool {
	return len(v.Fields) > 0
}

// OrNil returns v when it holds at least one field error.
func (v *ValidationError) OrNil() error {
	if v == nil || !v.HasErrors() {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(v.Fields[k], ", ")))
	}
	return fmt.Sprintf("%s (%s)", v.kind.Error(), strings.Join(parts, "; "))
}

func (v *ValidationError) Unwrap() error {
	return v.kind
}

// FieldErrors extracts field messages from err, if it carries any.
func FieldErrors(err error) map[string][]string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Fields
	}
	return nil
}

// InsufficientStockError names the product that could not cover a sale line.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
	Missing   bool
}

func (e *InsufficientStockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("insufficient stock: product %s not found", e.ProductID)
	}
	return fmt.Sprintf("insufficient stock: product %s has %d, requested %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
