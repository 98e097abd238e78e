package core

import (
	"errors"
	"fmt"
)

// Error classes surfaced to callers. Field-level errors wrap one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrAccessDenied = errors.New("access denied")
	ErrNotFound     = errors.New("not found")
	ErrInUse        = errors.New("resource in use")
)

// EntityKind is the closed set of owner-scoped records.
type EntityKind int

const (
	KindAccount EntityKind = iota + 1
	KindCategory
	KindCreditCard
	KindTransaction
	KindBudgetGoal
)

func (k EntityKind) String() string {
	switch k {
	case KindAccount:
		return "account"
	case KindCategory:
		return "category"
	case KindCreditCard:
		return "credit card"
	case KindTransaction:
		return "transaction"
	case KindBudgetGoal:
		return "budget goal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AccessError reports a record that does not exist for the requesting owner.
type AccessError struct {
	Kind EntityKind
	ID   int64
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("access denied: %s %d", e.Kind, e.ID)
}

func (e *AccessError) Is(target error) bool {
	return target == ErrAccessDenied
}

// FieldError is a validation failure tied to one request field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func validationErr(field string, err error) error {
	return &FieldError{Field: field, Err: err}
}

// NewValidationError builds a field error outside this package.
func NewValidationError(field string, err error) error {
	return validationErr(field, err)
}
