package domain

import "fmt"

// ValidationError reports malformed or missing input.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// AuthError reports a missing, invalid or expired credential, or a failed login.
type AuthError struct{ Message string }

func (e *AuthError) Error() string { return e.Message }

// ForbiddenError reports an authenticated caller acting outside its role.
type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// SubscriptionError reports a shop blocked by its subscription state.
type SubscriptionError struct {
	Status  SubscriptionStatus
	Message string
}

func (e *SubscriptionError) Error() string { return e.Message }

// NotFoundError also covers records that exist in another shop.
type NotFoundError struct{ Entity string }

func (e *NotFoundError) Error() string { return e.Entity + " not found" }

// ConflictError reports a uniqueness violation.
type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type InsufficientStockError struct {
	Medicine  string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Medicine, e.Requested, e.Available)
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string) error {
	return &NotFoundError{Entity: entity}
}
