package apperr

import "errors"

// Sentinel errors for known precondition failures. Services wrap these with
// fmt.Errorf("...: %w", ...) and handlers translate them to HTTP statuses via
// errors.Is, so no guard ever surfaces as a generic 500.
var (
	// ErrNotFound — the referenced expense/validation/entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden — the scope/policy check denied the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState — resolve called on a terminal validation, or a usage
	// error such as predicting a past/current month.
	ErrInvalidState = errors.New("invalid state")

	// ErrScopeViolation — a caller-supplied filter points outside the caller's
	// resolved scope. Rejected outright, never silently narrowed or widened.
	ErrScopeViolation = errors.New("filter outside allowed scope")
)
