package ledger

import "fmt"

// NotFoundError reports a referenced entity that is absent or not
// owned by the expected parent.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports an operation that would violate a uniqueness
// or emptiness rule, e.g. a duplicate invoice period or deleting an
// invoice that still has transactions.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ValidationError reports a field-level problem with a proposed entry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MutationFailedError reports a failed aggregate sub-update. It always
// surfaces inside a storage transaction, so no partial adjustment
// survives it.
type MutationFailedError struct {
	Op  string
	Err error
}

func (e *MutationFailedError) Error() string {
	return fmt.Sprintf("mutation failed: %s: %v", e.Op, e.Err)
}

func (e *MutationFailedError) Unwrap() error {
	return e.Err
}
