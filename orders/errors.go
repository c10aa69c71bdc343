package orders

import (
	"errors"
	"fmt"

	"github.com/bookstack/orders-management-api/validation"
)

var ErrNilStorage = errors.New("nil order storage supplied")

// FieldFailure is a single rule violation, tagged with the request field
// it targets and the user-facing message.
type FieldFailure = validation.FieldFailure

// ValidationError carries the full ordered list of rule violations for a
// rejected request. It is recoverable by the caller and is reported as a
// structured 4xx response, never as an internal fault.
type ValidationError = validation.Error

// UniqueConstraintError reports a storage-level uniqueness violation on
// insert. The storage layer returns it when a concurrent request won the
// race between the uniqueness check and the insert; the orchestrator maps
// it back into the field-level validation error shape.
type UniqueConstraintError struct {
	Column string // "title" or "isbn"
	Err    error
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("unique constraint violated on column %q", e.Column)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}
