package errs

import (
	"errors"
	"fmt"
)

// ObjectNotFoundError reports a lookup by identifier that matched nothing.
// Repositories return it for missing rows so callers can tell absence apart
// from infrastructure failures with errors.Is(err, ErrObjectNotFound).
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an error for the object identified by id.
//
// Example:
//
//	return nil, errs.NewObjectNotFoundError("slot", id.String())
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

// NewObjectNotFoundErrorWithCause creates an error that also carries the
// underlying failure, e.g. the driver error observed during the lookup.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

// Is matches the cause as well, so domain sentinels wrapped in Cause stay
// reachable through errors.Is while Unwrap keeps returning the package sentinel.
func (e *ObjectNotFoundError) Is(target error) bool {
	return e.Cause != nil && errors.Is(e.Cause, target)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}
