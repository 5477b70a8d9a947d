package errs

import "fmt"

// AccessDeniedError is returned when a principal may not act on a resource.
type AccessDeniedError struct {
	Action   string
	Resource string
}

func NewAccessDeniedError(action, resource string) *AccessDeniedError {
	return &AccessDeniedError{Action: action, Resource: resource}
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s", ErrAccessDenied, e.Action, e.Resource)
}

func (e *AccessDeniedError) Unwrap() error {
	return ErrAccessDenied
}
