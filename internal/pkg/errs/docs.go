// Package errs holds the typed errors shared by the domain, the use cases and
// the adapters.
//
// Every type unwraps to a sentinel, so callers classify with errors.Is and
// read details with errors.As:
//   - ValueIsRequiredError unwraps to ErrValueIsRequired
//   - ValueIsInvalidError unwraps to ErrValueIsInvalid
//   - ValueIsOutOfRangeError unwraps to ErrValueIsOutOfRange
//   - ObjectNotFoundError unwraps to ErrObjectNotFound
//   - VersionIsInvalidError unwraps to ErrVersionIsInvalid
//   - AccessDeniedError unwraps to ErrAccessDenied
//
// A type built with a cause also matches that cause, which lets a domain
// sentinel such as slot.ErrInvalidCapacity survive being reported as a
// generic invalid value.
package errs
