// Package xerrors defines the sentinel errors shared across repositories,
// use cases and HTTP handlers.
package xerrors

import "errors"

// Generic
var (
	ErrInvalidInput       = errors.New("invalid input provided")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Policies and actors
var (
	ErrPolicyNotFound        = errors.New("policy not found")
	ErrActorNotFound         = errors.New("actor not found")
	ErrActorNotRequired      = errors.New("actor type not required by policy")
	ErrIncompleteActorData   = errors.New("actor information incomplete")
	ErrPolicyNumberExhausted = errors.New("could not allocate a policy number")
)

// Payments
var (
	ErrPaymentAlreadyCompleted = errors.New("policy already has a completed payment")
)

// ValidationError lists the fields that failed server-side validation.
type ValidationError struct {
	Entity string
	Fields []string
}

func (e *ValidationError) Error() string {
	msg := e.Entity + " is missing required fields:"
	for i, f := range e.Fields {
		if i > 0 {
			msg += ","
		}
		msg += " " + f
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrIncompleteActorData) match.
func (e *ValidationError) Unwrap() error { return ErrIncompleteActorData }
