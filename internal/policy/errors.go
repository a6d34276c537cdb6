package policy

import (
	"fmt"
	"strings"
)

// ErrorCode classifies why a transition was refused.
type ErrorCode string

const (
	CodeNone              ErrorCode = ""
	CodeInvalidStatus     ErrorCode = "INVALID_STATUS"
	CodeMissingReason     ErrorCode = "MISSING_REASON"
	CodeIncompleteActors  ErrorCode = "INCOMPLETE_ACTORS"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
)

// TransitionError represents a refused status change.
type TransitionError struct {
	Code    ErrorCode
	From    Status
	To      Status
	Reason  string
	Missing []ActorType
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s->%s]: %s", e.From, e.To, e.Reason)
}

// Is matches another *TransitionError carrying the same code, so callers can
// test with errors.Is(err, policy.ErrIncompleteActors).
func (e *TransitionError) Is(target error) bool {
	t, ok := target.(*TransitionError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.From == "" && t.To == ""
}

var (
	ErrInvalidStatus     = &TransitionError{Code: CodeInvalidStatus, Reason: "unknown status"}
	ErrMissingReason     = &TransitionError{Code: CodeMissingReason, Reason: "a reason is required"}
	ErrIncompleteActors  = &TransitionError{Code: CodeIncompleteActors, Reason: "required actors have not completed their information"}
	ErrInvalidTransition = &TransitionError{Code: CodeInvalidTransition, Reason: "transition not allowed"}
)

func missingReason(missing []ActorType) string {
	names := make([]string, len(missing))
	for i, m := range missing {
		names[i] = string(m)
	}
	return "incomplete actors: " + strings.Join(names, ", ")
}
