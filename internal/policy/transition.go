package policy

import "strings"

// TransitionContext carries the facts the validator needs beyond the two
// statuses. GateSatisfied and Missing come from the actor completion gate and
// are only consulted for targets that require complete actors.
type TransitionContext struct {
	Reason        string
	GateSatisfied bool
	Missing       []ActorType
}

// Decision is the outcome of validating one transition.
type Decision struct {
	Allowed bool
	NoOp    bool
	Code    ErrorCode
	Message string
	Missing []ActorType
	From    Status
	To      Status
}

// Err returns nil for allowed decisions and a *TransitionError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &TransitionError{Code: d.Code, From: d.From, To: d.To, Reason: d.Message, Missing: d.Missing}
}

// Validator decides whether a status change is permitted. Implementations
// must be free of side effects.
type Validator interface {
	Validate(current, requested Status, ctx TransitionContext) Decision
}

// IsRejection reports whether s is reached through the rejection/denial path,
// which is open from any non-terminal status but needs a reason.
func IsRejection(s Status) bool {
	return s == StatusInvestigationRejected || s == StatusCancelled
}

// RequiresCompleteActors reports whether entering s needs every required
// actor to have completed their information.
func RequiresCompleteActors(s Status) bool {
	return !IsRejection(s) && Rank(s) >= Rank(StatusApproved)
}

// RuleValidator implements the lifecycle ordering rules.
type RuleValidator struct{}

// NewValidator returns the default rule-based validator.
func NewValidator() *RuleValidator {
	return &RuleValidator{}
}

func (RuleValidator) Validate(current, requested Status, ctx TransitionContext) Decision {
	d := Decision{From: current, To: requested}

	if !requested.Valid() {
		return d.deny(CodeInvalidStatus, "unknown status "+string(requested))
	}
	if requested == current {
		d.Allowed = true
		d.NoOp = true
		return d
	}
	if IsTerminal(current) {
		return d.deny(CodeInvalidTransition, "policy is "+LabelFor(current)+" and cannot change status")
	}

	if IsRejection(requested) {
		if strings.TrimSpace(ctx.Reason) == "" {
			return d.deny(CodeMissingReason, "a reason is required to move a policy to "+string(requested))
		}
		d.Allowed = true
		return d
	}

	if !isForward(current, requested) {
		return d.deny(CodeInvalidTransition, "cannot move from "+string(current)+" to "+string(requested))
	}

	if RequiresCompleteActors(requested) && !ctx.GateSatisfied {
		d = d.deny(CodeIncompleteActors, missingReason(ctx.Missing))
		d.Missing = ctx.Missing
		return d
	}

	d.Allowed = true
	return d
}

// isForward allows any strictly later status plus the single backwards edge
// from a rejected investigation to information collection.
func isForward(current, requested Status) bool {
	if current == StatusInvestigationRejected && requested == StatusCollectingInfo {
		return true
	}
	return Rank(requested) > Rank(current)
}

func (d Decision) deny(code ErrorCode, msg string) Decision {
	d.Allowed = false
	d.Code = code
	d.Message = msg
	return d
}
