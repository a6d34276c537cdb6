package auth

import (
	"strings"

	"github.com/arrendix/protecciones/internal/policy"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleStaff  Role = "STAFF"
	RoleBroker Role = "BROKER"
)

func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch r {
	case RoleAdmin, RoleStaff, RoleBroker:
		return r, true
	}
	return "", false
}

type Capability string

const (
	CapPolicyCreate     Capability = "policy:create"
	CapPolicyRead       Capability = "policy:read"
	CapPolicyTransition Capability = "policy:transition"
	CapPolicyApprove    Capability = "policy:approve"
	CapActorManage      Capability = "actor:manage"
	CapPaymentRecord    Capability = "payment:record"
)

var grants = map[Role][]Capability{
	RoleAdmin: {
		CapPolicyCreate, CapPolicyRead, CapPolicyTransition, CapPolicyApprove,
		CapActorManage, CapPaymentRecord,
	},
	RoleStaff: {
		CapPolicyCreate, CapPolicyRead, CapPolicyTransition, CapPolicyApprove,
		CapActorManage, CapPaymentRecord,
	},
	RoleBroker: {
		CapPolicyCreate, CapPolicyRead, CapPolicyTransition, CapActorManage,
	},
}

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize is the single place role capabilities are checked.
func Authorize(role Role, c Capability) Decision {
	for _, granted := range grants[role] {
		if granted == c {
			return Decision{Allowed: true}
		}
	}
	if _, known := grants[role]; !known {
		return Decision{Reason: "unknown role " + string(role)}
	}
	return Decision{Reason: string(role) + " lacks " + string(c)}
}

// CapabilityForTransition returns what a caller needs to request target.
// Approval onwards and the rejection paths are reserved for staff.
func CapabilityForTransition(target policy.Status) Capability {
	if policy.IsRejection(target) || policy.RequiresCompleteActors(target) {
		return CapPolicyApprove
	}
	return CapPolicyTransition
}
