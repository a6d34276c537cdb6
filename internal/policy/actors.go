package policy

import "strings"

// ActorType identifies a participant role on a policy.
type ActorType string

const (
	ActorTenant       ActorType = "tenant"
	ActorLandlord     ActorType = "landlord"
	ActorJointObligor ActorType = "joint_obligor"
	ActorAval         ActorType = "aval"
)

// ActorTypes lists every actor role in gate evaluation order.
func ActorTypes() []ActorType {
	return []ActorType{ActorTenant, ActorLandlord, ActorJointObligor, ActorAval}
}

// ParseActorType accepts the snake_case role name, also tolerating dashes
// ("joint-obligor") as used in URLs.
func ParseActorType(raw string) (ActorType, bool) {
	t := ActorType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	switch t {
	case ActorTenant, ActorLandlord, ActorJointObligor, ActorAval:
		return t, true
	}
	return "", false
}

// GuarantorType selects which guarantor actors a policy requires.
type GuarantorType string

const (
	GuarantorNone         GuarantorType = "NONE"
	GuarantorJointObligor GuarantorType = "JOINT_OBLIGOR"
	GuarantorAval         GuarantorType = "AVAL"
	GuarantorBoth         GuarantorType = "BOTH"
)

// ParseGuarantorType resolves raw into a guarantor type. Empty input maps to
// GuarantorNone.
func ParseGuarantorType(raw string) (GuarantorType, bool) {
	g := GuarantorType(strings.ToUpper(strings.TrimSpace(raw)))
	switch g {
	case "":
		return GuarantorNone, true
	case GuarantorNone, GuarantorJointObligor, GuarantorAval, GuarantorBoth:
		return g, true
	}
	return "", false
}

// Guarantors returns the guarantor actor roles implied by g.
func (g GuarantorType) Guarantors() []ActorType {
	switch g {
	case GuarantorJointObligor:
		return []ActorType{ActorJointObligor}
	case GuarantorAval:
		return []ActorType{ActorAval}
	case GuarantorBoth:
		return []ActorType{ActorJointObligor, ActorAval}
	}
	return nil
}
