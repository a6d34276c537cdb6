// Package completion decides whether every actor a policy requires has
// finished supplying their information. It is a projection over stored
// informationComplete flags and never revalidates actor fields.
package completion

import (
	"context"

	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
)

// ActorState explains why a required role is unmet.
type ActorState string

const (
	StateComplete   ActorState = "complete"
	StateNotCreated ActorState = "not_created"
	StateIncomplete ActorState = "incomplete"
)

// FlagSource reads the informationComplete flag of every actor of a policy,
// grouped by role. Roles without actors may be absent.
type FlagSource interface {
	CompletionFlags(ctx context.Context, policyID uint) (map[policy.ActorType][]bool, error)
}

// Gate evaluates a policy's actor completion.
type Gate interface {
	Evaluate(ctx context.Context, p *models.Policy) (Report, error)
}

// RoleStatus is the per-role line of a Report.
type RoleStatus struct {
	Actor    policy.ActorType `json:"actor"`
	State    ActorState       `json:"state"`
	Total    int              `json:"total"`
	Complete int              `json:"complete"`
}

// Report is the outcome of one gate evaluation.
type Report struct {
	Required []policy.ActorType `json:"required"`
	Missing  []policy.ActorType `json:"missing"`
	Roles    []RoleStatus       `json:"roles"`
}

// Satisfied reports whether no required role is missing.
func (r Report) Satisfied() bool {
	return len(r.Missing) == 0
}

// FlagGate is the default Gate over a FlagSource.
type FlagGate struct {
	source FlagSource
}

func NewGate(source FlagSource) *FlagGate {
	return &FlagGate{source: source}
}

// Evaluate builds the report. A role is satisfied when at least one actor of
// that role exists and every one of them is complete.
func (g *FlagGate) Evaluate(ctx context.Context, p *models.Policy) (Report, error) {
	flags, err := g.source.CompletionFlags(ctx, p.ID)
	if err != nil {
		return Report{}, err
	}
	return Build(p.RequiredActors(), flags), nil
}

// IsSatisfied reports whether the policy may advance past collection.
func (g *FlagGate) IsSatisfied(ctx context.Context, p *models.Policy) (bool, error) {
	r, err := g.Evaluate(ctx, p)
	if err != nil {
		return false, err
	}
	return r.Satisfied(), nil
}

// MissingActors lists the required roles that are not yet complete.
func (g *FlagGate) MissingActors(ctx context.Context, p *models.Policy) ([]policy.ActorType, error) {
	r, err := g.Evaluate(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.Missing, nil
}

// Build computes a report from required roles and stored flags.
func Build(required []policy.ActorType, flags map[policy.ActorType][]bool) Report {
	r := Report{
		Required: required,
		Missing:  []policy.ActorType{},
		Roles:    make([]RoleStatus, 0, len(required)),
	}
	for _, role := range required {
		status := RoleStatus{Actor: role, Total: len(flags[role])}
		for _, done := range flags[role] {
			if done {
				status.Complete++
			}
		}

		switch {
		case status.Total == 0:
			status.State = StateNotCreated
		case status.Complete < status.Total:
			status.State = StateIncomplete
		default:
			status.State = StateComplete
		}

		if status.State != StateComplete {
			r.Missing = append(r.Missing, role)
		}
		r.Roles = append(r.Roles, status)
	}
	return r
}
