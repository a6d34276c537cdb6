// Package workflow is the only place a policy's status changes. It loads the
// policy, consults the completion gate and the transition validator, persists
// the new status with its milestone stamp and appends the audit entry.
package workflow

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/completion"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
)

// PolicyStore is the slice of the policy repository the workflow needs.
type PolicyStore interface {
	FindByID(ctx context.Context, id uint) (*models.Policy, error)
	UpdateStatus(ctx context.Context, p *models.Policy, columns ...string) error
}

// Request asks for one status change.
type Request struct {
	PolicyID    uint
	Status      policy.Status
	PerformedBy activity.Performer
	Reason      string
	IPAddress   string
}

// Result is returned for every accepted request. Activity is nil for no-ops
// and when the audit write failed, in which case Warning says so.
type Result struct {
	Policy   *models.Policy
	Activity *models.PolicyActivity
	NoOp     bool
	Warning  string
}

// Service orchestrates status transitions.
type Service struct {
	policies   PolicyStore
	validator  policy.Validator
	gate       completion.Gate
	activities activity.Logger
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(policies PolicyStore, validator policy.Validator, gate completion.Gate, activities activity.Logger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		policies:   policies,
		validator:  validator,
		gate:       gate,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// Transition applies req. Rejected requests return a *policy.TransitionError
// and leave no trace in storage.
func (s *Service) Transition(ctx context.Context, req Request) (*Result, error) {
	p, err := s.policies.FindByID(ctx, req.PolicyID)
	if err != nil {
		return nil, err
	}

	requested := policy.Status(strings.ToUpper(strings.TrimSpace(string(req.Status))))
	reason := strings.TrimSpace(req.Reason)
	current := p.Status

	tctx := policy.TransitionContext{Reason: reason}
	if s.needsGate(current, requested) {
		report, err := s.gate.Evaluate(ctx, p)
		if err != nil {
			return nil, err
		}
		tctx.GateSatisfied = report.Satisfied()
		tctx.Missing = report.Missing
	}

	decision := s.validator.Validate(current, requested, tctx)
	if err := decision.Err(); err != nil {
		s.logger.Debug("transition rejected",
			zap.Uint("policy_id", p.ID),
			zap.String("from", string(current)),
			zap.String("to", string(requested)),
			zap.String("code", string(decision.Code)),
		)
		return nil, err
	}
	if decision.NoOp {
		return &Result{Policy: p, NoOp: true}, nil
	}

	now := s.now()
	columns := []string{"status", "updated_at"}
	p.Status = requested
	p.UpdatedAt = now
	if reason != "" {
		p.StatusReason = reason
		columns = append(columns, "status_reason")
	}
	if col := stampMilestone(p, requested, now); col != "" {
		columns = append(columns, col)
	}

	if err := s.policies.UpdateStatus(ctx, p, columns...); err != nil {
		return nil, err
	}

	res := &Result{Policy: p}
	rec, err := s.activities.Record(ctx, activity.Entry{
		PolicyID:    p.ID,
		Action:      strings.ToLower(string(requested)),
		Description: "Estado cambiado a " + policy.LabelFor(requested),
		PerformedBy: req.PerformedBy,
		Details: map[string]interface{}{
			"previousStatus": string(current),
			"newStatus":      string(requested),
			"reason":         reason,
		},
		IPAddress: req.IPAddress,
	})
	if err != nil {
		s.logger.Warn("status changed but activity was not recorded",
			zap.Uint("policy_id", p.ID),
			zap.String("status", string(requested)),
			zap.Error(err),
		)
		res.Warning = "status updated but the activity log entry could not be written"
		return res, nil
	}
	res.Activity = rec

	s.logger.Info("policy status changed",
		zap.Uint("policy_id", p.ID),
		zap.String("policy_number", p.PolicyNumber),
		zap.String("from", string(current)),
		zap.String("to", string(requested)),
	)
	return res, nil
}

func (s *Service) needsGate(current, requested policy.Status) bool {
	return requested != current &&
		!policy.IsTerminal(current) &&
		policy.RequiresCompleteActors(requested)
}

// stampMilestone sets the timestamp field tied to status, unless it was
// already set, and returns its column name.
func stampMilestone(p *models.Policy, status policy.Status, at time.Time) string {
	var field **time.Time
	var column string
	switch status {
	case policy.StatusUnderInvestigation:
		field, column = &p.SubmittedAt, "submitted_at"
	case policy.StatusApproved:
		field, column = &p.ApprovedAt, "approved_at"
	case policy.StatusContractSigned:
		field, column = &p.ContractSignedAt, "contract_signed_at"
	case policy.StatusActive:
		field, column = &p.ActivatedAt, "activated_at"
	case policy.StatusExpired:
		field, column = &p.ExpiredAt, "expired_at"
	case policy.StatusCancelled:
		field, column = &p.CancelledAt, "cancelled_at"
	default:
		return ""
	}
	if *field != nil {
		return ""
	}
	t := at
	*field = &t
	return column
}
