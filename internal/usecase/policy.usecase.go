package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/completion"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/pricing"
	"github.com/arrendix/protecciones/internal/repository"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

// PolicyUsecase covers policy creation and reads. Status changes go through
// workflow.Service.
type PolicyUsecase struct {
	policies   *repository.PolicyRepository
	pricing    *pricing.Calculator
	gate       completion.Gate
	activities activity.Logger
	logger     *zap.Logger
}

func NewPolicyUsecase(
	policies *repository.PolicyRepository,
	calc *pricing.Calculator,
	gate completion.Gate,
	activities activity.Logger,
	logger *zap.Logger,
) *PolicyUsecase {
	return &PolicyUsecase{
		policies:   policies,
		pricing:    calc,
		gate:       gate,
		activities: activities,
		logger:     logger,
	}
}

type CreatePolicyInput struct {
	PropertyAddress  string          `json:"propertyAddress"`
	RentAmount       decimal.Decimal `json:"rentAmount"`
	GuarantorType    string          `json:"guarantorType"`
	TenantRequired   *bool           `json:"tenantRequired,omitempty"`
	LandlordRequired *bool           `json:"landlordRequired,omitempty"`
}

// CreatedPolicy is the result of CreatePolicy. Warning is set when the
// policy was stored but its "created" activity was not.
type CreatedPolicy struct {
	Policy  *models.Policy `json:"policy"`
	Warning string         `json:"warning,omitempty"`
}

// CreatePolicy prices and numbers a new DRAFT policy.
func (u *PolicyUsecase) CreatePolicy(ctx context.Context, in CreatePolicyInput, by activity.Performer, ip string) (*CreatedPolicy, error) {
	if strings.TrimSpace(in.PropertyAddress) == "" {
		return nil, fmt.Errorf("%w: propertyAddress is required", xerrors.ErrInvalidInput)
	}
	guarantor, ok := policy.ParseGuarantorType(in.GuarantorType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown guarantorType %q", xerrors.ErrInvalidInput, in.GuarantorType)
	}
	quote, err := u.pricing.Quote(in.RentAmount, guarantor)
	if err != nil {
		return nil, err
	}

	p := &models.Policy{
		Status:           policy.StatusDraft,
		PropertyAddress:  strings.TrimSpace(in.PropertyAddress),
		RentAmount:       quote.Rent,
		PremiumRate:      quote.Rate,
		Premium:          quote.Premium,
		IVA:              quote.IVA,
		TotalPrice:       quote.TotalPrice,
		GuarantorType:    guarantor,
		TenantRequired:   boolOr(in.TenantRequired, true),
		LandlordRequired: boolOr(in.LandlordRequired, true),
		CreatedByID:      by.ID,
	}
	if err := u.policies.Create(ctx, p); err != nil {
		return nil, err
	}

	warning := recordActivity(ctx, u.activities, u.logger, activity.Entry{
		PolicyID:    p.ID,
		Action:      activity.ActionCreated,
		Description: "Póliza " + p.PolicyNumber + " creada",
		PerformedBy: by,
		Details: map[string]interface{}{
			"policyNumber":  p.PolicyNumber,
			"guarantorType": string(guarantor),
			"totalPrice":    p.TotalPrice.StringFixed(2),
		},
		IPAddress: ip,
	})
	return &CreatedPolicy{Policy: p, Warning: warning}, nil
}

// GetPolicy returns the policy with its actors and payments.
func (u *PolicyUsecase) GetPolicy(ctx context.Context, id uint) (*models.Policy, error) {
	return u.policies.FindDetailed(ctx, id)
}

// ListPolicies accepts only statuses that are exposed as list filters.
func (u *PolicyUsecase) ListPolicies(ctx context.Context, status string, limit, offset int) ([]models.Policy, error) {
	f := repository.PolicyFilter{Limit: limit, Offset: offset}
	if status != "" {
		s, ok := policy.ParseStatus(status)
		if !ok || !policy.IsFilterable(s) {
			return nil, fmt.Errorf("%w: status %q cannot be used as a filter", xerrors.ErrInvalidInput, status)
		}
		f.Status = s
	}
	return u.policies.List(ctx, f)
}

// Activities returns the audit trail newest first.
func (u *PolicyUsecase) Activities(ctx context.Context, id uint) ([]models.PolicyActivity, error) {
	if _, err := u.policies.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return u.activities.List(ctx, id, activity.Newest)
}

// Completion reports the actor completion gate for a policy.
func (u *PolicyUsecase) Completion(ctx context.Context, id uint) (completion.Report, error) {
	p, err := u.policies.FindByID(ctx, id)
	if err != nil {
		return completion.Report{}, err
	}
	return u.gate.Evaluate(ctx, p)
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
