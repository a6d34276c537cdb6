package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/repository"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

type PaymentUsecase struct {
	policies   *repository.PolicyRepository
	payments   *repository.PaymentRepository
	activities activity.Logger
	logger     *zap.Logger
	now        func() time.Time
}

func NewPaymentUsecase(
	policies *repository.PolicyRepository,
	payments *repository.PaymentRepository,
	activities activity.Logger,
	logger *zap.Logger,
) *PaymentUsecase {
	return &PaymentUsecase{
		policies:   policies,
		payments:   payments,
		activities: activities,
		logger:     logger,
		now:        time.Now,
	}
}

// PaymentInput is a gateway result reported by the payment collaborator.
type PaymentInput struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	GatewaySessionID string          `json:"gatewaySessionId"`
	GatewayIntentID  string          `json:"gatewayIntentId"`
	FailureReason    string          `json:"failureReason"`
}

type RecordedPayment struct {
	Payment *models.Payment `json:"payment"`
	Warning string          `json:"warning,omitempty"`
}

// RecordPayment stores one payment attempt. Amount defaults to the policy's
// total price.
func (u *PaymentUsecase) RecordPayment(ctx context.Context, policyID uint, in PaymentInput, by activity.Performer, ip string) (*RecordedPayment, error) {
	p, err := u.policies.FindByID(ctx, policyID)
	if err != nil {
		return nil, err
	}

	status := models.PaymentStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", xerrors.ErrInvalidInput, in.Status)
	}
	amount := in.Amount
	if amount.IsZero() {
		amount = p.TotalPrice
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", xerrors.ErrInvalidInput)
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "MXN"
	}

	payment := &models.Payment{
		PolicyID:         policyID,
		Amount:           amount,
		Currency:         currency,
		Status:           status,
		GatewaySessionID: optional(in.GatewaySessionID),
		GatewayIntentID:  optional(in.GatewayIntentID),
		FailureReason:    in.FailureReason,
	}
	if status == models.PaymentCompleted {
		paid := u.now()
		payment.PaidAt = &paid
	}
	if err := u.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	action := activity.ActionPaymentRecorded
	description := "Pago registrado (" + string(status) + ")"
	if status == models.PaymentCompleted {
		action = activity.ActionPaymentCompleted
		description = "Pago completado"
	}
	warning := recordActivity(ctx, u.activities, u.logger, activity.Entry{
		PolicyID:    policyID,
		Action:      action,
		Description: description,
		PerformedBy: by,
		Details: map[string]interface{}{
			"paymentId": payment.ID,
			"amount":    payment.Amount.StringFixed(2),
			"currency":  payment.Currency,
			"status":    string(status),
		},
		IPAddress: ip,
	})
	return &RecordedPayment{Payment: payment, Warning: warning}, nil
}

// PaymentList is every attempt on a policy plus the one that paid it, if any.
type PaymentList struct {
	Payments  []models.Payment `json:"payments"`
	Completed *models.Payment  `json:"completed"`
}

func (u *PaymentUsecase) ListPayments(ctx context.Context, policyID uint) (*PaymentList, error) {
	if _, err := u.policies.FindByID(ctx, policyID); err != nil {
		return nil, err
	}
	payments, err := u.payments.ListByPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	completed, err := u.payments.CompletedForPolicy(ctx, policyID)
	if err != nil {
		return nil, err
	}
	return &PaymentList{Payments: payments, Completed: completed}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
