package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of one payment attempt.
type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentCompleted  PaymentStatus = "COMPLETED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentCancelled  PaymentStatus = "CANCELLED"
	PaymentRefunded   PaymentStatus = "REFUNDED"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentProcessing, PaymentCompleted, PaymentFailed, PaymentCancelled, PaymentRefunded:
		return true
	}
	return false
}

// Payment is one payment attempt against a policy, as reported by the card
// processor
type Payment struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PolicyID         uint            `gorm:"not null;index" json:"policyId"`
	Amount           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency         string          `gorm:"size:3;not null" json:"currency"`
	Status           PaymentStatus   `gorm:"size:16;not null;index" json:"status"`
	GatewaySessionID *string         `gorm:"size:255;index" json:"gatewaySessionId,omitempty"`
	GatewayIntentID  *string         `gorm:"size:255;index" json:"gatewayIntentId,omitempty"`
	FailureReason    string          `gorm:"type:text" json:"failureReason,omitempty"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
