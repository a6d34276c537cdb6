//go:generate go run ../../tools/genregistry .

package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/arrendix/protecciones/internal/policy"
)

// Policy represents one lease-guarantee contract in progress
type Policy struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	PolicyNumber string        `gorm:"size:32;uniqueIndex;not null" json:"policyNumber"`
	Status       policy.Status `gorm:"size:32;not null;default:DRAFT;index" json:"status"`
	StatusReason string        `gorm:"type:text" json:"statusReason,omitempty"`

	PropertyAddress string               `gorm:"type:text" json:"propertyAddress"`
	RentAmount      decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"rentAmount"`
	PremiumRate     decimal.Decimal      `gorm:"type:decimal(5,4);not null" json:"premiumRate"`
	Premium         decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"premium"`
	IVA             decimal.Decimal      `gorm:"column:iva;type:decimal(12,2);not null" json:"iva"`
	TotalPrice      decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"totalPrice"`
	GuarantorType   policy.GuarantorType `gorm:"size:16;not null;default:NONE" json:"guarantorType"`

	TenantRequired   bool `gorm:"not null" json:"tenantRequired"`
	LandlordRequired bool `gorm:"not null" json:"landlordRequired"`

	CreatedByID string `gorm:"size:64;index" json:"createdById"`

	SubmittedAt      *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	ContractSignedAt *time.Time `json:"contractSignedAt,omitempty"`
	ActivatedAt      *time.Time `json:"activatedAt,omitempty"`
	ExpiredAt        *time.Time `json:"expiredAt,omitempty"`
	CancelledAt      *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Tenants       []Tenant         `gorm:"constraint:OnDelete:CASCADE;" json:"tenants,omitempty"`
	Landlords     []Landlord       `gorm:"constraint:OnDelete:CASCADE;" json:"landlords,omitempty"`
	JointObligors []JointObligor   `gorm:"constraint:OnDelete:CASCADE;" json:"jointObligors,omitempty"`
	Avals         []Aval           `gorm:"constraint:OnDelete:CASCADE;" json:"avals,omitempty"`
	Activities    []PolicyActivity `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Payments      []Payment        `gorm:"constraint:OnDelete:CASCADE;" json:"payments,omitempty"`
}

// RequiresActor reports whether t must complete its information before the
// policy can be approved.
func (p *Policy) RequiresActor(t policy.ActorType) bool {
	for _, required := range p.RequiredActors() {
		if required == t {
			return true
		}
	}
	return false
}

// RequiredActors lists the actor roles this policy needs, in gate order.
func (p *Policy) RequiredActors() []policy.ActorType {
	var out []policy.ActorType
	if p.TenantRequired {
		out = append(out, policy.ActorTenant)
	}
	if p.LandlordRequired {
		out = append(out, policy.ActorLandlord)
	}
	return append(out, p.GuarantorType.Guarantors()...)
}
