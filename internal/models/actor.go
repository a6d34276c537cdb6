package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/policy"
)

// Actor is implemented by every participant table attached to a policy.
type Actor interface {
	ActorType() policy.ActorType
	GetID() uint
	GetPolicyID() uint
	GetProfile() *ActorProfile
}

// ActorProfile holds the identity, contact and financial fields shared by
// all participant types.
type ActorProfile struct {
	IsCompany   bool   `gorm:"not null;default:false" json:"isCompany"`
	FullName    string `gorm:"size:255" json:"fullName"`
	CompanyName string `gorm:"size:255" json:"companyName,omitempty"`
	RFC         string `gorm:"column:rfc;size:13" json:"rfc,omitempty"`
	CURP        string `gorm:"column:curp;size:18" json:"curp,omitempty"`
	Nationality string `gorm:"size:32;default:MEXICAN" json:"nationality"`

	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:32" json:"phone"`
	Address string `gorm:"type:text" json:"address"`

	EmploymentStatus string              `gorm:"size:32" json:"employmentStatus,omitempty"`
	Occupation       string              `gorm:"size:128" json:"occupation,omitempty"`
	EmployerName     string              `gorm:"size:255" json:"employerName,omitempty"`
	MonthlyIncome    decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"monthlyIncome"`

	AccessToken    string     `gorm:"size:64;index" json:"-"`
	TokenExpiresAt *time.Time `json:"tokenExpiresAt,omitempty"`

	InformationComplete bool       `gorm:"not null;default:false" json:"informationComplete"`
	CompletedAt         *time.Time `json:"completedAt,omitempty"`
}

// DisplayName prefers the company name for legal entities.
func (p *ActorProfile) DisplayName() string {
	if p.IsCompany && p.CompanyName != "" {
		return p.CompanyName
	}
	return p.FullName
}

// Tenant represents the party renting the property
type Tenant struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PolicyID uint `gorm:"not null;index" json:"policyId"`

	ActorProfile `gorm:"embedded"`

	References []Reference `gorm:"polymorphic:Actor;polymorphicValue:tenant" json:"references,omitempty"`
	Documents  []Document  `gorm:"polymorphic:Actor;polymorphicValue:tenant" json:"documents,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// Landlord represents the property owner
type Landlord struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PolicyID uint `gorm:"not null;index" json:"policyId"`

	ActorProfile `gorm:"embedded"`

	BankName  string     `gorm:"size:128" json:"bankName,omitempty"`
	CLABE     string     `gorm:"column:clabe;size:18" json:"clabe,omitempty"`
	IsPrimary bool       `gorm:"not null" json:"isPrimary"`
	Documents []Document `gorm:"polymorphic:Actor;polymorphicValue:landlord" json:"documents,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// JointObligor represents a co-signer liable alongside the tenant
type JointObligor struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PolicyID uint `gorm:"not null;index" json:"policyId"`

	ActorProfile `gorm:"embedded"`

	Relationship string      `gorm:"size:64" json:"relationship,omitempty"`
	References   []Reference `gorm:"polymorphic:Actor;polymorphicValue:joint_obligor" json:"references,omitempty"`
	Documents    []Document  `gorm:"polymorphic:Actor;polymorphicValue:joint_obligor" json:"documents,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Aval represents a guarantor backing the lease with real estate
type Aval struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	PolicyID uint `gorm:"not null;index" json:"policyId"`

	ActorProfile `gorm:"embedded"`

	Relationship       string          `gorm:"size:64" json:"relationship,omitempty"`
	PropertyAddress    string          `gorm:"type:text" json:"propertyAddress,omitempty"`
	PropertyDeedNumber string          `gorm:"size:64" json:"propertyDeedNumber,omitempty"`
	PropertyValue      decimal.Decimal `gorm:"type:decimal(14,2)" json:"propertyValue"`
	References         []Reference     `gorm:"polymorphic:Actor;polymorphicValue:aval" json:"references,omitempty"`
	Documents          []Document      `gorm:"polymorphic:Actor;polymorphicValue:aval" json:"documents,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (Tenant) ActorType() policy.ActorType       { return policy.ActorTenant }
func (Landlord) ActorType() policy.ActorType     { return policy.ActorLandlord }
func (JointObligor) ActorType() policy.ActorType { return policy.ActorJointObligor }
func (Aval) ActorType() policy.ActorType         { return policy.ActorAval }

func (a *Tenant) GetID() uint       { return a.ID }
func (a *Landlord) GetID() uint     { return a.ID }
func (a *JointObligor) GetID() uint { return a.ID }
func (a *Aval) GetID() uint         { return a.ID }

func (a *Tenant) GetPolicyID() uint       { return a.PolicyID }
func (a *Landlord) GetPolicyID() uint     { return a.PolicyID }
func (a *JointObligor) GetPolicyID() uint { return a.PolicyID }
func (a *Aval) GetPolicyID() uint         { return a.PolicyID }

func (a *Tenant) GetProfile() *ActorProfile       { return &a.ActorProfile }
func (a *Landlord) GetProfile() *ActorProfile     { return &a.ActorProfile }
func (a *JointObligor) GetProfile() *ActorProfile { return &a.ActorProfile }
func (a *Aval) GetProfile() *ActorProfile         { return &a.ActorProfile }

// NewActor returns an empty, addressable model for t bound to policyID.
func NewActor(t policy.ActorType, policyID uint) (Actor, bool) {
	switch t {
	case policy.ActorTenant:
		return &Tenant{PolicyID: policyID}, true
	case policy.ActorLandlord:
		return &Landlord{PolicyID: policyID, IsPrimary: true}, true
	case policy.ActorJointObligor:
		return &JointObligor{PolicyID: policyID}, true
	case policy.ActorAval:
		return &Aval{PolicyID: policyID}, true
	}
	return nil, false
}

// Reference is a personal or commercial reference given by an actor
type Reference struct {
	gorm.Model
	ActorID      uint   `gorm:"not null;index:idx_reference_actor"`
	ActorType    string `gorm:"size:32;not null;index:idx_reference_actor"`
	Name         string `gorm:"size:255;not null"`
	Phone        string `gorm:"size:32;not null"`
	Email        string `gorm:"size:255"`
	Relationship string `gorm:"size:64"`
}

// DocumentStatus tracks staff verification of an uploaded file.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "PENDING"
	DocumentVerified DocumentStatus = "VERIFIED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// Document is an uploaded file's metadata; the bytes live in object storage
type Document struct {
	gorm.Model
	ActorID      uint           `gorm:"not null;index:idx_document_actor"`
	ActorType    string         `gorm:"size:32;not null;index:idx_document_actor"`
	Category     string         `gorm:"size:64;not null"`
	FileName     string         `gorm:"size:255;not null"`
	StorageKey   string         `gorm:"size:512;not null"`
	ContentType  string         `gorm:"size:128"`
	SizeBytes    int64
	Status       DocumentStatus `gorm:"size:16;not null;default:PENDING"`
	VerifiedByID *string        `gorm:"size:64"`
	VerifiedAt   *time.Time
}
