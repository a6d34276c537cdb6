package models

import (
	"time"

	"gorm.io/datatypes"
)

// PerformerType names who caused an activity.
type PerformerType string

const (
	PerformerUser         PerformerType = "user"
	PerformerTenant       PerformerType = "tenant"
	PerformerLandlord     PerformerType = "landlord"
	PerformerJointObligor PerformerType = "joint_obligor"
	PerformerAval         PerformerType = "aval"
	PerformerSystem       PerformerType = "system"
)

// PolicyActivity is an append-only audit entry for one event on a policy
type PolicyActivity struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	PolicyID        uint              `gorm:"not null;index:idx_policy_activity_order,priority:1" json:"policyId"`
	Action          string            `gorm:"size:64;not null;index" json:"action"`
	Description     string            `gorm:"type:text" json:"description"`
	PerformedByID   *string           `gorm:"size:64" json:"performedById"`
	PerformedByType PerformerType     `gorm:"size:32;not null" json:"performedByType"`
	Details         datatypes.JSONMap `gorm:"type:json" json:"details"`
	IPAddress       *string           `gorm:"size:64" json:"ipAddress,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;index:idx_policy_activity_order,priority:2" json:"createdAt"`
}
