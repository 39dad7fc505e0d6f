package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ApprovalRequestType enum constants
const (
	ApprovalReqTypeLease            = "lease_approval"
	ApprovalReqTypeMaintenance      = "maintenance_approval"
	ApprovalReqTypeRefund           = "refund_approval"
	ApprovalReqTypeLeaseTermination = "lease_termination"
	ApprovalReqTypeTenantRemove     = "tenant_remove"
	ApprovalReqTypeTenantSuspend    = "tenant_suspend"
	ApprovalReqTypePropertyListing  = "property_listing"
)

// ApprovalStatus enum constants. Every status other than pending is
// terminal: no transition is defined out of approved, rejected or
// cancelled. in_review is accepted on reads for legacy rows but the
// service never produces it.
const (
	ApprovalPending   = "pending"
	ApprovalApproved  = "approved"
	ApprovalRejected  = "rejected"
	ApprovalCancelled = "cancelled"
	ApprovalInReview  = "in_review"
)

// ApprovalPriority enum constants
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ApprovalRequest is a durable record of a requested action awaiting a
// reviewer's decision. Rows are never deleted; decided requests are kept
// for audit. ReviewedBy/ReviewedAt are set iff status != pending.
type ApprovalRequest struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestType string         `gorm:"type:varchar(30);not null;index" json:"request_type"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Priority    string         `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	Status      string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RequesterID uuid.UUID      `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester   *User          `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	ReviewedBy  *uuid.UUID     `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer    *User          `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	PropertyID  *uuid.UUID     `gorm:"type:uuid;index" json:"property_id"`
	TenantID    *uuid.UUID     `gorm:"type:uuid;index" json:"tenant_id"`
	Notes       string         `gorm:"type:text" json:"notes"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata"` // Open key-value bag per request type
	ReviewedAt  *time.Time     `json:"reviewed_at"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
