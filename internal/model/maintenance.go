package model

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceStatus enum constants
const (
	MaintenanceStatusOpen       = "OPEN"
	MaintenanceStatusApproved   = "APPROVED"
	MaintenanceStatusRejected   = "REJECTED"
	MaintenanceStatusInProgress = "IN_PROGRESS"
	MaintenanceStatusCompleted  = "COMPLETED"
)

// MaintenanceRequest is a tenant-reported issue. Requests above the
// self-service threshold move from OPEN to APPROVED/REJECTED via the
// approval workflow before a technician is assigned.
type MaintenanceRequest struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant      *Tenant    `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	PropertyID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"property_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      string     `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	AssignedTo  *uuid.UUID `gorm:"type:uuid" json:"assigned_to"`
	Technician  *User      `gorm:"foreignKey:AssignedTo" json:"technician,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
