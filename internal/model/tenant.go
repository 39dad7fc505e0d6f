package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TenantStatus enum constants. PENDING tenants become ACTIVE only through
// an approved lease_approval request; SUSPENDED and FORMER are set by the
// corresponding approval side effects.
const (
	TenantStatusPending   = "PENDING"
	TenantStatusActive    = "ACTIVE"
	TenantStatusSuspended = "SUSPENDED"
	TenantStatusFormer    = "FORMER"
)

// Tenant links a user account to a unit in a property together with lease terms
type Tenant struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PropertyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"property_id"`
	Property    *Property       `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	UnitNumber  string          `gorm:"type:varchar(50);not null" json:"unit_number"`
	MonthlyRent decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"monthly_rent"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	LeaseStart  *time.Time      `json:"lease_start"`
	LeaseEnd    *time.Time      `json:"lease_end"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
