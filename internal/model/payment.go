package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType enum constants
const (
	PaymentTypeRent    = "RENT"
	PaymentTypeDeposit = "DEPOSIT"
	PaymentTypeRefund  = "REFUND"
)

// PaymentStatus enum constants
const (
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

// Payment records money moving in (rent, deposit) or out (refund).
// Refund rows are only ever created by an approved refund_approval request.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Tenant      *Tenant         `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
	PropertyID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"property_id"`
	PaymentType string          `gorm:"type:varchar(20);not null;index" json:"payment_type"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status      string          `gorm:"type:varchar(20);not null;default:'PAID'" json:"status"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"` // e.g. PAY-20260831-00042
	Note        string          `gorm:"type:text" json:"note"`
	RecordedBy  *uuid.UUID      `gorm:"type:uuid" json:"recorded_by"`
	PaidAt      time.Time       `gorm:"index" json:"paid_at"`
	CreatedAt   time.Time       `json:"created_at"`
}
