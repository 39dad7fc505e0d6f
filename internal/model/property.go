package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PropertyStatus enum constants
const (
	PropertyStatusActive   = "ACTIVE"
	PropertyStatusInactive = "INACTIVE"
)

// Property represents a managed building or compound with rentable units
type Property struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Address    string         `gorm:"type:text;not null" json:"address"`
	City       string         `gorm:"type:varchar(100)" json:"city"`
	TotalUnits int            `gorm:"not null;default:0" json:"total_units"`
	ManagerID  *uuid.UUID     `gorm:"type:uuid;index" json:"manager_id"`
	Manager    *User          `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Status     string         `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
