package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Job is a billable unit of work under a contract. Paid is nil until the
// first payment decision and true once settled.
type Job struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID  uuid.UUID       `gorm:"column:contract_id;type:uuid;not null"`
	Contract    *Contract       `gorm:"foreignKey:ContractID"`
	Description string          `gorm:"column:description;type:text;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Paid        *bool           `gorm:"column:paid"`
	PaymentDate *time.Time      `gorm:"column:payment_date"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsPaid collapses the tri-state paid flag.
func (j Job) IsPaid() bool {
	return j.Paid != nil && *j.Paid
}
