package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobpay/jobpay-backend/pkg/enums"
)

// LedgerEvent records an immutable balance movement of one profile.
type LedgerEvent struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProfileID    uuid.UUID             `gorm:"column:profile_id;type:uuid;not null"`
	JobID        *uuid.UUID            `gorm:"column:job_id;type:uuid"`
	Type         enums.LedgerEventType `gorm:"column:type;type:ledger_event_type_enum;not null"`
	Amount       decimal.Decimal       `gorm:"column:amount;type:numeric(12,2);not null"`
	BalanceAfter decimal.Decimal       `gorm:"column:balance_after;type:numeric(12,2);not null"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
}
