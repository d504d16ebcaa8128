package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobpay/jobpay-backend/pkg/enums"
)

// Profile is a party of the marketplace holding a balance.
type Profile struct {
	ID         uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName  string            `gorm:"column:first_name;not null"`
	LastName   string            `gorm:"column:last_name;not null"`
	Profession string            `gorm:"column:profession;not null"`
	Balance    decimal.Decimal   `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	Role       enums.ProfileRole `gorm:"column:role;type:profile_role_enum;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName joins first and last name the way reports display clients.
func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}
