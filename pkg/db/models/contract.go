package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/enums"
)

// Contract binds a client and a contractor. It is created outside this service.
type Contract struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Terms        string               `gorm:"column:terms;type:text;not null"`
	Status       enums.ContractStatus `gorm:"column:status;type:contract_status_enum;not null"`
	ClientID     uuid.UUID            `gorm:"column:client_id;type:uuid;not null"`
	ContractorID uuid.UUID            `gorm:"column:contractor_id;type:uuid;not null"`
	Client       *Profile             `gorm:"foreignKey:ClientID"`
	Contractor   *Profile             `gorm:"foreignKey:ContractorID"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// HasParty reports whether the profile is the client or the contractor.
func (c Contract) HasParty(profileID uuid.UUID) bool {
	return c.ClientID == profileID || c.ContractorID == profileID
}
