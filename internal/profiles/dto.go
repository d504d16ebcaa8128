package profiles

import (
	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/db/models"
)

// ProfileDTO is the public shape of a profile.
type ProfileDTO struct {
	ID         uuid.UUID `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Profession string    `json:"profession"`
	Role       string    `json:"role"`
	Balance    string    `json:"balance"`
}

// NewProfileDTO maps a profile row to its public shape.
func NewProfileDTO(p *models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:         p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Profession: p.Profession,
		Role:       string(p.Role),
		Balance:    p.Balance.StringFixed(2),
	}
}
