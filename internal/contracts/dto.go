package contracts

import (
	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/db/models"
)

type ContractDTO struct {
	ID           uuid.UUID `json:"id"`
	Terms        string    `json:"terms"`
	Status       string    `json:"status"`
	ClientID     uuid.UUID `json:"client_id"`
	ContractorID uuid.UUID `json:"contractor_id"`
}

func NewContractDTO(c *models.Contract) ContractDTO {
	return ContractDTO{
		ID:           c.ID,
		Terms:        c.Terms,
		Status:       string(c.Status),
		ClientID:     c.ClientID,
		ContractorID: c.ContractorID,
	}
}

func NewContractDTOs(list []models.Contract) []ContractDTO {
	out := make([]ContractDTO, 0, len(list))
	for i := range list {
		out = append(out, NewContractDTO(&list[i]))
	}
	return out
}
