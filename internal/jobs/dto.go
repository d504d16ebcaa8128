package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/db/models"
)

type JobDTO struct {
	ID          uuid.UUID  `json:"id"`
	ContractID  uuid.UUID  `json:"contract_id"`
	Description string     `json:"description"`
	Price       string     `json:"price"`
	Paid        *bool      `json:"paid"`
	PaymentDate *time.Time `json:"payment_date"`
}

func NewJobDTO(j *models.Job) JobDTO {
	dto := JobDTO{
		ID:          j.ID,
		ContractID:  j.ContractID,
		Description: j.Description,
		Price:       j.Price.StringFixed(2),
		Paid:        j.Paid,
	}
	if j.PaymentDate != nil {
		paidAt := j.PaymentDate.UTC()
		dto.PaymentDate = &paidAt
	}
	return dto
}

func NewJobDTOs(list []models.Job) []JobDTO {
	out := make([]JobDTO, 0, len(list))
	for i := range list {
		out = append(out, NewJobDTO(&list[i]))
	}
	return out
}
