package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/db/models"
)

// EventDTO is the public shape of a ledger event.
type EventDTO struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	JobID        *uuid.UUID `json:"job_id,omitempty"`
	Amount       string     `json:"amount"`
	BalanceAfter string     `json:"balance_after"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewEventDTOs maps ledger rows to their public shape.
func NewEventDTOs(events []models.LedgerEvent) []EventDTO {
	out := make([]EventDTO, 0, len(events))
	for _, e := range events {
		out = append(out, EventDTO{
			ID:           e.ID,
			Type:         string(e.Type),
			JobID:        e.JobID,
			Amount:       e.Amount.StringFixed(2),
			BalanceAfter: e.BalanceAfter.StringFixed(2),
			CreatedAt:    e.CreatedAt.UTC(),
		})
	}
	return out
}
