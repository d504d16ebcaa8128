package reports

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BestProfessionDTO renders the summed price as a JSON number with two
// fraction digits. Entity money fields keep the quoted form.
type BestProfessionDTO struct {
	Profession string      `json:"profession"`
	Paid       json.Number `json:"paid"`
}

type BestClientDTO struct {
	ID       uuid.UUID   `json:"id"`
	FullName string      `json:"fullName"`
	Paid     json.Number `json:"paid"`
}

// NewBestProfessionDTO keeps nil as nil so the boundary can render null.
func NewBestProfessionDTO(result *ProfessionResult) *BestProfessionDTO {
	if result == nil {
		return nil
	}
	return &BestProfessionDTO{Profession: result.Profession, Paid: paidNumber(result.Paid)}
}

// NewBestClientDTOs keeps nil as nil so the boundary can render null.
func NewBestClientDTOs(results []ClientResult) []BestClientDTO {
	if results == nil {
		return nil
	}
	out := make([]BestClientDTO, 0, len(results))
	for _, r := range results {
		out = append(out, BestClientDTO{ID: r.ID, FullName: r.FullName, Paid: paidNumber(r.Paid)})
	}
	return out
}

func paidNumber(sum decimal.Decimal) json.Number {
	return json.Number(sum.StringFixed(2))
}
