package profiles

import (
	"bytes"
	"slices"

	"github.com/google/uuid"
)

// SortIDs returns the distinct ids in ascending byte order, the global lock order.
func SortIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}
