package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/internal/repo"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
)

// Repository manages persistence for ledger events.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, event *models.LedgerEvent) error
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LedgerEvent, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, event *models.LedgerEvent) error {
	return r.base.DB(ctx).Create(event).Error
}

func (r *repository) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LedgerEvent, error) {
	var events []models.LedgerEvent
	query := r.base.DB(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
