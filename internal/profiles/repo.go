package profiles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/internal/repo"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
)

// ErrNegativeBalance is returned when an update would leave a balance below zero.
var ErrNegativeBalance = fmt.Errorf("profile balance must not be negative")

// Repository persists profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	// LockByIDs loads and row-locks the profiles in ascending id order so
	// concurrent transfers between the same pair cannot deadlock.
	LockByIDs(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*models.Profile, error)
	UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
}

type repository struct {
	base repo.Base
}

// NewRepository binds a profile repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := r.base.DB(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) LockByIDs(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]*models.Profile, error) {
	ordered := SortIDs(ids)

	out := make(map[uuid.UUID]*models.Profile, len(ordered))
	for _, id := range ordered {
		var profile models.Profile
		if err := repo.ForUpdate(r.base.DB(ctx)).Where("id = ?", id).First(&profile).Error; err != nil {
			return nil, err
		}
		out[id] = &profile
	}
	return out, nil
}

func (r *repository) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	if balance.IsNegative() {
		return ErrNegativeBalance
	}
	res := r.base.DB(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		Update("balance", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
