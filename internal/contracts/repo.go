package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/internal/repo"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
)

// Repository reads contracts. Contracts are created elsewhere and never
// mutated by this service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListByParty(ctx context.Context, profileID uuid.UUID, statuses []enums.ContractStatus) ([]models.Contract, error)
}

type repository struct {
	base repo.Base
}

// NewRepository binds a contract repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.base.DB(ctx).Where("id = ?", id).First(&contract).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) ListByParty(ctx context.Context, profileID uuid.UUID, statuses []enums.ContractStatus) ([]models.Contract, error) {
	var contracts []models.Contract
	query := r.base.DB(ctx).
		Where("(client_id = ? OR contractor_id = ?)", profileID, profileID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Order("created_at ASC").Order("id ASC").Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}
