package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/internal/repo"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
)

// unpaidClause matches the tri-state paid flag when it is unset or false.
const unpaidClause = "(jobs.paid IS NULL OR jobs.paid = ?)"

// Window bounds payment dates. A nil side is unbounded.
type Window struct {
	From *time.Time
	To   *time.Time
}

// Repository persists jobs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// LockByID loads and row-locks a job.
	LockByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	// MarkPaid flips an unpaid job to paid. It reports false when the job
	// was already paid.
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error)
	ListUnpaidByParty(ctx context.Context, profileID uuid.UUID) ([]models.Job, error)
	ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error)
	// ListPaidInWindow returns paid jobs with their contract and both parties.
	ListPaidInWindow(ctx context.Context, window Window) ([]models.Job, error)
}

type repository struct {
	base repo.Base
}

// NewRepository binds a job repository to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) LockByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	if err := repo.ForUpdate(r.base.DB(ctx)).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time) (bool, error) {
	res := r.base.DB(ctx).
		Model(&models.Job{}).
		Where("id = ?", id).
		Where(unpaidClause, false).
		Updates(map[string]any{
			"paid":         true,
			"payment_date": paidAt.UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) ListUnpaidByParty(ctx context.Context, profileID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	err := r.base.DB(ctx).
		Joins("JOIN contracts ON contracts.id = jobs.contract_id").
		Where("contracts.status = ?", enums.ContractStatusInProgress).
		Where("(contracts.client_id = ? OR contracts.contractor_id = ?)", profileID, profileID).
		Where(unpaidClause, false).
		Order("jobs.created_at ASC").
		Order("jobs.id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) ListOpenByClient(ctx context.Context, clientID uuid.UUID) ([]models.Job, error) {
	var jobs []models.Job
	err := r.base.DB(ctx).
		Joins("JOIN contracts ON contracts.id = jobs.contract_id").
		Where("contracts.status = ?", enums.ContractStatusInProgress).
		Where("contracts.client_id = ?", clientID).
		Where(unpaidClause, false).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) ListPaidInWindow(ctx context.Context, window Window) ([]models.Job, error) {
	query := r.base.DB(ctx).
		Preload("Contract.Client").
		Preload("Contract.Contractor").
		Where("jobs.paid = ?", true).
		Where("jobs.payment_date IS NOT NULL")
	if window.From != nil {
		query = query.Where("jobs.payment_date >= ?", window.From.UTC())
	}
	if window.To != nil {
		query = query.Where("jobs.payment_date <= ?", window.To.UTC())
	}

	var jobs []models.Job
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
