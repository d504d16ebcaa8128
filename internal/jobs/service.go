package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

// Service exposes the caller-scoped job reads.
type Service interface {
	// ListUnpaidJobs returns unpaid jobs of in-progress contracts where the
	// caller is client or contractor.
	ListUnpaidJobs(ctx context.Context, callerID uuid.UUID) ([]models.Job, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("job repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListUnpaidJobs(ctx context.Context, callerID uuid.UUID) ([]models.Job, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "caller id is required")
	}
	jobs, err := s.repo.ListUnpaidByParty(ctx, callerID)
	if err != nil {
		return nil, db.WrapStoreError(err, "list unpaid jobs")
	}
	return jobs, nil
}
