package contracts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

const ReasonContractNotFound pkgerrors.Reason = "contract_not_found"

// Service exposes the caller-scoped contract reads.
type Service interface {
	// GetContract returns the contract when the caller is one of its parties.
	// Contracts of other parties are reported as not found.
	GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*models.Contract, error)
	// ListContracts returns the caller's new and in-progress contracts.
	ListContracts(ctx context.Context, callerID uuid.UUID) ([]models.Contract, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*models.Contract, error) {
	if contractID == uuid.Nil || callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contract id and caller id are required")
	}

	contract, err := s.repo.FindByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, db.WrapStoreError(err, "load contract")
	}
	if !contract.HasParty(callerID) {
		return nil, notFound()
	}
	return contract, nil
}

func (s *service) ListContracts(ctx context.Context, callerID uuid.UUID) ([]models.Contract, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "caller id is required")
	}

	contracts, err := s.repo.ListByParty(ctx, callerID, enums.ActiveContractStatuses)
	if err != nil {
		return nil, db.WrapStoreError(err, "list contracts")
	}
	return contracts, nil
}

func notFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "contract not found").WithReason(ReasonContractNotFound)
}
