package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/internal/contracts"
	"github.com/jobpay/jobpay-backend/internal/jobs"
	"github.com/jobpay/jobpay-backend/internal/ledger"
	"github.com/jobpay/jobpay-backend/internal/profiles"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
	"github.com/jobpay/jobpay-backend/pkg/logger"
	"github.com/jobpay/jobpay-backend/pkg/metrics"
)

const (
	OperationPayJob  = "pay_job"
	OperationDeposit = "deposit"
)

// depositCapRatio pegs the maximum client balance to its open job total.
var depositCapRatio = decimal.RequireFromString("0.25")

// maxAmountScale is the precision of balance columns.
const maxAmountScale = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service moves money between profiles. Every call runs in exactly one
// transaction and leaves no partial effect on error.
type Service interface {
	// PayJob transfers the job price from the contract client to the
	// contractor and marks the job paid.
	PayJob(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error)
	// Deposit adds amount to a client balance, capped at a quarter of the
	// client's open job total.
	Deposit(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (*models.Profile, error)
}

// ServiceParams wires the settlement engine.
type ServiceParams struct {
	Logger    *logger.Logger
	DB        txRunner
	Jobs      jobs.Repository
	Contracts contracts.Repository
	Profiles  profiles.Repository
	Ledger    ledger.Service
	Metrics   *metrics.SettlementMetrics
}

type service struct {
	logg      *logger.Logger
	db        txRunner
	jobs      jobs.Repository
	contracts contracts.Repository
	profiles  profiles.Repository
	ledger    ledger.Service
	metrics   *metrics.SettlementMetrics
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Jobs == nil {
		return nil, fmt.Errorf("job repository required")
	}
	if params.Contracts == nil {
		return nil, fmt.Errorf("contract repository required")
	}
	if params.Profiles == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	return &service{
		logg:      params.Logger,
		db:        params.DB,
		jobs:      params.Jobs,
		contracts: params.Contracts,
		profiles:  params.Profiles,
		ledger:    params.Ledger,
		metrics:   params.Metrics,
		now:       time.Now,
	}, nil
}

func (s *service) PayJob(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error) {
	started := time.Now()
	if jobID == uuid.Nil {
		return nil, s.finish(ctx, OperationPayJob, started, errJobNotFound())
	}
	if callerID == uuid.Nil {
		return nil, s.finish(ctx, OperationPayJob, started, errNotAuthorized())
	}

	var (
		paid   *models.Job
		amount decimal.Decimal
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		jobRepo := s.jobs.WithTx(tx)
		profileRepo := s.profiles.WithTx(tx)

		job, err := jobRepo.LockByID(ctx, jobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errJobNotFound()
			}
			return db.WrapStoreError(err, "lock job")
		}

		contract, err := s.contracts.WithTx(tx).FindByID(ctx, job.ContractID)
		if err != nil {
			return db.WrapStoreError(err, "load contract")
		}
		if contract.ClientID != callerID {
			return errNotAuthorized()
		}
		if job.IsPaid() {
			return errAlreadyPaid()
		}

		parties, err := profileRepo.LockByIDs(ctx, contract.ClientID, contract.ContractorID)
		if err != nil {
			return db.WrapStoreError(err, "lock profiles")
		}
		client, contractor := parties[contract.ClientID], parties[contract.ContractorID]
		if client.Balance.LessThan(job.Price) {
			return errInsufficientBalance()
		}

		clientBalance := client.Balance.Sub(job.Price)
		contractorBalance := contractor.Balance.Add(job.Price)
		if err := profileRepo.UpdateBalance(ctx, client.ID, clientBalance); err != nil {
			return db.WrapStoreError(err, "debit client")
		}
		if err := profileRepo.UpdateBalance(ctx, contractor.ID, contractorBalance); err != nil {
			return db.WrapStoreError(err, "credit contractor")
		}

		paidAt := s.now().UTC()
		marked, err := jobRepo.MarkPaid(ctx, job.ID, paidAt)
		if err != nil {
			return db.WrapStoreError(err, "mark job paid")
		}
		if !marked {
			return errAlreadyPaid()
		}

		if err := s.record(ctx, tx, client.ID, &job.ID, enums.LedgerEventTypeJobPaymentDebit, job.Price, clientBalance); err != nil {
			return err
		}
		if err := s.record(ctx, tx, contractor.ID, &job.ID, enums.LedgerEventTypeJobPaymentCredit, job.Price, contractorBalance); err != nil {
			return err
		}

		job.Paid = &marked
		job.PaymentDate = &paidAt
		paid = job
		amount = job.Price
		return nil
	})
	if err = s.finish(ctx, OperationPayJob, started, err); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"job_id": paid.ID.String(),
		"amount": amount.StringFixed(2),
	})
	s.logg.Info(logCtx, "settlement.job_paid")
	return paid, nil
}

func (s *service) Deposit(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (*models.Profile, error) {
	started := time.Now()
	if err := validateAmount(amount); err != nil {
		return nil, s.finish(ctx, OperationDeposit, started, err)
	}
	if clientID == uuid.Nil {
		return nil, s.finish(ctx, OperationDeposit, started, errClientNotFound())
	}

	var updated *models.Profile
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		profileRepo := s.profiles.WithTx(tx)

		locked, err := profileRepo.LockByIDs(ctx, clientID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errClientNotFound()
			}
			return db.WrapStoreError(err, "lock client")
		}
		client := locked[clientID]
		if client.Role != enums.ProfileRoleClient {
			return errClientNotFound()
		}

		open, err := s.jobs.WithTx(tx).ListOpenByClient(ctx, clientID)
		if err != nil {
			return db.WrapStoreError(err, "load open jobs")
		}
		if len(open) == 0 {
			return errNoOpenJobs()
		}

		limit := DepositCapFor(open)
		balance := client.Balance.Add(amount)
		if balance.GreaterThan(limit) {
			return errDepositCapExceeded(limit)
		}

		if err := profileRepo.UpdateBalance(ctx, client.ID, balance); err != nil {
			return db.WrapStoreError(err, "credit client")
		}
		if err := s.record(ctx, tx, client.ID, nil, enums.LedgerEventTypeDeposit, amount, balance); err != nil {
			return err
		}

		client.Balance = balance
		updated = client
		return nil
	})
	if err = s.finish(ctx, OperationDeposit, started, err); err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"client_id": clientID.String(),
		"amount":    amount.StringFixed(2),
	})
	s.logg.Info(logCtx, "settlement.deposit")
	return updated, nil
}

// DepositCapFor returns the maximum balance allowed by the open jobs.
func DepositCapFor(open []models.Job) decimal.Decimal {
	total := decimal.Zero
	for _, job := range open {
		total = total.Add(job.Price)
	}
	return total.Mul(depositCapRatio)
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsZero() {
		return errMissingAmount("amount is required")
	}
	if amount.IsNegative() {
		return errMissingAmount("amount must be positive")
	}
	if -amount.Exponent() > maxAmountScale && !amount.Equal(amount.Round(maxAmountScale)) {
		return errMissingAmount("amount supports at most two decimal places")
	}
	return nil
}

func (s *service) record(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, jobID *uuid.UUID, eventType enums.LedgerEventType, amount, balanceAfter decimal.Decimal) error {
	_, err := s.ledger.RecordEvent(ctx, tx, ledger.RecordLedgerEventInput{
		ProfileID:    profileID,
		JobID:        jobID,
		Type:         eventType,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	})
	if err != nil {
		return db.WrapStoreError(err, "record ledger event")
	}
	return nil
}

// finish classifies err, records the outcome and logs rejections.
func (s *service) finish(ctx context.Context, operation string, started time.Time, err error) error {
	err = db.WrapStoreError(err, operation)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeError
		if reason := pkgerrors.ReasonOf(err); reason != "" {
			outcome = string(reason)
		}
	}
	s.metrics.Observe(operation, outcome, time.Since(started))

	if err == nil {
		return nil
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"operation": operation,
		"outcome":   outcome,
	})
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal {
		s.logg.Warn(logCtx, "settlement.rejected")
	} else {
		s.logg.Error(logCtx, "settlement.failed", err)
	}
	return err
}
