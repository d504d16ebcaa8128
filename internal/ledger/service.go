package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// Service records and reads balance movements.
type Service interface {
	// RecordEvent appends an event inside the caller's transaction.
	RecordEvent(ctx context.Context, tx *gorm.DB, input RecordLedgerEventInput) (*models.LedgerEvent, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LedgerEvent, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// RecordLedgerEventInput captures the immutable data a ledger event requires.
type RecordLedgerEventInput struct {
	ProfileID    uuid.UUID
	JobID        *uuid.UUID
	Type         enums.LedgerEventType
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) RecordEvent(ctx context.Context, tx *gorm.DB, input RecordLedgerEventInput) (*models.LedgerEvent, error) {
	if input.ProfileID == uuid.Nil {
		return nil, fmt.Errorf("profile id is required")
	}
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("invalid ledger event type %q", input.Type)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("ledger amount must be positive, got %s", input.Amount)
	}
	if input.BalanceAfter.IsNegative() {
		return nil, fmt.Errorf("balance after must not be negative, got %s", input.BalanceAfter)
	}
	if input.Type == enums.LedgerEventTypeDeposit && input.JobID != nil {
		return nil, fmt.Errorf("deposit events carry no job id")
	}
	if input.Type != enums.LedgerEventTypeDeposit && (input.JobID == nil || *input.JobID == uuid.Nil) {
		return nil, fmt.Errorf("job id is required for %s events", input.Type)
	}

	event := &models.LedgerEvent{
		ID:           uuid.New(),
		ProfileID:    input.ProfileID,
		JobID:        input.JobID,
		Type:         input.Type,
		Amount:       input.Amount,
		BalanceAfter: input.BalanceAfter,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.WithTx(tx).Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *service) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LedgerEvent, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	events, err := s.repo.ListByProfile(ctx, profileID, limit)
	if err != nil {
		return nil, db.WrapStoreError(err, "list ledger events")
	}
	return events, nil
}
