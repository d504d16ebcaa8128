package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jobpay/jobpay-backend/internal/jobs"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

const (
	ReasonInvalidRange pkgerrors.Reason = "invalid_range"
	ReasonInvalidLimit pkgerrors.Reason = "invalid_limit"

	DefaultClientLimit = 2
)

type paidJobReader interface {
	ListPaidInWindow(ctx context.Context, window jobs.Window) ([]models.Job, error)
}

// ProfessionResult is the top earning profession of a window.
type ProfessionResult struct {
	Profession string
	Paid       decimal.Decimal
}

// ClientResult is one entry of the best clients ranking.
type ClientResult struct {
	ID       uuid.UUID
	FullName string
	Paid     decimal.Decimal
}

// Service aggregates paid jobs. Both reports return nil when the window holds
// no paid jobs.
type Service interface {
	BestProfession(ctx context.Context, start, end *time.Time) (*ProfessionResult, error)
	BestClients(ctx context.Context, start, end *time.Time, limit int) ([]ClientResult, error)
}

type ServiceParams struct {
	Jobs               paidJobReader
	DefaultClientLimit int
	MaxClientLimit     int
}

type service struct {
	jobs         paidJobReader
	defaultLimit int
	maxLimit     int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Jobs == nil {
		return nil, fmt.Errorf("paid job reader required")
	}
	defaultLimit := params.DefaultClientLimit
	if defaultLimit <= 0 {
		defaultLimit = DefaultClientLimit
	}
	maxLimit := params.MaxClientLimit
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &service{jobs: params.Jobs, defaultLimit: defaultLimit, maxLimit: maxLimit}, nil
}

func (s *service) BestProfession(ctx context.Context, start, end *time.Time) (*ProfessionResult, error) {
	paid, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return rankProfessions(paid), nil
}

func (s *service) BestClients(ctx context.Context, start, end *time.Time, limit int) ([]ClientResult, error) {
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 || limit > s.maxLimit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("limit must be between 1 and %d", s.maxLimit)).
			WithReason(ReasonInvalidLimit)
	}

	paid, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return rankClients(paid, limit), nil
}

func (s *service) load(ctx context.Context, start, end *time.Time) ([]models.Job, error) {
	window, err := NewWindow(start, end)
	if err != nil {
		return nil, err
	}
	paid, err := s.jobs.ListPaidInWindow(ctx, window)
	if err != nil {
		return nil, db.WrapStoreError(err, "load paid jobs")
	}
	return paid, nil
}

// rankProfessions sums prices per contractor profession. Ties go to the
// alphabetically first profession.
func rankProfessions(paid []models.Job) *ProfessionResult {
	totals := map[string]decimal.Decimal{}
	for _, job := range paid {
		if job.Contract == nil || job.Contract.Contractor == nil {
			continue
		}
		profession := job.Contract.Contractor.Profession
		totals[profession] = totals[profession].Add(job.Price)
	}
	if len(totals) == 0 {
		return nil
	}

	var best *ProfessionResult
	for profession, total := range totals {
		if best == nil ||
			total.GreaterThan(best.Paid) ||
			(total.Equal(best.Paid) && profession < best.Profession) {
			best = &ProfessionResult{Profession: profession, Paid: total}
		}
	}
	return best
}

// rankClients sums prices per client, sorted by total descending then by
// name and id.
func rankClients(paid []models.Job, limit int) []ClientResult {
	byClient := map[uuid.UUID]*ClientResult{}
	for _, job := range paid {
		if job.Contract == nil || job.Contract.Client == nil {
			continue
		}
		client := job.Contract.Client
		entry, ok := byClient[client.ID]
		if !ok {
			entry = &ClientResult{ID: client.ID, FullName: client.FullName()}
			byClient[client.ID] = entry
		}
		entry.Paid = entry.Paid.Add(job.Price)
	}
	if len(byClient) == 0 {
		return nil
	}

	ranked := make([]ClientResult, 0, len(byClient))
	for _, entry := range byClient {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if cmp := a.Paid.Cmp(b.Paid); cmp != 0 {
			return cmp > 0
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.ID.String() < b.ID.String()
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
