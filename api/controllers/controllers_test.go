package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/api/middleware"
	"github.com/jobpay/jobpay-backend/internal/ledger"
	"github.com/jobpay/jobpay-backend/internal/reports"
	"github.com/jobpay/jobpay-backend/internal/settlement"
	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

var testLogger = logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

type stubContracts struct {
	getFn  func(ctx context.Context, contractID, callerID uuid.UUID) (*models.Contract, error)
	listFn func(ctx context.Context, callerID uuid.UUID) ([]models.Contract, error)
}

func (s stubContracts) GetContract(ctx context.Context, contractID, callerID uuid.UUID) (*models.Contract, error) {
	return s.getFn(ctx, contractID, callerID)
}

func (s stubContracts) ListContracts(ctx context.Context, callerID uuid.UUID) ([]models.Contract, error) {
	return s.listFn(ctx, callerID)
}

type stubJobs struct {
	listFn func(ctx context.Context, callerID uuid.UUID) ([]models.Job, error)
}

func (s stubJobs) ListUnpaidJobs(ctx context.Context, callerID uuid.UUID) ([]models.Job, error) {
	return s.listFn(ctx, callerID)
}

type stubSettlement struct {
	payFn     func(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error)
	depositFn func(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (*models.Profile, error)
}

func (s stubSettlement) PayJob(ctx context.Context, jobID, callerID uuid.UUID) (*models.Job, error) {
	return s.payFn(ctx, jobID, callerID)
}

func (s stubSettlement) Deposit(ctx context.Context, clientID uuid.UUID, amount decimal.Decimal) (*models.Profile, error) {
	return s.depositFn(ctx, clientID, amount)
}

type stubLedger struct {
	listFn func(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LedgerEvent, error)
}

func (s stubLedger) RecordEvent(context.Context, *gorm.DB, ledger.RecordLedgerEventInput) (*models.LedgerEvent, error) {
	return nil, errors.New("not used")
}

func (s stubLedger) ListByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]models.LedgerEvent, error) {
	return s.listFn(ctx, profileID, limit)
}

type stubReports struct {
	professionFn func(ctx context.Context, start, end *time.Time) (*reports.ProfessionResult, error)
	clientsFn    func(ctx context.Context, start, end *time.Time, limit int) ([]reports.ClientResult, error)
}

func (s stubReports) BestProfession(ctx context.Context, start, end *time.Time) (*reports.ProfessionResult, error) {
	return s.professionFn(ctx, start, end)
}

func (s stubReports) BestClients(ctx context.Context, start, end *time.Time, limit int) ([]reports.ClientResult, error) {
	return s.clientsFn(ctx, start, end, limit)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func newRequest(method, target, body string, caller uuid.UUID, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if caller != uuid.Nil {
		ctx = middleware.WithProfileID(ctx, caller)
	}
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	return req.WithContext(ctx)
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Reason  string         `json:"reason"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestGetContract(t *testing.T) {
	caller := uuid.New()
	contractID := uuid.New()
	svc := stubContracts{getFn: func(_ context.Context, id, who uuid.UUID) (*models.Contract, error) {
		assert.Equal(t, contractID, id)
		assert.Equal(t, caller, who)
		return &models.Contract{ID: id, ClientID: caller, ContractorID: uuid.New(), Status: enums.ContractStatusInProgress, Terms: "t"}, nil
	}}

	resp := httptest.NewRecorder()
	GetContract(svc, testLogger)(resp, newRequest(http.MethodGet, "/contracts/"+contractID.String(), "", caller, map[string]string{"id": contractID.String()}))

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Data struct {
			ID     uuid.UUID `json:"id"`
			Status string    `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, contractID, body.Data.ID)
	assert.Equal(t, "in_progress", body.Data.Status)
}

func TestGetContractNotFoundCarriesReason(t *testing.T) {
	svc := stubContracts{getFn: func(context.Context, uuid.UUID, uuid.UUID) (*models.Contract, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found").WithReason("contract_not_found")
	}}
	id := uuid.NewString()

	resp := httptest.NewRecorder()
	GetContract(svc, testLogger)(resp, newRequest(http.MethodGet, "/contracts/"+id, "", uuid.New(), map[string]string{"id": id}))

	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "contract_not_found", decodeError(t, resp).Error.Reason)
}

func TestControllersRequireCaller(t *testing.T) {
	svc := stubContracts{listFn: func(context.Context, uuid.UUID) ([]models.Contract, error) {
		t.Fatal("service must not be called without a caller")
		return nil, nil
	}}

	resp := httptest.NewRecorder()
	ListContracts(svc, testLogger)(resp, newRequest(http.MethodGet, "/contracts", "", uuid.Nil, nil))

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListContractsEmptyIsArray(t *testing.T) {
	svc := stubContracts{listFn: func(context.Context, uuid.UUID) ([]models.Contract, error) {
		return nil, nil
	}}

	resp := httptest.NewRecorder()
	ListContracts(svc, testLogger)(resp, newRequest(http.MethodGet, "/contracts", "", uuid.New(), nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":[]}`, resp.Body.String())
}

func TestListUnpaidJobs(t *testing.T) {
	caller := uuid.New()
	svc := stubJobs{listFn: func(_ context.Context, who uuid.UUID) ([]models.Job, error) {
		assert.Equal(t, caller, who)
		return []models.Job{{ID: uuid.New(), Price: decimal.RequireFromString("200")}}, nil
	}}

	resp := httptest.NewRecorder()
	ListUnpaidJobs(svc, testLogger)(resp, newRequest(http.MethodGet, "/jobs/unpaid", "", caller, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"price":"200.00"`)
}

func TestPayJob(t *testing.T) {
	caller := uuid.New()
	jobID := uuid.New()
	paidAt := time.Date(2020, 8, 15, 19, 11, 26, 0, time.UTC)
	paid := true
	svc := stubSettlement{payFn: func(_ context.Context, id, who uuid.UUID) (*models.Job, error) {
		assert.Equal(t, jobID, id)
		assert.Equal(t, caller, who)
		return &models.Job{ID: id, Price: decimal.RequireFromString("121"), Paid: &paid, PaymentDate: &paidAt}, nil
	}}

	resp := httptest.NewRecorder()
	PayJob(svc, testLogger)(resp, newRequest(http.MethodPost, "/jobs/"+jobID.String()+"/pay", "", caller, map[string]string{"job_id": jobID.String()}))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"paid":true`)
}

func TestPayJobRejections(t *testing.T) {
	tests := []struct {
		reason pkgerrors.Reason
		err    error
		status int
	}{
		{settlement.ReasonAlreadyPaid, pkgerrors.New(pkgerrors.CodeStateConflict, "paid").WithReason(settlement.ReasonAlreadyPaid), http.StatusUnprocessableEntity},
		{settlement.ReasonInsufficientBalance, pkgerrors.New(pkgerrors.CodeStateConflict, "funds").WithReason(settlement.ReasonInsufficientBalance), http.StatusUnprocessableEntity},
		{settlement.ReasonNotAuthorized, pkgerrors.New(pkgerrors.CodeForbidden, "nope").WithReason(settlement.ReasonNotAuthorized), http.StatusForbidden},
		{settlement.ReasonJobNotFound, pkgerrors.New(pkgerrors.CodeNotFound, "missing").WithReason(settlement.ReasonJobNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			svc := stubSettlement{payFn: func(context.Context, uuid.UUID, uuid.UUID) (*models.Job, error) {
				return nil, tt.err
			}}
			jobID := uuid.NewString()

			resp := httptest.NewRecorder()
			PayJob(svc, testLogger)(resp, newRequest(http.MethodPost, "/jobs/"+jobID+"/pay", "", uuid.New(), map[string]string{"job_id": jobID}))

			assert.Equal(t, tt.status, resp.Code)
			assert.Equal(t, string(tt.reason), decodeError(t, resp).Error.Reason)
		})
	}
}

func TestPayJobInvalidID(t *testing.T) {
	svc := stubSettlement{payFn: func(context.Context, uuid.UUID, uuid.UUID) (*models.Job, error) {
		t.Fatal("service must not be called with an invalid id")
		return nil, nil
	}}

	resp := httptest.NewRecorder()
	PayJob(svc, testLogger)(resp, newRequest(http.MethodPost, "/jobs/x/pay", "", uuid.New(), map[string]string{"job_id": "x"}))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeposit(t *testing.T) {
	clientID := uuid.New()
	svc := stubSettlement{depositFn: func(_ context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Profile, error) {
		assert.Equal(t, clientID, id)
		assert.True(t, amount.Equal(decimal.RequireFromString("50.25")))
		return &models.Profile{ID: id, Role: enums.ProfileRoleClient, Balance: decimal.RequireFromString("150.25")}, nil
	}}

	resp := httptest.NewRecorder()
	Deposit(svc, testLogger)(resp, newRequest(http.MethodPost, "/balances/deposit/"+clientID.String(), `{"amount":50.25}`, uuid.New(), map[string]string{"userId": clientID.String()}))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"balance":"150.25"`)
}

func TestDepositMissingAmount(t *testing.T) {
	svc := stubSettlement{depositFn: func(context.Context, uuid.UUID, decimal.Decimal) (*models.Profile, error) {
		t.Fatal("service must not be called without an amount")
		return nil, nil
	}}

	for _, body := range []string{`{}`, `{"amount":0}`, `{"amount":-5}`} {
		clientID := uuid.NewString()
		resp := httptest.NewRecorder()
		Deposit(svc, testLogger)(resp, newRequest(http.MethodPost, "/balances/deposit/"+clientID, body, uuid.New(), map[string]string{"userId": clientID}))

		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Equal(t, string(settlement.ReasonMissingAmount), decodeError(t, resp).Error.Reason, body)
	}
}

func TestDepositCapExceededExposesCap(t *testing.T) {
	svc := stubSettlement{depositFn: func(context.Context, uuid.UUID, decimal.Decimal) (*models.Profile, error) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cap").
			WithReason(settlement.ReasonDepositCapExceeded).
			WithDetails(settlement.DepositCapDetails{Cap: decimal.RequireFromString("100.25")})
	}}
	clientID := uuid.NewString()

	resp := httptest.NewRecorder()
	Deposit(svc, testLogger)(resp, newRequest(http.MethodPost, "/balances/deposit/"+clientID, `{"amount":500}`, uuid.New(), map[string]string{"userId": clientID}))

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	body := decodeError(t, resp)
	assert.Equal(t, string(settlement.ReasonDepositCapExceeded), body.Error.Reason)
	assert.Equal(t, "100.25", body.Error.Details["cap"])
}

func TestListLedger(t *testing.T) {
	caller := uuid.New()
	svc := stubLedger{listFn: func(_ context.Context, who uuid.UUID, limit int) ([]models.LedgerEvent, error) {
		assert.Equal(t, caller, who)
		assert.Equal(t, 10, limit)
		return []models.LedgerEvent{{ID: uuid.New(), ProfileID: who, Type: enums.LedgerEventTypeDeposit, Amount: decimal.RequireFromString("5"), BalanceAfter: decimal.RequireFromString("5")}}, nil
	}}

	resp := httptest.NewRecorder()
	ListLedger(svc, testLogger)(resp, newRequest(http.MethodGet, "/balances/ledger?limit=10", "", caller, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"type":"deposit"`)
}

func TestBestProfession(t *testing.T) {
	svc := stubReports{professionFn: func(_ context.Context, start, end *time.Time) (*reports.ProfessionResult, error) {
		require.NotNil(t, start)
		assert.Nil(t, end)
		assert.Equal(t, time.Date(2020, 8, 10, 0, 0, 0, 0, time.UTC), *start)
		return &reports.ProfessionResult{Profession: "Programmer", Paid: decimal.RequireFromString("2683")}, nil
	}}

	resp := httptest.NewRecorder()
	BestProfession(svc, testLogger)(resp, newRequest(http.MethodGet, "/admin/best-profession?start=2020-08-10", "", uuid.New(), nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"profession":"Programmer"`)
	assert.Contains(t, resp.Body.String(), `"paid":2683.00`)
}

func TestBestProfessionEmptyWindowIsNull(t *testing.T) {
	svc := stubReports{professionFn: func(context.Context, *time.Time, *time.Time) (*reports.ProfessionResult, error) {
		return nil, nil
	}}

	resp := httptest.NewRecorder()
	BestProfession(svc, testLogger)(resp, newRequest(http.MethodGet, "/admin/best-profession", "", uuid.New(), nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":null}`, resp.Body.String())
}

func TestBestProfessionInvalidDate(t *testing.T) {
	svc := stubReports{professionFn: func(context.Context, *time.Time, *time.Time) (*reports.ProfessionResult, error) {
		t.Fatal("service must not be called with an invalid date")
		return nil, nil
	}}

	resp := httptest.NewRecorder()
	BestProfession(svc, testLogger)(resp, newRequest(http.MethodGet, "/admin/best-profession?start=yesterday", "", uuid.New(), nil))

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBestClientsLimit(t *testing.T) {
	cfg := config.ReportsConfig{DefaultClientLimit: 2, MaxClientLimit: 100}
	var gotLimit int
	svc := stubReports{clientsFn: func(_ context.Context, _, _ *time.Time, limit int) ([]reports.ClientResult, error) {
		gotLimit = limit
		return []reports.ClientResult{{ID: uuid.New(), FullName: "Ash Kethcum", Paid: decimal.RequireFromString("2020")}}, nil
	}}

	resp := httptest.NewRecorder()
	BestClients(svc, cfg, testLogger)(resp, newRequest(http.MethodGet, "/admin/best-clients", "", uuid.New(), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, gotLimit)
	assert.Contains(t, resp.Body.String(), `"fullName":"Ash Kethcum"`)
	assert.Contains(t, resp.Body.String(), `"paid":2020.00`)

	resp = httptest.NewRecorder()
	BestClients(svc, cfg, testLogger)(resp, newRequest(http.MethodGet, "/admin/best-clients?limit=5", "", uuid.New(), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 5, gotLimit)

	resp = httptest.NewRecorder()
	BestClients(svc, cfg, testLogger)(resp, newRequest(http.MethodGet, "/admin/best-clients?limit=0", "", uuid.New(), nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthReady(cfg, testLogger, stubPinger{}, nil)(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"redis":"disabled"`)

	resp = httptest.NewRecorder()
	HealthReady(cfg, testLogger, stubPinger{err: errors.New("down")}, stubPinger{})(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	resp := httptest.NewRecorder()
	HealthLive(cfg)(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-JobPay-Env"))
}
