package settlement

import (
	"github.com/shopspring/decimal"

	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

const (
	ReasonJobNotFound         pkgerrors.Reason = "job_not_found"
	ReasonClientNotFound      pkgerrors.Reason = "client_not_found"
	ReasonNotAuthorized       pkgerrors.Reason = "not_authorized"
	ReasonAlreadyPaid         pkgerrors.Reason = "already_paid"
	ReasonInsufficientBalance pkgerrors.Reason = "insufficient_balance"
	ReasonMissingAmount       pkgerrors.Reason = "missing_amount"
	ReasonNoOpenJobs          pkgerrors.Reason = "no_open_jobs"
	ReasonDepositCapExceeded  pkgerrors.Reason = "deposit_cap_exceeded"
)

// DepositCapDetails is attached to deposit_cap_exceeded errors.
type DepositCapDetails struct {
	Cap decimal.Decimal `json:"cap"`
}

// DepositCap returns the cap carried by a deposit_cap_exceeded error.
func DepositCap(err error) (decimal.Decimal, bool) {
	typed := pkgerrors.As(err)
	if typed == nil || typed.Reason() != ReasonDepositCapExceeded {
		return decimal.Decimal{}, false
	}
	details, ok := typed.Details().(DepositCapDetails)
	if !ok {
		return decimal.Decimal{}, false
	}
	return details.Cap, true
}

func errJobNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "job not found").WithReason(ReasonJobNotFound)
}

func errClientNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "client not found").WithReason(ReasonClientNotFound)
}

func errNotAuthorized() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "only the contract client may pay this job").WithReason(ReasonNotAuthorized)
}

func errAlreadyPaid() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "job already paid").WithReason(ReasonAlreadyPaid)
}

func errInsufficientBalance() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient balance").WithReason(ReasonInsufficientBalance)
}

func errMissingAmount(message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithReason(ReasonMissingAmount)
}

func errNoOpenJobs() error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "client has no open jobs").WithReason(ReasonNoOpenJobs)
}

func errDepositCapExceeded(limit decimal.Decimal) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit exceeds the allowed cap").
		WithReason(ReasonDepositCapExceeded).
		WithDetails(DepositCapDetails{Cap: limit})
}
