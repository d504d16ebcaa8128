package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/jobpay/jobpay-backend/api/responses"
	"github.com/jobpay/jobpay-backend/api/validators"
	"github.com/jobpay/jobpay-backend/internal/ledger"
	"github.com/jobpay/jobpay-backend/internal/profiles"
	"github.com/jobpay/jobpay-backend/internal/settlement"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

type depositRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required,dgt0"`
}

// Deposit credits a client's balance, bounded by the open-job cap.
func Deposit(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("settlement"))
			return
		}

		if _, err := callerID(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clientID, err := validators.ParseUUIDParam(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req depositRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			if validators.FieldFailed(err, "amount") {
				pkgerrors.As(err).WithReason(settlement.ReasonMissingAmount)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Deposit(r.Context(), clientID, *req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profiles.NewProfileDTO(profile))
	}
}

// ListLedger returns the caller's most recent balance movements.
func ListLedger(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("ledger"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", ledger.DefaultListLimit, 1, ledger.MaxListLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		events, err := svc.ListByProfile(r.Context(), caller, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ledger.NewEventDTOs(events))
	}
}
