package controllers

import (
	"net/http"

	"github.com/jobpay/jobpay-backend/api/responses"
	"github.com/jobpay/jobpay-backend/api/validators"
	"github.com/jobpay/jobpay-backend/internal/contracts"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

// GetContract returns a contract the caller is party to.
func GetContract(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("contracts"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contractID, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		contract, err := svc.GetContract(r.Context(), contractID, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contracts.NewContractDTO(contract))
	}
}

// ListContracts returns the caller's non-terminated contracts.
func ListContracts(svc contracts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("contracts"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListContracts(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, contracts.NewContractDTOs(list))
	}
}
