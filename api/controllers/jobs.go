package controllers

import (
	"net/http"

	"github.com/jobpay/jobpay-backend/api/responses"
	"github.com/jobpay/jobpay-backend/api/validators"
	"github.com/jobpay/jobpay-backend/internal/jobs"
	"github.com/jobpay/jobpay-backend/internal/settlement"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

// ListUnpaidJobs returns unpaid jobs on the caller's in-progress contracts.
func ListUnpaidJobs(svc jobs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("jobs"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListUnpaidJobs(r.Context(), caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, jobs.NewJobDTOs(list))
	}
}

// PayJob settles a job from the calling client's balance.
func PayJob(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("settlement"))
			return
		}

		caller, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		jobID, err := validators.ParseUUIDParam(r, "job_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		job, err := svc.PayJob(r.Context(), jobID, caller)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, jobs.NewJobDTO(job))
	}
}
