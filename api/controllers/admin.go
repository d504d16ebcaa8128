package controllers

import (
	"net/http"
	"time"

	"github.com/jobpay/jobpay-backend/api/responses"
	"github.com/jobpay/jobpay-backend/api/validators"
	"github.com/jobpay/jobpay-backend/internal/reports"
	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

// BestProfession reports the profession that earned the most in the window.
// An empty window yields a null payload.
func BestProfession(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("reports"))
			return
		}

		start, end, err := parseWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.BestProfession(r.Context(), start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reports.NewBestProfessionDTO(result))
	}
}

// BestClients reports the clients that paid the most in the window.
func BestClients(svc reports.Service, cfg config.ReportsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, serviceUnavailable("reports"))
			return
		}

		start, end, err := parseWindow(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", cfg.DefaultClientLimit, 1, cfg.MaxClientLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		results, err := svc.BestClients(r.Context(), start, end, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reports.NewBestClientDTOs(results))
	}
}

func parseWindow(r *http.Request) (*time.Time, *time.Time, error) {
	start, err := validators.ParseQueryDate(r, "start")
	if err != nil {
		return nil, nil, err
	}
	end, err := validators.ParseQueryDate(r, "end")
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
