package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/jobpay/jobpay-backend/api/responses"
	"github.com/jobpay/jobpay-backend/pkg/config"
	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

// Pinger is any dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-JobPay-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the store and, when configured, redis. A nil pinger is
// reported as disabled.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-JobPay-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{
			"database": checkDependency(ctx, dbP),
			"redis":    checkDependency(ctx, redisP),
		}
		for name, state := range checks {
			if state == "down" {
				err := pkgerrors.New(pkgerrors.CodeDependency, name+" unavailable").WithDetails(checks)
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}

func checkDependency(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "down"
	}
	return "up"
}
