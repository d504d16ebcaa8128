package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jobpay/jobpay-backend/api/controllers"
	"github.com/jobpay/jobpay-backend/api/middleware"
	"github.com/jobpay/jobpay-backend/internal/contracts"
	"github.com/jobpay/jobpay-backend/internal/jobs"
	"github.com/jobpay/jobpay-backend/internal/ledger"
	"github.com/jobpay/jobpay-backend/internal/reports"
	"github.com/jobpay/jobpay-backend/internal/settlement"
	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/logger"
	"github.com/jobpay/jobpay-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	profileLoader middleware.ProfileLoader,
	contractsService contracts.Service,
	jobsService jobs.Service,
	settlementService settlement.Service,
	ledgerService ledger.Service,
	reportsService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// A nil *redis.Client must not reach the interfaces as a non-nil value.
	var (
		redisPinger      controllers.Pinger
		idempotencyStore redis.IdempotencyStore
	)
	if redisClient != nil {
		redisPinger = redisClient
		idempotencyStore = redisClient
	}
	idempotent := middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Profile(cfg, profileLoader, logg))

		r.Route("/contracts", func(r chi.Router) {
			r.Get("/", controllers.ListContracts(contractsService, logg))
			r.Get("/{id}", controllers.GetContract(contractsService, logg))
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/unpaid", controllers.ListUnpaidJobs(jobsService, logg))
			r.With(idempotent).Post("/{job_id}/pay", controllers.PayJob(settlementService, logg))
		})

		r.Route("/balances", func(r chi.Router) {
			r.With(idempotent).Post("/deposit/{userId}", controllers.Deposit(settlementService, logg))
			r.Get("/ledger", controllers.ListLedger(ledgerService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/best-profession", controllers.BestProfession(reportsService, logg))
			r.Get("/best-clients", controllers.BestClients(reportsService, cfg.Reports, logg))
		})
	})

	return r
}
