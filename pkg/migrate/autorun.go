package migrate

import (
	"context"
	"fmt"

	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/logger"
)

// MaybeRun applies the embedded migrations when the auto-migrate flag is
// enabled, or always for the single-writer store which has no separate
// migration step.
func MaybeRun(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if !cfg.FeatureFlags.AutoMigrate && !cfg.DB.IsSQLite() {
		return nil
	}
	if cfg.App.IsProd() && !cfg.DB.IsSQLite() {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "driver": cfg.DB.Driver})
	logg.Info(ctx, "running goose migrations (auto-run)")

	results, err := Apply(ctx, sqlDB, cfg.DB.Driver)
	if err != nil {
		return fmt.Errorf("running goose up: %w", err)
	}

	ctx = logg.WithField(ctx, "applied", len(results))
	logg.Info(ctx, "goose migrations completed")
	return nil
}
