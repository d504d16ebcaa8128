package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/logger"
	"github.com/jobpay/jobpay-backend/pkg/migrate"
)

var migrationsDir string

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage jobpay database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "dir", "", "goose migrations directory (defaults per driver)")

	root.AddCommand(
		gooseCmd("up", "Apply every pending migration"),
		gooseCmd("down", "Roll back the latest migration"),
		gooseCmd("status", "Print applied and pending migrations"),
		&cobra.Command{
			Use:   "version TARGET",
			Short: "Migrate up or down to TARGET (YYYYMMDDHHMMSS)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd.Context(), "version", func(ctx context.Context, env migrationEnv) error {
					return migrate.MigrateToVersion(ctx, env.db, env.dialect, env.dir, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Write an empty SQL migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := bootstrap()
				if err != nil {
					return err
				}
				path, err := migrate.CreateSQLMigration(resolveDir(cfg), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check migration filenames and goose sections",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := bootstrap()
				if err != nil {
					return err
				}
				if err := migrate.ValidateDir(resolveDir(cfg)); err != nil {
					return err
				}
				if err := migrate.ValidateEmbedded(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migration validation passed")
				return nil
			},
		},
	)
	return root
}

func gooseCmd(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(cmd.Context(), command, func(ctx context.Context, env migrationEnv) error {
				return migrate.Run(ctx, env.db, env.dialect, env.dir, command)
			})
		},
	}
}

type migrationEnv struct {
	db      *sql.DB
	dialect goose.Dialect
	dir     string
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	return cfg, logg, nil
}

func resolveDir(cfg *config.Config) string {
	if migrationsDir != "" {
		return migrationsDir
	}
	return migrate.DirFor(cfg.DB.Driver)
}

func withDatabase(ctx context.Context, command string, fn func(context.Context, migrationEnv) error) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}

	dialect, err := migrate.DialectFor(cfg.DB.Driver)
	if err != nil {
		return err
	}
	env := migrationEnv{dialect: dialect, dir: resolveDir(cfg)}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"cmd":    command,
		"dir":    env.dir,
		"driver": cfg.DB.Driver,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "resource not working: database", err)
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if env.db, err = client.DB().DB(); err != nil {
		return fmt.Errorf("sql database handle: %w", err)
	}

	logg.Info(ctx, "migrate ready")
	if err := fn(ctx, env); err != nil {
		logg.Error(ctx, "migration command failed", err)
		return err
	}
	return nil
}
