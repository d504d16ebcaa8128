// Package dbtest provides in-memory SQLite stores carrying the migrated
// schema for package tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jobpay/jobpay-backend/pkg/config"
	"github.com/jobpay/jobpay-backend/pkg/db"
	"github.com/jobpay/jobpay-backend/pkg/db/models"
	"github.com/jobpay/jobpay-backend/pkg/enums"
	"github.com/jobpay/jobpay-backend/pkg/migrate"
)

// Open returns a fresh in-memory database migrated to the current schema.
// The pool is pinned to one connection so every statement sees the same
// memory store.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := conn.Exec(`PRAGMA foreign_keys = ON`).Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if _, err := migrate.Apply(context.Background(), sqlDB, config.DriverSQLite); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return conn
}

// NewClient wraps Open in a single-writer db.Client.
func NewClient(t testing.TB) *db.Client {
	t.Helper()
	return db.FromConn(Open(t))
}

// Money parses a decimal literal and fails loudly on typos.
func Money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// Bool returns a pointer for the tri-state paid flag.
func Bool(v bool) *bool {
	return &v
}

// SeedProfile inserts p, assigning an id and defaults when absent.
func SeedProfile(t testing.TB, conn *gorm.DB, p models.Profile) models.Profile {
	t.Helper()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = enums.ProfileRoleClient
	}
	if p.FirstName == "" {
		p.FirstName = "Test"
	}
	if p.LastName == "" {
		p.LastName = string(p.Role)
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	err := conn.Exec(
		`INSERT INTO profiles (id, first_name, last_name, profession, balance, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FirstName, p.LastName, p.Profession, p.Balance.String(), string(p.Role), now, now,
	).Error
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

// SeedContract inserts c between two existing profiles.
func SeedContract(t testing.TB, conn *gorm.DB, c models.Contract) models.Contract {
	t.Helper()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = enums.ContractStatusInProgress
	}
	if c.Terms == "" {
		c.Terms = "standard terms"
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now

	err := conn.Exec(
		`INSERT INTO contracts (id, terms, status, client_id, contractor_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Terms, string(c.Status), c.ClientID, c.ContractorID, now, now,
	).Error
	if err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return c
}

// SeedJob inserts j under an existing contract.
func SeedJob(t testing.TB, conn *gorm.DB, j models.Job) models.Job {
	t.Helper()
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	if j.Description == "" {
		j.Description = "work"
	}
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now

	var paymentDate any
	if j.PaymentDate != nil {
		paymentDate = j.PaymentDate.UTC()
	}
	var paid any
	if j.Paid != nil {
		paid = *j.Paid
	}

	err := conn.Exec(
		`INSERT INTO jobs (id, contract_id, description, price, paid, payment_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.ContractID, j.Description, j.Price.String(), paid, paymentDate, now, now,
	).Error
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return j
}

// ReloadProfile reads the committed state of a profile.
func ReloadProfile(t testing.TB, conn *gorm.DB, id uuid.UUID) models.Profile {
	t.Helper()
	var p models.Profile
	if err := conn.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	return p
}

// ReloadJob reads the committed state of a job.
func ReloadJob(t testing.TB, conn *gorm.DB, id uuid.UUID) models.Job {
	t.Helper()
	var j models.Job
	if err := conn.First(&j, "id = ?", id).Error; err != nil {
		t.Fatalf("reload job: %v", err)
	}
	return j
}

// Statement is a SQL statement built by a DryRun session.
type Statement struct {
	SQL  string
	Vars []any
}

// DryRunPostgres returns a postgres-dialect session that builds statements
// without a server. Every query built through it is appended to the
// returned slice.
func DryRunPostgres(t testing.TB) (*gorm.DB, *[]Statement) {
	t.Helper()

	conn, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=jobpay dbname=jobpay sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open postgres dry run: %v", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}

	var built []Statement
	capture := func(tx *gorm.DB) {
		vars := make([]any, len(tx.Statement.Vars))
		copy(vars, tx.Statement.Vars)
		built = append(built, Statement{SQL: tx.Statement.SQL.String(), Vars: vars})
	}
	if err := conn.Callback().Query().After("gorm:query").Register("dbtest:capture_query", capture); err != nil {
		t.Fatalf("register query capture: %v", err)
	}
	if err := conn.Callback().Update().After("gorm:update").Register("dbtest:capture_update", capture); err != nil {
		t.Fatalf("register update capture: %v", err)
	}
	return conn, &built
}
