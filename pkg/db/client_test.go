package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestWithTx_CancelledContextRollsBack(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)

	ctx, cancel := context.WithCancel(context.Background())
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "abandoned"}).Error; err != nil {
			return err
		}
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cancelled transaction to leave no rows, got %d", count)
	}
}

func TestWithTx_SingleWriterSerializes(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)
	if !client.SingleWriter() {
		t.Fatal("sqlite clients should serialize transactions")
	}

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				mu.Unlock()

				err := tx.Create(&testModel{Name: fmt.Sprintf("row-%d", i)}).Error

				mu.Lock()
				active--
				mu.Unlock()
				return err
			})
		}(i)
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("expected at most one concurrent transaction, saw %d", maxSeen)
	}
}

func TestWithTx_QueuedWriterHonoursCancellation(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)

	holding := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- client.WithTx(context.Background(), func(tx *gorm.DB) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	started := time.Now()
	called := false
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded while queued, got %v", err)
	}
	if called {
		t.Fatal("queued transaction body must not run after cancellation")
	}
	if waited := time.Since(started); waited > time.Second {
		t.Fatalf("cancelled caller waited %s behind the active writer", waited)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("holding transaction failed: %v", err)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := FromConn(db)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "deadline", err: fmt.Errorf("tx: %w", context.DeadlineExceeded), want: true},
		{name: "pgx serialization", err: &pgconn.PgError{Code: "40001"}, want: true},
		{name: "pgx lock timeout", err: fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "55P03"}), want: true},
		{name: "pgx check violation", err: &pgconn.PgError{Code: "23514"}, want: false},
		{name: "pq deadlock", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "record not found", err: gorm.ErrRecordNotFound, want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTransient(tc.err); got != tc.want {
				t.Fatalf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestWrapStoreError(t *testing.T) {
	if WrapStoreError(nil, "noop") != nil {
		t.Fatal("nil stays nil")
	}

	transient := WrapStoreError(&pgconn.PgError{Code: "40P01"}, "pay job")
	typed := pkgerrors.As(transient)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency || typed.Reason() != ReasonStoreUnavailable {
		t.Fatalf("expected retryable dependency error, got %v", transient)
	}
	if !pkgerrors.MetadataFor(typed.Code()).Retryable {
		t.Fatal("store unavailability must be retryable")
	}

	domain := pkgerrors.New(pkgerrors.CodeStateConflict, "already paid").WithReason("already_paid")
	if got := WrapStoreError(domain, "pay job"); got != error(domain) {
		t.Fatalf("typed errors must pass through, got %v", got)
	}

	internal := pkgerrors.As(WrapStoreError(errors.New("syntax error"), "pay job"))
	if internal == nil || internal.Code() != pkgerrors.CodeInternal {
		t.Fatalf("non transient failures are internal, got %v", internal)
	}
}
