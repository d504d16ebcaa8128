package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	pkgerrors "github.com/jobpay/jobpay-backend/pkg/errors"
)

// ReasonStoreUnavailable marks failures a caller may retry.
const ReasonStoreUnavailable pkgerrors.Reason = "store_unavailable"

// SQLSTATE codes a caller may retry after the transaction rolled back.
var transientSQLStates = map[string]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"55P03": {}, // lock_not_available
	"57014": {}, // query_canceled (statement or lock timeout)
}

// IsTransient reports whether err is a store failure that leaves no partial
// effects and may succeed when retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientSQLStates[pgErr.Code]
		return ok
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		_, ok := transientSQLStates[string(pqErr.Code)]
		return ok
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}

	return false
}

// WrapStoreError maps a raw store failure onto the error taxonomy. Errors
// that already carry a code pass through unchanged.
func WrapStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if IsTransient(err) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message).WithReason(ReasonStoreUnavailable)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
