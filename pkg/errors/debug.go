package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrorDump is the log-side view of an error chain. It never reaches clients.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`
	Reason     Reason `json:"reason,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`

	SQLiteCode     string `json:"sqlite_code,omitempty"`
	SQLiteExtended string `json:"sqlite_extended,omitempty"`
}

// Dump flattens an error chain for structured logging. Store diagnostics are
// lifted from pgx, lib/pq or the sqlite driver, whichever appears first.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error(), Retryable: IsRetryable(err)}
	if te := As(err); te != nil {
		d.Code = te.Code()
		d.Reason = te.Reason()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.fillStore(err)
	return d
}

// Fields returns the store diagnostics that are set, keyed for log output.
func (d ErrorDump) Fields() map[string]any {
	out := map[string]any{}
	if d.PGCode != "" {
		out["pg_code"] = d.PGCode
		out["pg_detail"] = d.PGDetail
		out["pg_message"] = d.PGMessage
		out["pg_table"] = d.PGTable
		out["pg_column"] = d.PGColumn
		out["pg_constraint"] = d.PGConstraint
	}
	if d.SQLiteCode != "" {
		out["sqlite_code"] = d.SQLiteCode
		out["sqlite_extended"] = d.SQLiteExtended
	}
	return out
}

func (d *ErrorDump) fillStore(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		return
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		d.SQLiteCode = liteErr.Code.Error()
		d.SQLiteExtended = liteErr.ExtendedCode.Error()
	}
}
