package enums

import "fmt"

// LedgerEventType maps to the ledger_event_type_enum enum in Postgres.
type LedgerEventType string

const (
	LedgerEventTypeJobPaymentDebit  LedgerEventType = "job_payment_debit"
	LedgerEventTypeJobPaymentCredit LedgerEventType = "job_payment_credit"
	LedgerEventTypeDeposit          LedgerEventType = "deposit"
)

var validLedgerEventTypes = []LedgerEventType{
	LedgerEventTypeJobPaymentDebit,
	LedgerEventTypeJobPaymentCredit,
	LedgerEventTypeDeposit,
}

// IsValid reports whether the value matches the canonical ledger event enum.
func (t LedgerEventType) IsValid() bool {
	for _, candidate := range validLedgerEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsCredit reports whether the event increases the profile balance.
func (t LedgerEventType) IsCredit() bool {
	return t == LedgerEventTypeJobPaymentCredit || t == LedgerEventTypeDeposit
}

// ParseLedgerEventType converts raw input into LedgerEventType.
func ParseLedgerEventType(value string) (LedgerEventType, error) {
	for _, candidate := range validLedgerEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger event type %q", value)
}
