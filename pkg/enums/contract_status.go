package enums

import "fmt"

// ContractStatus maps to the contract_status_enum enum in Postgres.
type ContractStatus string

const (
	ContractStatusNew        ContractStatus = "new"
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusTerminated ContractStatus = "terminated"
)

var validContractStatuses = []ContractStatus{
	ContractStatusNew,
	ContractStatusInProgress,
	ContractStatusTerminated,
}

// ActiveContractStatuses are the statuses a party still works under.
var ActiveContractStatuses = []ContractStatus{
	ContractStatusNew,
	ContractStatusInProgress,
}

func (s ContractStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical contract status enum.
func (s ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseContractStatus converts raw input into ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
