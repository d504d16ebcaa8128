package enums

import "fmt"

// ProfileRole maps to the profile_role_enum enum in Postgres.
type ProfileRole string

const (
	ProfileRoleClient     ProfileRole = "client"
	ProfileRoleContractor ProfileRole = "contractor"
)

var validProfileRoles = []ProfileRole{
	ProfileRoleClient,
	ProfileRoleContractor,
}

// String implements fmt.Stringer.
func (r ProfileRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known profile role.
func (r ProfileRole) IsValid() bool {
	for _, candidate := range validProfileRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseProfileRole converts raw input into ProfileRole.
func ParseProfileRole(value string) (ProfileRole, error) {
	for _, candidate := range validProfileRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid profile role %q", value)
}
