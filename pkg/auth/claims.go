package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jobpay/jobpay-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ProfileID uuid.UUID
	Role      enums.ProfileRole
	JTI       string
}

// AccessTokenClaims is the bearer token accepted as an alternative to the
// profile header. Role is informational; the profile row stays authoritative.
type AccessTokenClaims struct {
	ProfileID uuid.UUID         `json:"profile_id"`
	Role      enums.ProfileRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
