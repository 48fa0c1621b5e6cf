package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload is the identity data minted into an access token. The
// storefront only cares about who the user is and whether they hold the
// admin capability; everything else about auth lives upstream.
type AccessTokenPayload struct {
	UserID  uuid.UUID
	Email   string
	IsAdmin bool
	JTI     string
}

// AccessTokenClaims is the JWT claim set carried by storefront tokens.
type AccessTokenClaims struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email,omitempty"`
	IsAdmin bool      `json:"is_admin"`
	jwt.RegisteredClaims
}
