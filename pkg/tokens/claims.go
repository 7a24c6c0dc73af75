package tokens

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the payload of a short-lived access token. The role
// claim lets role-restricted endpoints authorize without a database
// lookup. TokenType is decoded only so ParseAccess can tell a refresh
// token apart; access tokens never carry it.
type AccessClaims struct {
	Role      string `json:"role"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. Refresh tokens carry
// no role: they prove identity only and are never accepted by gates.
type RefreshClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}
