package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	refreshTokenType = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Codec signs and verifies the platform's JWTs. All tokens are HS256
// over a shared secret; issuer and audience are fixed per deployment.
type Codec struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func (c Codec) IssueAccess(accountID, role string, now time.Time) (string, error) {
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    c.Issuer,
			Audience:  jwt.ClaimStrings{c.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

func (c Codec) IssueRefresh(accountID string, now time.Time) (string, error) {
	claims := RefreshClaims{
		TokenType: refreshTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    c.Issuer,
			Audience:  jwt.ClaimStrings{c.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
}

// ParseAccess verifies signature, issuer, audience and expiry. On any
// failure the claims are discarded and a typed error is returned. A
// token carrying a type claim is a refresh token and is rejected, so a
// refresh token can never authenticate at a gate.
func (c Codec) ParseAccess(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := c.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.TokenType != "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ParseRefresh additionally requires the type claim to be "refresh", so
// an access token can never be exchanged for a new pair.
func (c Codec) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := c.parse(tokenStr, &claims); err != nil {
		return nil, err
	}
	if claims.TokenType != refreshTokenType {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (c Codec) parse(tokenStr string, claims jwt.Claims) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return c.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.Issuer),
		jwt.WithAudience(c.Audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}
