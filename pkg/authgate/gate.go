package authgate

import (
	"context"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/logging"
	"github.com/natjoub/factory/pkg/tokens"
)

const (
	CtxAccountID   = "account_id"
	CtxRole        = "role"
	CtxAccessToken = "access_token"
)

// BlacklistChecker is implemented by the auth service's token store.
// Downstream services have no blacklist access and run the gate with a
// nil checker: a token revoked by logout keeps working there until its
// natural expiry (at most the access-token TTL). That window is a
// deliberate availability tradeoff, not an omission.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}

// Gate authenticates requests from a bearer token. Roles narrows which
// role claims are accepted; empty means any authenticated principal.
type Gate struct {
	Codec     tokens.Codec
	Roles     []string
	Blacklist BlacklistChecker
}

func New(codec tokens.Codec, roles ...string) *Gate {
	return &Gate{Codec: codec, Roles: roles}
}

// WithBlacklist returns a copy of the gate that also rejects revoked
// tokens.
func (g *Gate) WithBlacklist(bl BlacklistChecker) *Gate {
	return &Gate{Codec: g.Codec, Roles: g.Roles, Blacklist: bl}
}

// Middleware runs the verification pipeline: bearer header, signature/
// issuer/audience/expiry, role claim, then the blacklist when wired.
// Every failure is reported as a bare 401 so callers cannot probe which
// roles exist.
func (g *Gate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return apierr.ErrUnauthorized
			}

			claims, err := g.Codec.ParseAccess(raw)
			if err != nil {
				return apierr.ErrUnauthorized
			}
			if claims.Subject == "" {
				return apierr.ErrUnauthorized
			}

			if len(g.Roles) > 0 && !slices.Contains(g.Roles, claims.Role) {
				return apierr.ErrUnauthorized
			}

			if g.Blacklist != nil {
				revoked, err := g.Blacklist.IsBlacklisted(ctx, raw)
				if err != nil {
					logging.FromContext(ctx).Error("blacklist_check_failed", "error", err)
					return apierr.ErrInternal
				}
				if revoked {
					return apierr.ErrTokenBlacklisted
				}
			}

			c.Set(CtxAccountID, claims.Subject)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxAccessToken, raw)

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AccountID returns the authenticated principal's account id; empty
// outside a gated route.
func AccountID(c echo.Context) string {
	v, _ := c.Get(CtxAccountID).(string)
	return v
}

func Role(c echo.Context) string {
	v, _ := c.Get(CtxRole).(string)
	return v
}

func AccessToken(c echo.Context) string {
	v, _ := c.Get(CtxAccessToken).(string)
	return v
}
