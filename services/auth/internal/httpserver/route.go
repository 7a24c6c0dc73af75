package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/natjoub/factory/pkg/apierr"
	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/tokens"
	"github.com/natjoub/factory/services/auth/internal/models"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Codec       tokens.Codec
	Blacklist   authgate.BlacklistChecker
}

// rateLimiter throttles the credential endpoints to 5 requests per
// minute per client IP.
func rateLimiter() echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(time.Minute / 5),
			Burst:     5,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(echo.Context, error) error {
			return apierr.ErrRateLimitExceeded
		},
		DenyHandler: func(echo.Context, string, error) error {
			return apierr.ErrRateLimitExceeded
		},
	})
}

// Register wires the route table. Auth is the only service whose gates
// carry the blacklist: a token revoked by logout dies here immediately.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	anyRole := authgate.New(d.Codec).WithBlacklist(d.Blacklist)
	adminOnly := authgate.New(d.Codec, models.RoleAdmin).WithBlacklist(d.Blacklist)

	auth := e.Group("/auth")
	limited := rateLimiter()
	auth.POST("/register", d.AuthHandler.Register, limited)
	auth.POST("/login", d.AuthHandler.Login, limited)
	auth.POST("/verify-otp", d.AuthHandler.VerifyOTP, limited)
	auth.POST("/resend-otp", d.AuthHandler.ResendOTP, limited)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken, limited)
	auth.POST("/logout", d.AuthHandler.Logout, anyRole.Middleware())

	auth.GET("/profile", d.AuthHandler.Profile, anyRole.Middleware())
	auth.PUT("/profile", d.AuthHandler.UpdateProfile, anyRole.Middleware())

	users := auth.Group("/users", adminOnly.Middleware())
	users.GET("", d.AuthHandler.ListUsers)
	users.GET("/:id", d.AuthHandler.GetUser)
	users.PUT("/:id/status", d.AuthHandler.UpdateStatus)
	users.DELETE("/:id", d.AuthHandler.DeleteUser)

	internal := e.Group("/internal/users", anyRole.Middleware())
	internal.GET("/:id/validate", d.AuthHandler.ValidateUser)
}
