package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/tokens"
)

type Deps struct {
	OrderHandler *OrderHTTP
	Codec        tokens.Codec
}

// Register wires the route table. Gates run without a blacklist, same
// as the inventory service: revoked tokens keep working here until
// their own expiry, a window bounded by the access-token TTL.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	anyRole := authgate.New(d.Codec)
	staff := authgate.New(d.Codec, "admin", "employee")
	adminOnly := authgate.New(d.Codec, "admin")

	orders := e.Group("/orders")
	orders.POST("", d.OrderHandler.Create, anyRole.Middleware())
	orders.GET("", d.OrderHandler.List, anyRole.Middleware())
	orders.GET("/:id", d.OrderHandler.Get, anyRole.Middleware())
	orders.POST("/:id/cancel", d.OrderHandler.Cancel, anyRole.Middleware())
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, staff.Middleware())
	orders.DELETE("/:id", d.OrderHandler.Delete, adminOnly.Middleware())
}
