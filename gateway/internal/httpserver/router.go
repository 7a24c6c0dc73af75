package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/tokens"
)

type Deps struct {
	AuthURL      string
	InventoryURL string
	OrderURL     string
	Codec        tokens.Codec
}

// Register wires the edge routes. The gateway only checks that a token
// parses; role checks and the auth service's blacklist stay with the
// services behind it. The /internal/* surface of the auth service is
// deliberately not exposed.
func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Secure())

	authProxy, err := newProxy(d.AuthURL)
	if err != nil {
		return err
	}
	inventoryProxy, err := newProxy(d.InventoryURL)
	if err != nil {
		return err
	}
	orderProxy, err := newProxy(d.OrderURL)
	if err != nil {
		return err
	}

	e.Any("/auth", authProxy)
	e.Any("/auth/*", authProxy)

	edge := authgate.New(d.Codec).Middleware()
	e.Any("/inventory/*", inventoryProxy, edge)
	e.Any("/orders", orderProxy, edge)
	e.Any("/orders/*", orderProxy, edge)

	return nil
}
