package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/natjoub/factory/pkg/authgate"
	"github.com/natjoub/factory/pkg/tokens"
)

type Deps struct {
	InventoryHandler *InventoryHTTP
	Codec            tokens.Codec
}

// Register wires the route table. The gates here run WITHOUT a
// blacklist: this service cannot see the auth database, so a token
// revoked by logout keeps working until its own expiry. That window is
// bounded by the access-token TTL and accepted as a trust tradeoff.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	anyRole := authgate.New(d.Codec)
	staff := authgate.New(d.Codec, "admin", "employee")

	inv := e.Group("/inventory")

	categories := inv.Group("/categories")
	categories.GET("", d.InventoryHandler.ListCategories, anyRole.Middleware())
	categories.POST("", d.InventoryHandler.CreateCategory, staff.Middleware())
	categories.PUT("/:id", d.InventoryHandler.UpdateCategory, staff.Middleware())
	categories.DELETE("/:id", d.InventoryHandler.DeleteCategory, staff.Middleware())

	branches := inv.Group("/branches")
	branches.GET("", d.InventoryHandler.ListBranches, anyRole.Middleware())
	branches.POST("", d.InventoryHandler.CreateBranch, staff.Middleware())
	branches.PUT("/:id", d.InventoryHandler.UpdateBranch, staff.Middleware())

	items := inv.Group("/items")
	items.GET("", d.InventoryHandler.ListItems, anyRole.Middleware())
	items.GET("/search", d.InventoryHandler.SearchItems, anyRole.Middleware())
	items.GET("/:id", d.InventoryHandler.GetItem, anyRole.Middleware())
	items.POST("", d.InventoryHandler.CreateItem, staff.Middleware())
	items.PUT("/:id", d.InventoryHandler.UpdateItem, staff.Middleware())
	items.DELETE("/:id", d.InventoryHandler.DeleteItem, staff.Middleware())

	stock := inv.Group("/stock", staff.Middleware())
	stock.GET("", d.InventoryHandler.GetStock)
	stock.POST("/reserve", d.InventoryHandler.ReserveStock)
	stock.POST("/release", d.InventoryHandler.ReleaseStock)

	movements := inv.Group("/movements", staff.Middleware())
	movements.GET("", d.InventoryHandler.ListMovements)
	movements.POST("", d.InventoryHandler.RecordMovement)
}
