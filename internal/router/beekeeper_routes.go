package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/handler"
	"github.com/hivehelp/hivehelp-api/internal/middleware"
	"github.com/hivehelp/hivehelp-api/internal/model"
)

// RegisterBeekeeper registers the fulfilment side: listing management,
// incoming orders and status updates on assigned work. Listing management is
// BEEKEEPER-only; the status routes also admit admins, with ownership of the
// specific record checked in the repository.
func RegisterBeekeeper(e *echo.Echo, p *handler.ProductHandler, a *handler.AppointmentHandler, o *handler.OrderHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleBeekeeper),
	}, extra...)
	g := e.Group("/v1", mw...)

	// honey listings
	g.GET("/products/mine", p.ListMine)
	g.POST("/products", p.Create)

	// incoming orders
	g.GET("/orders/beekeeper", o.ListForBeekeeper)

	// routes admins may also drive; the group is gated wider and the
	// repositories check record ownership (owner-or-admin)
	fulfil := e.Group("/v1", append([]echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleBeekeeper, model.RoleAdmin),
	}, extra...)...)
	fulfil.PUT("/products/:id", p.Update)
	fulfil.DELETE("/products/:id", p.Delete)
	fulfil.PATCH("/appointments/:id/status", a.UpdateStatus)
	fulfil.PATCH("/orders/:id/status", o.UpdateStatus)
}
