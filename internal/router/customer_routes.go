package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/handler"
	"github.com/hivehelp/hivehelp-api/internal/middleware"
)

// RegisterCustomer registers the endpoints every authenticated user can
// reach: profile, the store front, appointment booking and orders. The cache
// middleware goes on the catalog route only; everything else here is
// per-user data and must not be served from a shared cache. Extra middleware
// (rate limiting) applies group-wide.
func RegisterCustomer(e *echo.Echo, u *handler.UserHandler, p *handler.ProductHandler, a *handler.AppointmentHandler, o *handler.OrderHandler, jwtSecret string, cache echo.MiddlewareFunc, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
	g := e.Group("/v1", mw...)

	// profile
	g.GET("/users/me", u.Me)
	g.PUT("/users/me", u.UpdateMe)
	g.GET("/users/beekeepers/:locality", u.BeekeepersByLocality)

	// store front
	g.GET("/products", p.ListAvailable, cache)

	// appointments
	g.POST("/appointments", a.Book)
	g.GET("/appointments", a.List)
	g.PATCH("/appointments/:id/cancel", a.Cancel)
	g.POST("/appointments/:id/review", a.Review)

	// orders
	g.POST("/orders", o.Create)
	g.GET("/orders", o.ListMine)
	g.GET("/orders/:id", o.History)
}
