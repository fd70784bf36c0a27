package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/handler"
	"github.com/hivehelp/hivehelp-api/internal/middleware"
	"github.com/hivehelp/hivehelp-api/internal/model"
)

// RegisterAdmin registers moderation, assignment, purge and reporting
// endpoints under /v1/admin. Every route requires the ADMIN role.
// reportMW is applied to the report endpoints only (response caching).
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, a *handler.AppointmentHandler, o *handler.OrderHandler, jwtSecret string, reportMW ...echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// users
	g.GET("/users", ad.ListUsers)
	g.PATCH("/users/:id/role", ad.SetRole)
	g.PATCH("/users/:id/block", ad.SetBlocked)
	g.PATCH("/users/:id/approve", ad.ApproveBeekeeper)
	g.DELETE("/users/:id", ad.DeleteUser)

	// products
	g.GET("/products", ad.ListProducts)

	// appointments
	g.GET("/appointments", ad.ListAppointments)
	g.PATCH("/appointments/:id/assign", ad.AssignBeekeeper)
	g.PATCH("/appointments/:id/status", a.UpdateStatus)
	g.DELETE("/appointments", ad.DeleteAllAppointments)

	// orders
	g.GET("/orders", ad.ListOrders)
	g.PATCH("/orders/:id/status", o.UpdateStatus)
	g.DELETE("/orders", ad.DeleteAllOrders)

	// reports
	r := g.Group("/reports", reportMW...)
	r.GET("/orders", ad.OrdersReport)
	r.GET("/appointments", ad.AppointmentsReport)
}
