// Package router wires HTTP routes to handlers and middleware. Route
// registration is split by audience: public, customer, beekeeper and admin.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hivehelp/hivehelp-api/internal/handler"
)

// RegisterRoutes registers routes that require no authentication. Currently
// just the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the session endpoints under /v1/auth. Register,
// login and refresh need no access token; logout takes the refresh token in
// the body so it works without one too.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}
