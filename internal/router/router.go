package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/iliyamo/auth-rbac-service/internal/handler"
	"github.com/iliyamo/auth-rbac-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check, used by load balancers and monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Login and refresh
// live under /v1/auth and are unauthenticated but rate limited; the
// protected session endpoints live under /v1 behind the JWT
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterAdmin registers the user and role management routes. All of
// them require a valid access token carrying the Admin role.
func RegisterAdmin(e *echo.Echo, u *handler.UserHandler, r *handler.RoleHandler, jwtSecret string) {
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("Admin"))

	admin.GET("/users", u.List)
	admin.GET("/users/:id", u.Get)
	admin.POST("/users", u.Create)
	admin.PUT("/users/:id", u.Update)
	admin.PUT("/users/:id/roles", u.SetRoles)
	admin.DELETE("/users/:id", u.Delete)

	admin.GET("/roles", r.List)
	admin.GET("/roles/:id", r.Get)
	admin.POST("/roles", r.Create)
	admin.PUT("/roles/:id", r.Update)
	admin.DELETE("/roles/:id", r.Delete)
}
