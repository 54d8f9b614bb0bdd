package router // package router wires HTTP routes to their handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/spikeside/team-manager/internal/handler"
	"github.com/spikeside/team-manager/internal/middleware"
)

// Handlers collects every handler the router needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Teams   *handler.TeamHandler
	Stats   *handler.StatsHandler
}

// Register wires all application routes. Unauthenticated operations
// live under /v1/auth plus the public stats and health endpoints;
// everything else requires a valid access token. Team mutations are
// additionally restricted to coach and admin accounts.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)
	e.GET("/v1/stats", h.Stats.Overview)

	// Registration, login and the password-reset flow do not require a
	// session; the reset token itself is the credential there.
	g := e.Group("/v1/auth")
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)
	g.POST("/logout", h.Auth.Logout)
	g.POST("/reset-request", h.Auth.RequestReset)
	g.GET("/reset/:token", h.Auth.ValidateReset)
	g.POST("/reset", h.Auth.Reset)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))

	auth.GET("/me", h.Profile.Me)
	auth.PUT("/me", h.Profile.Update)
	auth.PUT("/me/avatar", h.Profile.UpdateAvatar)

	auth.GET("/teams", h.Teams.List)
	auth.GET("/teams/:id", h.Teams.Get)
	auth.GET("/teams/:id/members", h.Teams.ListMembers)

	manage := e.Group("/v1")
	manage.Use(middleware.JWTAuth(jwtSecret))
	manage.Use(middleware.RequireRole("coach", "admin"))
	manage.POST("/teams", h.Teams.Create)
	manage.POST("/teams/:id/members", h.Teams.AddMember)
	manage.DELETE("/teams/:id/members/:userID", h.Teams.RemoveMember)
}
