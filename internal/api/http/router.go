package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/flashmac/repair-tracker/internal/api/http/handlers"
	"github.com/flashmac/repair-tracker/internal/auth"
	"github.com/flashmac/repair-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Public         *handlers.PublicHandler
	Settings       *handlers.SettingsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	// Customer-facing surface, no authentication.
	public := app.Group("/public")
	public.Post("/tickets", cfg.Public.CreateTicket)
	public.Get("/tickets/:id", cfg.Public.GetTicket)

	staff := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	staff.Get("/tickets", cfg.Tickets.ListTickets)
	staff.Post("/tickets", cfg.Tickets.CreateTicket)
	staff.Get("/tickets/:id", cfg.Tickets.GetTicket)
	staff.Put("/tickets/:id", cfg.Tickets.UpdateTicket)
	staff.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)

	admin := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/settings/:key", cfg.Settings.GetSetting)
	admin.Put("/settings/:key", cfg.Settings.UpdateSetting)
	admin.Post("/notifications/sweep", cfg.Tickets.SweepStaleTickets)
}
