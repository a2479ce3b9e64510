package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/event-ticketing/internal/api/http/handlers"
	"github.com/spec-kit/event-ticketing/internal/auth"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	Categories     *handlers.CategoriesHandler
	Tickets        *handlers.TicketsHandler
	Registrations  *handlers.RegistrationsHandler
	Promos         *handlers.PromoHandler
	Admin          *handlers.AdminHandler
	AdminUsers     *handlers.AdminUsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authn := cfg.AuthMiddleware.Handle
	organizer := auth.RequireRole(domain.RoleOrganizer)
	admin := auth.RequireAdmin()

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", authn, cfg.Users.Me)

	app.Get("/users/me/history", authn, cfg.Tickets.History)

	categories := app.Group("/categories")
	categories.Get("/", cfg.Categories.List)
	categories.Get("/active", cfg.Categories.Active)
	categories.Get("/:id", cfg.Categories.Get)
	categories.Post("/", authn, admin, cfg.Categories.Create)
	categories.Put("/:id", authn, admin, cfg.Categories.Update)
	categories.Delete("/:id", authn, admin, cfg.Categories.Delete)
	categories.Patch("/:id/toggle-status", authn, admin, cfg.Categories.ToggleStatus)

	events := app.Group("/events")
	events.Get("/", cfg.AuthMiddleware.Optional, cfg.Events.List)
	events.Post("/", authn, organizer, cfg.Events.Create)
	events.Get("/featured", cfg.Events.Featured)
	events.Get("/:id", cfg.Events.Get)
	events.Put("/:id", authn, organizer, cfg.Events.Update)
	events.Patch("/:id", authn, organizer, cfg.Events.Update)
	events.Patch("/:id/toggle-status", authn, organizer, cfg.Events.ToggleStatus)
	events.Delete("/:id", authn, organizer, cfg.Events.Delete)
	events.Get("/:id/stats", authn, organizer, cfg.Events.Stats)
	events.Get("/:id/ticket-types", cfg.Events.ListTicketTypes)
	events.Post("/:id/ticket-types", authn, organizer, cfg.Events.CreateTicketType)
	app.Get("/ticket-types/:id/availability", cfg.Events.CheckAvailability)

	tickets := app.Group("/tickets")
	tickets.Get("/verify/:code", cfg.Tickets.Verify)
	tickets.Post("/purchase/:eventid", authn, cfg.Tickets.Purchase)
	tickets.Get("/my-tickets", authn, cfg.Tickets.MyTickets)
	tickets.Get("/:id", authn, cfg.Tickets.Get)
	tickets.Patch("/:id/cancel", authn, cfg.Tickets.Cancel)
	tickets.Patch("/:id/mark-used", authn, organizer, cfg.Tickets.MarkUsed)

	registrations := app.Group("/registrations", authn)
	registrations.Get("/mine", cfg.Registrations.Mine)
	registrations.Post("/:eventid", cfg.Registrations.Register)
	registrations.Delete("/:id", cfg.Registrations.Cancel)

	promos := app.Group("/promo-codes")
	promos.Get("/validate/:code", cfg.Promos.Validate)
	promos.Post("/", authn, admin, cfg.Promos.Create)
	promos.Get("/", authn, admin, cfg.Promos.List)
	promos.Get("/:id", authn, admin, cfg.Promos.Get)
	promos.Patch("/:id/deactivate", authn, admin, cfg.Promos.Deactivate)

	adminGroup := app.Group("/admin", authn, admin)
	adminGroup.Get("/dashboard", cfg.Admin.Dashboard)
	adminGroup.Get("/users", cfg.AdminUsers.List)
	adminGroup.Post("/users", cfg.AdminUsers.Create)
	adminGroup.Patch("/users/:userid/role", cfg.AdminUsers.UpdateRole)
	adminGroup.Patch("/users/:userid/toggle-status", cfg.AdminUsers.ToggleStatus)
	adminGroup.Delete("/users/:userid", cfg.AdminUsers.Delete)
	adminGroup.Get("/reports/sales", cfg.Admin.SalesReport)
	adminGroup.Get("/reports/attendees/:eventid", cfg.Admin.AttendeesReport)
	adminGroup.Patch("/events/:eventid/sales", cfg.Admin.AdjustSales)
	adminGroup.Patch("/events/:eventid/reset-sales", cfg.Admin.ResetSales)
	adminGroup.Get("/events/:eventid/adjustments", cfg.Admin.ListAdjustments)
}
