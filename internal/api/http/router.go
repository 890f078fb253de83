package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mes-portal/internal/api/http/handlers"
	"github.com/spec-kit/mes-portal/internal/auth"
	"github.com/spec-kit/mes-portal/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Todos          *handlers.TodosHandler
	Modal          *handlers.ModalHandler
	Dashboard      *handlers.DashboardHandler
	Navigation     *handlers.NavigationHandler
	Imports        *handlers.ImportsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Users.Me)

	tickets := protected.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/history", cfg.Tickets.ListHistory)
	tickets.Post("/:id/advance", cfg.Tickets.Advance)

	protected.Get("/todos", cfg.Todos.ListTodos)
	protected.Post("/todos/:id/open", cfg.Todos.OpenTodo)

	protected.Get("/modal", cfg.Modal.Active)
	protected.Post("/modal/open", cfg.Modal.Open)
	protected.Post("/modal/advance", cfg.Modal.Advance)
	protected.Delete("/modal", cfg.Modal.Close)

	protected.Get("/dashboard", cfg.Dashboard.Get)

	protected.Get("/navigation", cfg.Navigation.State)
	protected.Get("/navigation/menu", cfg.Navigation.Menu)
	protected.Post("/navigation", cfg.Navigation.Navigate)
	protected.Post("/navigation/hash", cfg.Navigation.SyncHash)
	protected.Post("/navigation/back", cfg.Navigation.Back)

	imports := protected.Group("/imports", auth.RequireRole(domain.RoleAdmin))
	imports.Post("/", cfg.Imports.Start)
	imports.Post("/:id/complete", cfg.Imports.Complete)
}
