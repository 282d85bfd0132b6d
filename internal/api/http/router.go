package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixdesk/maintenance-service/internal/api/http/handlers"
	"github.com/fixdesk/maintenance-service/internal/auth"
	"github.com/fixdesk/maintenance-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/subadmins/login", cfg.Auth.LoginSubAdmin)
	authGroup.Post("/vendors/login", cfg.Auth.LoginVendor)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/inconsistent", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.ListInconsistent)
	tickets.Get("/:id", cfg.Tickets.Get)

	tickets.Post("/:id/approve", cfg.Tickets.Approve)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/accept", cfg.Tickets.Accept)
	tickets.Post("/:id/reject", cfg.Tickets.Reject)
	tickets.Post("/:id/request-info", cfg.Tickets.RequestMoreInfo)
	tickets.Post("/:id/provide-info", cfg.Tickets.ProvideMoreInfo)
	tickets.Post("/:id/start", cfg.Tickets.StartWork)
	tickets.Post("/:id/pause", cfg.Tickets.PauseWork)
	tickets.Post("/:id/complete", cfg.Tickets.CompleteWork)
	tickets.Post("/:id/work-order", cfg.Tickets.CreateWorkOrder)
	tickets.Post("/:id/invoice", cfg.Tickets.UploadInvoice)
	tickets.Post("/:id/request-final-approval", cfg.Tickets.RequestFinalApproval)
	tickets.Post("/:id/verify", cfg.Tickets.Verify)
	tickets.Post("/:id/cancel", cfg.Tickets.Cancel)
	tickets.Post("/:id/notes", cfg.Tickets.AddNote)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Post("/orgs", cfg.Admin.CreateOrganization)
	admin.Get("/orgs", cfg.Admin.ListOrganizations)
	admin.Post("/locations", cfg.Admin.CreateLocation)
	admin.Get("/locations", cfg.Admin.ListLocations)
	admin.Post("/vendors", cfg.Admin.CreateVendor)
	admin.Get("/vendors", cfg.Admin.ListVendors)
	admin.Get("/vendors/:id", cfg.Admin.GetVendor)
	admin.Put("/vendors/:id/status", cfg.Admin.SetVendorStatus)
	admin.Post("/technicians", cfg.Admin.CreateTechnician)
	admin.Get("/technicians", cfg.Admin.ListTechnicians)
	admin.Post("/subadmins", cfg.Admin.CreateSubAdmin)
	admin.Get("/subadmins", cfg.Admin.ListSubAdmins)
	admin.Get("/subadmins/:id", cfg.Admin.GetSubAdmin)
	admin.Put("/subadmins/:id/access", cfg.Admin.UpdateSubAdminAccess)
}
