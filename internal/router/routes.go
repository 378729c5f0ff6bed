package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/liceolabs/prospect-crm/api/internal/auth"
	"github.com/liceolabs/prospect-crm/api/internal/config"
	"github.com/liceolabs/prospect-crm/api/internal/entity"
	"github.com/liceolabs/prospect-crm/api/internal/handler"
	middlewarepkg "github.com/liceolabs/prospect-crm/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserAdminHandler
	Leads    *handler.LeadsHandler
	Import   *handler.ImportHandler
	Catalog  *handler.CatalogHandler
	WhatsApp *handler.WhatsAppHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)

	// Twilio deliveries cannot carry a bearer token, so the webhook stays
	// outside the JWT group.
	e.POST("/whatsapp/webhook", handlers.WhatsApp.Webhook)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/catalogs", handlers.Catalog.List)

	// The literal route must be registered before the :id match.
	secured.GET("/leads/scheduled", handlers.Leads.ListScheduled)
	secured.GET("/leads", handlers.Leads.List)
	secured.POST("/leads", handlers.Leads.Create)
	secured.GET("/leads/:id", handlers.Leads.Get)
	secured.PATCH("/leads/:id", handlers.Leads.Update)
	secured.DELETE("/leads/:id", handlers.Leads.Delete, middlewarepkg.RequireMinRole(entity.RoleDirector))

	secured.POST("/whatsapp/send/:id", handlers.WhatsApp.Send)
	secured.POST("/whatsapp/read/:id", handlers.WhatsApp.MarkRead)

	admin := secured.Group("/admin", middlewarepkg.RequireMinRole(entity.RoleAdmin))
	admin.POST("/import", handlers.Import.Upload, middlewarepkg.ImportRateLimiter(cfg.RateLimitImport))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
}
