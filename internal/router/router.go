package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/talkroom/talkroom-api/internal/config"
	"github.com/talkroom/talkroom-api/internal/handler"
	"github.com/talkroom/talkroom-api/internal/middleware"
	"github.com/talkroom/talkroom-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler    *handler.AuthHandler
	SearchHandler  *handler.SearchHandler
	RoomHandler    *handler.RoomHandler
	MessageHandler *handler.MessageHandler
	UserHandler    *handler.UserHandler
	JWTRequired    fiber.Handler
	JWTOptional    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	required := deps.JWTRequired
	if required == nil {
		required = func(c *fiber.Ctx) error { return c.Next() }
	}
	optional := deps.JWTOptional
	if optional == nil {
		optional = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		auth.Use("/login", middleware.RateLimit("login", cfg.LoginRateMax, cfg.LoginRateWindow))
		deps.AuthHandler.Register(auth)
	}

	if deps.SearchHandler != nil {
		deps.SearchHandler.Register(api, optional)
	}

	if deps.RoomHandler != nil {
		deps.RoomHandler.Register(api.Group("/rooms"), required, optional)
	}

	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages"), required)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.RegisterPublic(api.Group("/users"), optional)
		deps.UserHandler.RegisterMe(api.Group("/me"), required)
	}
}
