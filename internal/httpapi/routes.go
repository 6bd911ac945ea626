package httpapi

import (
	"github.com/firepit/infernos/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewApp builds the fiber app and mounts all routes. The HTTP layer is thin
// glue: validation, consistency and pagination live in the service.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "infernos",
	})

	app.Use(cors.New())
	app.Use(auth.Middleware)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	api.Post("/users/sync", auth.RequireIdentity, h.SyncUser)
	api.Get("/users/:key", h.GetUser)
	api.Get("/users/:key/infernos", h.GetUserPosts)

	api.Get("/feed", h.GetFeed)
	api.Post("/infernos", auth.RequireIdentity, h.CreateInferno)
	api.Get("/infernos/:id", h.GetInferno)
	api.Post("/infernos/:id/comments", auth.RequireIdentity, h.AddComment)

	api.Get("/cults", h.ListCults)
	api.Post("/cults", auth.RequireIdentity, h.CreateCult)
	api.Get("/cults/:key", h.GetCult)
	api.Get("/cults/:key/infernos", h.GetCultPosts)
	api.Put("/cults/:key", auth.RequireIdentity, h.UpdateCult)
	api.Post("/cults/:key/members", auth.RequireIdentity, h.JoinCult)
	api.Delete("/cults/:key/members", auth.RequireIdentity, h.LeaveCult)
	api.Delete("/cults/:key", auth.RequireIdentity, h.DeleteCult)

	return app
}
