package main

import (
	"time"

	"shirtcatalog/internal/config"
	"shirtcatalog/internal/handlers"
	"shirtcatalog/internal/middleware"
	"shirtcatalog/internal/photostore"
	"shirtcatalog/internal/repositories"
	"shirtcatalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// newApp builds the Fiber app around an already opened record store.
// events may be nil.
func newApp(cfg config.Config, repo repositories.ShirtRepository, events services.EventPublisher) (*fiber.App, error) {
	photos, err := photostore.NewLocal(cfg.UploadsDir)
	if err != nil {
		return nil, err
	}

	catalogService := services.NewCatalogService(repo, photos, events)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	photoHandler := handlers.NewPhotoHandler(photos)
	metrics := middleware.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               "shirtcatalog",
		Immutable:             true,
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(metrics.Handler())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Shirt catalog API running")
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
			"events": events != nil,
		})
	})
	app.Get("/metrics", metrics.Exposition())

	catalogHandler.RegisterRoutes(app)
	photoHandler.RegisterRoutes(app)

	return app, nil
}
