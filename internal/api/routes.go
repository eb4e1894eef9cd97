package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/georgeshao/sdstudio/internal/generation"
)

func SetupRoutes(app *fiber.App, service *generation.Service) {
	h := NewHandler(service)

	v1 := app.Group("/v1")

	v1.Post("/generations", h.Generate)
	v1.Get("/generations", h.ListGenerations)
	v1.Delete("/generations", h.DeleteGeneration)

	v1.Get("/default-input", h.DefaultInput)
	v1.Get("/default-count", h.DefaultCount)
	v1.Get("/endpoints", h.ListEndpoints)
	v1.Get("/samplers", h.ListSamplers)
	v1.Get("/styles", h.ListStyles)
	v1.Get("/resolutions", h.ListResolutions)
	v1.Get("/status", h.Status)

	v1.Get("/settings", h.GetSettings)
	v1.Put("/settings", h.SetSetting)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
