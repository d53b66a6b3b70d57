package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/middleware"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api")

	uploads := api.Group("/uploads", middleware.Protected())
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
