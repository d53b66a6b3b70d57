package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/middleware"
)

func ReviewRoutes(app *fiber.App, h *handlers.ReviewHandler) {
	api := app.Group("/api")

	api.Get("/reviews", h.GetReviews)
	api.Get("/reviews/:id", h.GetReview)

	reviews := api.Group("/reviews", middleware.Protected())
	reviews.Post("", h.CreateReview)
	reviews.Put("/:id", h.UpdateReview)
	reviews.Delete("/:id", h.DeleteReview)
}
