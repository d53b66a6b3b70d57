package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/middleware"
)

func UserRoutes(app *fiber.App, h *handlers.UserHandler) {
	api := app.Group("/api")

	// Registered ahead of /users/:id so "tutors" is not captured as an id.
	api.Get("/users/tutors", h.GetTutors)
	api.Put("/users/tutor-profile", middleware.Protected(), h.UpdateTutorProfile)

	users := api.Group("/users", middleware.Protected())
	users.Get("", middleware.AdminRequired(), h.GetUsers)
	users.Post("", middleware.AdminRequired(), h.CreateUser)
	users.Get("/:id", h.GetUser)
	users.Put("/:id", h.UpdateUser)
	users.Delete("/:id", h.DeleteUser)
}
