package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tutorlink/api/handlers"
	"github.com/tutorlink/api/middleware"
)

func SubjectRoutes(app *fiber.App, h *handlers.SubjectHandler) {
	api := app.Group("/api")

	api.Get("/subjects", h.GetSubjects)
	api.Get("/subjects/:id", h.GetSubject)

	subjects := api.Group("/subjects", middleware.Protected(), middleware.AdminRequired())
	subjects.Post("", h.CreateSubject)
	subjects.Put("/:id", h.UpdateSubject)
	subjects.Delete("/:id", h.DeleteSubject)
}
